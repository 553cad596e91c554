// Package browser holds the format browser: the state behind the two format
// lists, the pure functions that render it, and the controller that fetches
// formats and downloads a chosen one. Front ends (web page, CLI, Telegram)
// drive a Controller and present its State.
package browser
