package telegram

import (
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/denisAlshanov/vidgrab/internal/browser"
)

// Callback data is limited to 64 bytes, so buttons carry a position in the
// chat's current lists rather than the entry itself:
//
//	t:<menu>                    toggle a list
//	d:<menu>:<generation>:<i>   download entry i of the list rendered by search <generation>
const (
	actionToggle   = "t"
	actionDownload = "d"
)

type callback struct {
	action     string
	menu       browser.MenuID
	generation uint64
	index      int
}

func toggleData(menu browser.MenuID) string {
	return actionToggle + ":" + string(menu)
}

func downloadData(menu browser.MenuID, generation uint64, index int) string {
	return fmt.Sprintf("%s:%s:%d:%d", actionDownload, menu, generation, index)
}

func parseCallback(data string) (callback, error) {
	parts := strings.Split(data, ":")
	if len(parts) < 2 {
		return callback{}, fmt.Errorf("malformed callback data %q", data)
	}

	menu, err := browser.ParseMenuID(parts[1])
	if err != nil {
		return callback{}, err
	}

	switch {
	case parts[0] == actionToggle && len(parts) == 2:
		return callback{action: actionToggle, menu: menu}, nil
	case parts[0] == actionDownload && len(parts) == 4:
		generation, err := strconv.ParseUint(parts[2], 10, 64)
		if err != nil {
			return callback{}, fmt.Errorf("bad generation in %q: %w", data, err)
		}
		index, err := strconv.Atoi(parts[3])
		if err != nil || index < 0 {
			return callback{}, fmt.Errorf("bad index in %q", data)
		}
		return callback{action: actionDownload, menu: menu, generation: generation, index: index}, nil
	default:
		return callback{}, fmt.Errorf("unknown callback %q", data)
	}
}

var menuTitles = map[browser.MenuID]string{
	browser.VideoMenu: "Video formats",
	browser.AudioMenu: "Audio formats",
}

// keyboard draws the toggle buttons and, under each visible one, a button
// per entry.
func keyboard(state browser.State) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton

	for _, id := range []browser.MenuID{browser.VideoMenu, browser.AudioMenu} {
		menu := state.Menu(id)

		title := menuTitles[id]
		if menu.Visible {
			title = "▾ " + title
		} else {
			title = "▸ " + title
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(title, toggleData(id)),
		))

		if !menu.Visible {
			continue
		}
		for i, entry := range menu.Items {
			rows = append(rows, tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData(entry.Label, downloadData(id, state.Generation, i)),
			))
		}
	}

	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func summary(state browser.State) string {
	title := state.Title
	if title == "" {
		title = state.URL
	}
	return fmt.Sprintf("%s\n%d video and %d audio formats", title, len(state.Video.Items), len(state.Audio.Items))
}
