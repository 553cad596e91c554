package telegram

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/denisAlshanov/vidgrab/internal/browser"
	"github.com/denisAlshanov/vidgrab/internal/models"
	"github.com/denisAlshanov/vidgrab/internal/services/backend"
	"github.com/denisAlshanov/vidgrab/internal/utils"
)

const (
	sessionPrefix = "tg_"
	pollTimeout   = 60

	msgStart    = "Send me a link to a video and I will list the formats it can be downloaded in."
	msgOutdated = "This list is out of date, send the link again"
)

// Bot is the chat front end: a text message is a search, the reply carries
// the format lists as inline buttons, and a chosen entry comes back as a
// document. Every chat has its own controller.
type Bot struct {
	api      BotAPI
	registry *browser.Registry
	wg       sync.WaitGroup
}

// NewBotAPI connects to the Bot API with token.
func NewBotAPI(token string) (*tgbotapi.BotAPI, error) {
	if token == "" {
		return nil, fmt.Errorf("bot token is required")
	}

	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}
	return api, nil
}

func NewBot(api BotAPI, registry *browser.Registry) *Bot {
	return &Bot{api: api, registry: registry}
}

// Sessions builds per-chat sessions. Alerts are sent to the chat as they
// happen and downloads are sent back as documents.
func Sessions(api BotAPI, client backend.Client, journal browser.Journal, opts browser.Options) browser.Factory {
	return func(id string) *browser.Session {
		chatID, _ := chatIDFromSession(id)
		o := opts
		o.SessionID = id
		saver := &documentSaver{api: api, chatID: chatID}
		notifier := &chatNotifier{api: api, chatID: chatID}
		return &browser.Session{
			Controller: browser.NewController(client, saver, notifier, journal, o),
		}
	}
}

// Run polls for updates until ctx is done. Updates are handled
// concurrently so a long download does not hold up other chats.
func (b *Bot) Run(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = pollTimeout
	updates := b.api.GetUpdatesChan(u)

	utils.LogInfo(ctx, "Telegram bot polling for updates")
	defer b.wg.Wait()

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			b.wg.Add(1)
			go func() {
				defer b.wg.Done()
				b.HandleUpdate(ctx, update)
			}()
		}
	}
}

func (b *Bot) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.CallbackQuery != nil && update.CallbackQuery.Message != nil:
		b.handleCallback(ctx, update.CallbackQuery)
	case update.Message != nil:
		b.handleMessage(ctx, update.Message)
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	session := b.session(msg.Chat.ID)
	ctx = utils.WithSessionID(ctx, session.ID)

	if msg.IsCommand() {
		if msg.Command() == "start" || msg.Command() == "help" {
			b.send(ctx, tgbotapi.NewMessage(msg.Chat.ID, msgStart))
		}
		return
	}

	if err := session.Controller.FetchFormats(ctx, msg.Text); err != nil {
		// The controller has already told the user.
		utils.LogDebug(ctx, "Search ended without results", utils.Fields{"error": err.Error()})
		return
	}

	state := session.Controller.State()
	reply := tgbotapi.NewMessage(msg.Chat.ID, summary(state))
	reply.ReplyMarkup = keyboard(state)
	b.send(ctx, reply)
}

func (b *Bot) handleCallback(ctx context.Context, query *tgbotapi.CallbackQuery) {
	chatID := query.Message.Chat.ID
	session := b.session(chatID)
	ctx = utils.WithSessionID(ctx, session.ID)

	if _, err := b.api.Request(tgbotapi.NewCallback(query.ID, "")); err != nil {
		utils.LogWarn(ctx, "Failed to answer callback", utils.Fields{"error": err.Error()})
	}

	cb, err := parseCallback(query.Data)
	if err != nil {
		utils.LogWarn(ctx, "Ignoring callback", utils.Fields{"error": err.Error()})
		return
	}

	switch cb.action {
	case actionToggle:
		if _, err := session.Controller.ToggleMenu(cb.menu); err != nil {
			utils.LogError(ctx, "Toggle failed", err)
			return
		}
		edit := tgbotapi.NewEditMessageReplyMarkup(chatID, query.Message.MessageID, keyboard(session.Controller.State()))
		if _, err := b.api.Request(edit); err != nil {
			utils.LogWarn(ctx, "Failed to redraw keyboard", utils.Fields{"error": err.Error()})
		}

	case actionDownload:
		if session.Controller.State().Generation != cb.generation {
			b.send(ctx, tgbotapi.NewMessage(chatID, msgOutdated))
			return
		}
		entry, ok := session.Controller.EntryAt(cb.menu, cb.index)
		if !ok {
			b.send(ctx, tgbotapi.NewMessage(chatID, msgOutdated))
			return
		}
		if _, err := session.Controller.DownloadEntry(ctx, entry); err != nil {
			// The controller has already told the user.
			utils.LogDebug(ctx, "Download ended without a file", utils.Fields{
				"format_id": entry.FormatID,
				"error":     err.Error(),
			})
		}
	}
}

func (b *Bot) session(chatID int64) *browser.Session {
	return b.registry.Get(sessionID(chatID))
}

func (b *Bot) send(ctx context.Context, c tgbotapi.Chattable) {
	if _, err := b.api.Send(c); err != nil {
		utils.LogError(ctx, "Failed to send Telegram message", err)
	}
}

func sessionID(chatID int64) string {
	return sessionPrefix + strconv.FormatInt(chatID, 10)
}

func chatIDFromSession(id string) (int64, error) {
	return strconv.ParseInt(strings.TrimPrefix(id, sessionPrefix), 10, 64)
}

type chatNotifier struct {
	api    BotAPI
	chatID int64
}

func (n *chatNotifier) Alert(ctx context.Context, message string) {
	if _, err := n.api.Send(tgbotapi.NewMessage(n.chatID, message)); err != nil {
		utils.LogError(ctx, "Failed to deliver alert", err, utils.Fields{"alert": message})
	}
}

// documentSaver uploads downloads to the chat as documents.
type documentSaver struct {
	api    BotAPI
	chatID int64
}

func (s *documentSaver) Save(ctx context.Context, name string, body io.Reader, contentType string) (*models.SavedFile, error) {
	counter := &countingReader{r: body}
	doc := tgbotapi.NewDocument(s.chatID, tgbotapi.FileReader{Name: name, Reader: counter})

	sent, err := s.api.Send(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to send document: %w", err)
	}

	return &models.SavedFile{
		Name:        name,
		Location:    fmt.Sprintf("telegram:%d/%d", s.chatID, sent.MessageID),
		Size:        counter.n,
		ContentType: contentType,
	}, nil
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}
