package telegram

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/denisAlshanov/vidgrab/internal/browser"
	"github.com/denisAlshanov/vidgrab/internal/models"
	"github.com/denisAlshanov/vidgrab/internal/services/backend"
)

const chatID int64 = 4242

type fakeAPI struct {
	mu       sync.Mutex
	sent     []tgbotapi.Chattable
	requests []tgbotapi.Chattable
	docs     map[string]string
}

func (f *fakeAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if doc, ok := c.(tgbotapi.DocumentConfig); ok {
		file := doc.File.(tgbotapi.FileReader)
		data, err := io.ReadAll(file.Reader)
		if err != nil {
			return tgbotapi.Message{}, err
		}
		f.mu.Lock()
		if f.docs == nil {
			f.docs = map[string]string{}
		}
		f.docs[file.Name] = string(data)
		f.mu.Unlock()
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, c)
	return tgbotapi.Message{MessageID: len(f.sent)}, nil
}

func (f *fakeAPI) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeAPI) GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return make(chan tgbotapi.Update)
}

func (f *fakeAPI) StopReceivingUpdates() {}

func (f *fakeAPI) texts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, c := range f.sent {
		if m, ok := c.(tgbotapi.MessageConfig); ok {
			out = append(out, m.Text)
		}
	}
	return out
}

type stubBackend struct {
	formats *models.FormatListResponse

	mu       sync.Mutex
	requests []models.DownloadRequest
}

func (s *stubBackend) ListFormats(ctx context.Context, url string) (*models.FormatListResponse, error) {
	return s.formats, nil
}

func (s *stubBackend) Download(ctx context.Context, req models.DownloadRequest) (*backend.Download, error) {
	s.mu.Lock()
	s.requests = append(s.requests, req)
	s.mu.Unlock()
	if req.FormatID == "bad" {
		return nil, errors.New("service returned 500")
	}
	return &backend.Download{Body: io.NopCloser(strings.NewReader("payload:" + req.FormatID))}, nil
}

func newTestBot() (*Bot, *fakeAPI) {
	height, abr := 720, 160.0
	bot, api, _ := newTestBotWith([]models.Format{
		{ID: "22", Ext: "mp4", Height: &height, Note: "hd"},
		{ID: "251", Ext: "webm", ABR: &abr},
	})
	return bot, api
}

func newTestBotWith(formats []models.Format) (*Bot, *fakeAPI, *stubBackend) {
	be := &stubBackend{formats: &models.FormatListResponse{Title: "Clip", Formats: formats}}
	api := &fakeAPI{}
	registry := browser.NewRegistry(time.Minute, Sessions(api, be, nil, browser.Options{
		FileName:          "video",
		PreserveExtension: true,
	}))
	return NewBot(api, registry), api, be
}

func textUpdate(text string) tgbotapi.Update {
	return tgbotapi.Update{Message: &tgbotapi.Message{
		MessageID: 1,
		Chat:      &tgbotapi.Chat{ID: chatID},
		Text:      text,
	}}
}

func callbackUpdate(data string) tgbotapi.Update {
	return tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
		ID:      "cb",
		Data:    data,
		Message: &tgbotapi.Message{MessageID: 2, Chat: &tgbotapi.Chat{ID: chatID}},
	}}
}

func TestParseCallback(t *testing.T) {
	tests := []struct {
		data    string
		want    callback
		wantErr bool
	}{
		{data: "t:video", want: callback{action: actionToggle, menu: browser.VideoMenu}},
		{data: "t:audio", want: callback{action: actionToggle, menu: browser.AudioMenu}},
		{data: "d:audio:3:1", want: callback{action: actionDownload, menu: browser.AudioMenu, generation: 3, index: 1}},
		{data: "", wantErr: true},
		{data: "t:subtitles", wantErr: true},
		{data: "d:video:x:1", wantErr: true},
		{data: "d:video:1:-1", wantErr: true},
		{data: "x:video", wantErr: true},
	}
	for _, tc := range tests {
		got, err := parseCallback(tc.data)
		if tc.wantErr {
			if err == nil {
				t.Errorf("parseCallback(%q) = %+v, want error", tc.data, got)
			}
			continue
		}
		if err != nil || got != tc.want {
			t.Errorf("parseCallback(%q) = %+v, %v, want %+v", tc.data, got, err, tc.want)
		}
	}
}

func TestCallbackDataRoundTrip(t *testing.T) {
	data := downloadData(browser.VideoMenu, 18446744073709551615, 99)
	if len(data) > 64 {
		t.Errorf("callback data %q exceeds 64 bytes", data)
	}
	cb, err := parseCallback(data)
	if err != nil || cb.index != 99 || cb.generation != 18446744073709551615 {
		t.Errorf("round trip = %+v, %v", cb, err)
	}
}

func TestKeyboard(t *testing.T) {
	state := browser.State{
		Generation: 2,
		Video: browser.Menu{Visible: true, Items: []models.MenuEntry{
			{Label: "720p hd (mp4)"}, {Label: "360p  (mp4)"},
		}},
		Audio: browser.Menu{Items: []models.MenuEntry{{Label: "160 kbps (webm)"}}},
	}

	rows := keyboard(state).InlineKeyboard
	if len(rows) != 4 {
		t.Fatalf("rows = %d, want toggle + 2 entries + toggle", len(rows))
	}
	if *rows[0][0].CallbackData != "t:video" || *rows[3][0].CallbackData != "t:audio" {
		t.Errorf("toggle rows = %q, %q", *rows[0][0].CallbackData, *rows[3][0].CallbackData)
	}
	if rows[2][0].Text != "360p  (mp4)" || *rows[2][0].CallbackData != "d:video:2:1" {
		t.Errorf("entry row = %q %q", rows[2][0].Text, *rows[2][0].CallbackData)
	}
}

func TestBotSearchToggleDownload(t *testing.T) {
	bot, api := newTestBot()
	ctx := context.Background()

	bot.HandleUpdate(ctx, textUpdate("https://example.com/clip"))
	texts := api.texts()
	if len(texts) != 1 || !strings.HasPrefix(texts[0], "Clip\n1 video and 1 audio formats") {
		t.Fatalf("replies = %q", texts)
	}

	bot.HandleUpdate(ctx, callbackUpdate("t:video"))
	session := bot.registry.Get(sessionID(chatID))
	if !session.Controller.State().Video.Visible {
		t.Error("video list should be visible after toggle")
	}

	gen := session.Controller.State().Generation
	bot.HandleUpdate(ctx, callbackUpdate(downloadData(browser.VideoMenu, gen, 0)))
	if got := api.docs["video.mp4"]; got != "payload:22" {
		t.Errorf("document video.mp4 = %q, docs %v", got, api.docs)
	}
	if last := session.Controller.State().Download.LastFile; last != "video.mp4" {
		t.Errorf("LastFile = %q", last)
	}
}

func TestBotDownloadsMP3Entry(t *testing.T) {
	abr := 160.0
	bot, api, be := newTestBotWith([]models.Format{
		{ID: "251", Ext: "webm", ABR: &abr, AudioOnly: true},
		{ID: "251", Ext: "mp3", ABR: &abr, AudioOnly: true},
	})
	ctx := context.Background()

	bot.HandleUpdate(ctx, textUpdate("https://example.com/clip"))
	session := bot.registry.Get(sessionID(chatID))
	gen := session.Controller.State().Generation

	bot.HandleUpdate(ctx, callbackUpdate(downloadData(browser.AudioMenu, gen, 1)))

	if len(be.requests) != 1 || !be.requests[0].AudioAsMP3 || be.requests[0].FormatID != "251" {
		t.Fatalf("download requests = %+v, want 251 as mp3", be.requests)
	}
	if _, ok := api.docs["video.mp3"]; !ok {
		t.Errorf("docs = %v, want video.mp3", api.docs)
	}

	bot.HandleUpdate(ctx, callbackUpdate(downloadData(browser.AudioMenu, gen, 0)))
	if len(be.requests) != 2 || be.requests[1].AudioAsMP3 {
		t.Errorf("stream button requests = %+v", be.requests)
	}
	if _, ok := api.docs["video.webm"]; !ok {
		t.Errorf("docs = %v, want video.webm", api.docs)
	}
}

func TestBotDownloadFailureAlerts(t *testing.T) {
	height := 360
	bot, api, _ := newTestBotWith([]models.Format{{ID: "bad", Ext: "mp4", Height: &height}})
	ctx := context.Background()

	bot.HandleUpdate(ctx, textUpdate("https://example.com/clip"))
	gen := bot.registry.Get(sessionID(chatID)).Controller.State().Generation
	bot.HandleUpdate(ctx, callbackUpdate(downloadData(browser.VideoMenu, gen, 0)))

	texts := api.texts()
	if texts[len(texts)-1] != browser.MsgDownloadFailed {
		t.Errorf("last reply = %q, want %q", texts[len(texts)-1], browser.MsgDownloadFailed)
	}
	if len(api.docs) != 0 {
		t.Errorf("docs = %v, want none", api.docs)
	}
}

func TestBotEmptyMessageAlerts(t *testing.T) {
	bot, api := newTestBot()

	bot.HandleUpdate(context.Background(), textUpdate("   "))
	if texts := api.texts(); len(texts) != 1 || texts[0] != browser.MsgLinkRequired {
		t.Errorf("replies = %q", texts)
	}
}

func TestBotOutdatedButton(t *testing.T) {
	bot, api := newTestBot()
	ctx := context.Background()

	bot.HandleUpdate(ctx, textUpdate("https://example.com/clip"))
	bot.HandleUpdate(ctx, callbackUpdate(downloadData(browser.VideoMenu, 99, 0)))

	texts := api.texts()
	if texts[len(texts)-1] != msgOutdated {
		t.Errorf("last reply = %q", texts[len(texts)-1])
	}
	if len(api.docs) != 0 {
		t.Error("outdated button must not download")
	}
}

func TestSessionIDRoundTrip(t *testing.T) {
	id := sessionID(-100123)
	got, err := chatIDFromSession(id)
	if err != nil || got != -100123 {
		t.Errorf("chatIDFromSession(%q) = %d, %v", id, got, err)
	}
}
