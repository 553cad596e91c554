package browser

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/denisAlshanov/vidgrab/internal/models"
	"github.com/denisAlshanov/vidgrab/internal/services/backend"
	"github.com/denisAlshanov/vidgrab/internal/services/storage"
	"github.com/denisAlshanov/vidgrab/internal/utils"
)

// Messages shown to the user through the Notifier.
const (
	MsgLinkRequired       = "Link is required"
	MsgDownloadFailed     = "Download failed"
	MsgServiceUnavailable = "Download service is unreachable"
)

// Notifier shows a blocking message to the user.
type Notifier interface {
	Alert(ctx context.Context, message string)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, message string)

func (f NotifierFunc) Alert(ctx context.Context, message string) {
	f(ctx, message)
}

// Journal records completed downloads.
type Journal interface {
	RecordDownload(ctx context.Context, record models.DownloadRecord) error
}

type Options struct {
	// FileName is the saved file's base name. Defaults to "video".
	FileName string
	// PreserveExtension appends the chosen format's ext to FileName.
	PreserveExtension bool
	// SessionID tags log lines and journal records.
	SessionID string
}

// Controller is the format browser for one user. It is safe for concurrent
// use: searches race, but only the most recent one is applied.
type Controller struct {
	backend  backend.Client
	saver    storage.Saver
	notifier Notifier
	journal  Journal
	opts     Options

	mu         sync.Mutex
	state      State
	generation uint64
}

// NewController wires a controller. journal may be nil.
func NewController(client backend.Client, saver storage.Saver, notifier Notifier, journal Journal, opts Options) *Controller {
	if opts.FileName == "" {
		opts.FileName = "video"
	}
	if notifier == nil {
		notifier = NotifierFunc(func(context.Context, string) {})
	}
	return &Controller{
		backend:  client,
		saver:    saver,
		notifier: notifier,
		journal:  journal,
		opts:     opts,
		state: State{
			Video: Menu{Items: []models.MenuEntry{}},
			Audio: Menu{Items: []models.MenuEntry{}},
		},
	}
}

// State returns a snapshot safe to hand to a renderer.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.clone()
}

// FetchFormats looks up url and, if this is still the latest search when
// the answer arrives, replaces the title and both lists. Menu visibility is
// left untouched.
func (c *Controller) FetchFormats(ctx context.Context, rawURL string) error {
	ctx = c.logContext(ctx)

	url := strings.TrimSpace(rawURL)
	if url == "" {
		c.notifier.Alert(ctx, MsgLinkRequired)
		return utils.NewEmptyURLError()
	}

	gen := c.nextGeneration()
	utils.LogInfo(ctx, "Fetching formats", utils.Fields{"url": url, "generation": gen})

	resp, err := c.backend.ListFormats(ctx, url)
	if err != nil {
		if !c.isCurrent(gen) {
			return utils.NewStaleResponseError(gen)
		}
		utils.LogError(ctx, "Format lookup failed", err, utils.Fields{"url": url})
		c.notifier.Alert(ctx, MsgServiceUnavailable)
		return err
	}

	if resp.Error != "" {
		if !c.isCurrent(gen) {
			return utils.NewStaleResponseError(gen)
		}
		utils.LogWarn(ctx, "Download service rejected link", utils.Fields{"url": url, "error": resp.Error})
		c.notifier.Alert(ctx, resp.Error)
		return utils.NewFormatLookupError(resp.Error)
	}

	video, audio := RenderMenus(url, resp.Formats)

	c.mu.Lock()
	if gen != c.generation {
		latest := c.generation
		c.mu.Unlock()
		utils.LogDebug(ctx, "Discarding stale format list", utils.Fields{"generation": gen, "latest": latest})
		return utils.NewStaleResponseError(gen)
	}
	c.state.URL = url
	c.state.Title = resp.Title
	c.state.Thumbnail = resp.Thumbnail
	c.state.Video.Items = video
	c.state.Audio.Items = audio
	c.state.Generation = gen
	c.mu.Unlock()

	utils.LogInfo(ctx, "Formats rendered", utils.Fields{
		"title": resp.Title,
		"video": len(video),
		"audio": len(audio),
	})
	return nil
}

// ToggleMenu flips the visibility of a list and returns the new value.
func (c *Controller) ToggleMenu(id MenuID) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	menu := c.state.Menu(id)
	if menu == nil {
		return false, utils.NewMenuNotFoundError(string(id))
	}
	menu.Visible = !menu.Visible
	return menu.Visible, nil
}

// Entry finds the rendered entry for url and formatID. When the format is
// not listed a bare entry is returned. The MP3 conversion shares its id with
// an audio stream and is never returned here; see MP3Entry.
func (c *Controller) Entry(url, formatID string) models.MenuEntry {
	if e, ok := c.lookup(url, formatID, false); ok {
		return e
	}
	return models.MenuEntry{URL: url, FormatID: formatID}
}

// MP3Entry finds the MP3 conversion of formatID, if one is listed.
func (c *Controller) MP3Entry(url, formatID string) (models.MenuEntry, bool) {
	return c.lookup(url, formatID, true)
}

func (c *Controller) lookup(url, formatID string, mp3 bool) (models.MenuEntry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, menu := range []*Menu{&c.state.Video, &c.state.Audio} {
		for _, e := range menu.Items {
			if e.URL == url && e.FormatID == formatID && e.AudioAsMP3 == mp3 {
				return e, true
			}
		}
	}
	return models.MenuEntry{}, false
}

// EntryAt returns the i-th entry of a list.
func (c *Controller) EntryAt(id MenuID, i int) (models.MenuEntry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	menu := c.state.Menu(id)
	if menu == nil || i < 0 || i >= len(menu.Items) {
		return models.MenuEntry{}, false
	}
	return menu.Items[i], true
}

// DownloadFile downloads formatID of url into the controller's saver.
func (c *Controller) DownloadFile(ctx context.Context, url, formatID string) (*models.SavedFile, error) {
	return c.DownloadTo(ctx, c.Entry(url, formatID), c.saver)
}

// DownloadEntry downloads an already resolved entry into the controller's
// saver, keeping its extension and MP3 flag.
func (c *Controller) DownloadEntry(ctx context.Context, entry models.MenuEntry) (*models.SavedFile, error) {
	return c.DownloadTo(ctx, entry, c.saver)
}

// DownloadTo downloads entry into saver. On failure the user is alerted
// and nothing is saved. On success only the download state is reset; the
// format lists stay as they are.
func (c *Controller) DownloadTo(ctx context.Context, entry models.MenuEntry, saver storage.Saver) (*models.SavedFile, error) {
	ctx = c.logContext(ctx)

	c.beginDownload()
	lastFile := ""
	defer func() { c.endDownload(lastFile) }()

	dl, err := c.backend.Download(ctx, entry.Request())
	if err != nil {
		utils.LogError(ctx, "Download request failed", err, utils.Fields{
			"url":       entry.URL,
			"format_id": entry.FormatID,
		})
		c.notifier.Alert(ctx, MsgDownloadFailed)
		return nil, err
	}
	defer dl.Body.Close()

	name := FileName(c.opts.FileName, entry.Ext, c.opts.PreserveExtension)
	saved, err := saver.Save(ctx, name, dl.Body, dl.ContentType)
	if err != nil {
		utils.LogError(ctx, "Saving download failed", err, utils.Fields{"name": name})
		c.notifier.Alert(ctx, MsgDownloadFailed)
		return nil, utils.NewStorageError(err)
	}
	lastFile = saved.Name

	if c.journal != nil {
		record := models.DownloadRecord{
			ID:          uuid.New().String(),
			SessionID:   c.opts.SessionID,
			URL:         entry.URL,
			FormatID:    entry.FormatID,
			FileName:    saved.Name,
			Location:    saved.Location,
			Size:        saved.Size,
			ContentType: saved.ContentType,
			CompletedAt: time.Now().UTC(),
		}
		if err := c.journal.RecordDownload(ctx, record); err != nil {
			utils.LogError(ctx, "Failed to record download", err)
		}
	}

	return saved, nil
}

func (c *Controller) nextGeneration() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generation++
	return c.generation
}

func (c *Controller) isCurrent(gen uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generation == gen
}

func (c *Controller) beginDownload() {
	c.mu.Lock()
	c.state.Download.InFlight++
	c.mu.Unlock()
}

func (c *Controller) endDownload(lastFile string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.Download.InFlight > 0 {
		c.state.Download.InFlight--
	}
	if lastFile != "" {
		c.state.Download.LastFile = lastFile
	}
}

func (c *Controller) logContext(ctx context.Context) context.Context {
	if c.opts.SessionID != "" && utils.GetSessionID(ctx) == "" {
		return utils.WithSessionID(ctx, c.opts.SessionID)
	}
	return ctx
}
