package browser

import (
	"fmt"
	"strings"

	"github.com/denisAlshanov/vidgrab/internal/models"
	"github.com/denisAlshanov/vidgrab/internal/utils"
)

// MenuID names one of the two format lists.
type MenuID string

const (
	VideoMenu MenuID = "video"
	AudioMenu MenuID = "audio"
)

func ParseMenuID(s string) (MenuID, error) {
	switch MenuID(strings.ToLower(strings.TrimSpace(s))) {
	case VideoMenu:
		return VideoMenu, nil
	case AudioMenu:
		return AudioMenu, nil
	default:
		return "", utils.NewMenuNotFoundError(s)
	}
}

// Menu is one selectable list and whether it is shown.
type Menu struct {
	Items   []models.MenuEntry `json:"items"`
	Visible bool               `json:"visible"`
}

// DownloadState is the part of State that a finished download resets.
type DownloadState struct {
	InFlight int    `json:"in_flight"`
	LastFile string `json:"last_file,omitempty"`
}

// State is everything a front end needs to draw the browser.
type State struct {
	URL        string        `json:"url,omitempty"`
	Title      string        `json:"title"`
	Thumbnail  string        `json:"thumbnail,omitempty"`
	Video      Menu          `json:"video"`
	Audio      Menu          `json:"audio"`
	Download   DownloadState `json:"download"`
	Generation uint64        `json:"generation"`
}

// Menu returns the list named id.
func (s *State) Menu(id MenuID) *Menu {
	switch id {
	case VideoMenu:
		return &s.Video
	case AudioMenu:
		return &s.Audio
	}
	return nil
}

func (s State) clone() State {
	out := s
	out.Video.Items = append([]models.MenuEntry(nil), s.Video.Items...)
	out.Audio.Items = append([]models.MenuEntry(nil), s.Audio.Items...)
	return out
}

// VideoLabel renders "{height}p {note} ({ext})". An empty note leaves the
// double space in place.
func VideoLabel(f models.Format) string {
	height := 0
	if f.Height != nil {
		height = *f.Height
	}
	return fmt.Sprintf("%dp %s (%s)", height, f.Note, f.Ext)
}

// AudioLabel renders "{abr} kbps ({ext})".
func AudioLabel(f models.Format) string {
	return fmt.Sprintf("%s kbps (%s)", f.ABRString(), f.Ext)
}

// RenderMenus buckets formats into the video list (height set) and the audio
// list (abr set), keeping backend order. A format with both lands in both.
func RenderMenus(url string, formats []models.Format) (video, audio []models.MenuEntry) {
	video = make([]models.MenuEntry, 0, len(formats))
	audio = make([]models.MenuEntry, 0, len(formats))

	for _, f := range formats {
		if f.HasVideo() {
			video = append(video, models.MenuEntry{
				Label:    VideoLabel(f),
				URL:      url,
				FormatID: f.ID,
				Ext:      f.Ext,
			})
		}
		if f.HasAudio() {
			audio = append(audio, models.MenuEntry{
				Label:      AudioLabel(f),
				URL:        url,
				FormatID:   f.ID,
				Ext:        f.Ext,
				AudioAsMP3: f.Ext == "mp3" && !f.HasVideo(),
			})
		}
	}
	return video, audio
}

// FileName picks the saved file's name: base alone, or base.ext when the
// extension is preserved and known.
func FileName(base, ext string, preserveExtension bool) string {
	if base == "" {
		base = "video"
	}
	ext = strings.TrimPrefix(strings.TrimSpace(ext), ".")
	if !preserveExtension || ext == "" {
		return base
	}
	return base + "." + ext
}
