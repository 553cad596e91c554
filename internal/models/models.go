package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// Format is one selectable stream variant reported by the backend.
type Format struct {
	ID        string   `json:"id"`
	Ext       string   `json:"ext"`
	Height    *int     `json:"height,omitempty"`
	Note      string   `json:"note,omitempty"`
	ABR       *float64 `json:"abr,omitempty"`
	VCodec    string   `json:"vcodec,omitempty"`
	ACodec    string   `json:"acodec,omitempty"`
	AudioOnly bool     `json:"audio_only,omitempty"`
	VideoOnly bool     `json:"video_only,omitempty"`
}

// UnmarshalJSON accepts the identifier under either "id" or "format_id",
// as a string or a number.
func (f *Format) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID        json.RawMessage `json:"id"`
		FormatID  json.RawMessage `json:"format_id"`
		Ext       *string         `json:"ext"`
		Height    *float64        `json:"height"`
		Note      *string         `json:"note"`
		ABR       *float64        `json:"abr"`
		VCodec    *string         `json:"vcodec"`
		ACodec    *string         `json:"acodec"`
		AudioOnly bool            `json:"audio_only"`
		VideoOnly bool            `json:"video_only"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	id, err := decodeID(raw.ID)
	if err != nil {
		return err
	}
	if id == "" {
		if id, err = decodeID(raw.FormatID); err != nil {
			return err
		}
	}

	*f = Format{
		ID:        id,
		Ext:       deref(raw.Ext),
		Note:      deref(raw.Note),
		VCodec:    deref(raw.VCodec),
		ACodec:    deref(raw.ACodec),
		AudioOnly: raw.AudioOnly,
		VideoOnly: raw.VideoOnly,
	}
	if raw.Height != nil {
		h := int(*raw.Height)
		f.Height = &h
	}
	f.ABR = raw.ABR
	return nil
}

func decodeID(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", fmt.Errorf("invalid format id: %w", err)
		}
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", fmt.Errorf("invalid format id %s: %w", string(raw), err)
	}
	return n.String(), nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// HasVideo reports whether the format carries a non-zero height.
func (f Format) HasVideo() bool {
	return f.Height != nil && *f.Height != 0
}

// HasAudio reports whether the format carries a non-zero audio bitrate.
func (f Format) HasAudio() bool {
	return f.ABR != nil && *f.ABR != 0
}

// ABRString renders the bitrate the way the backend sent it: 128, 129.478.
func (f Format) ABRString() string {
	if f.ABR == nil {
		return ""
	}
	return strconv.FormatFloat(*f.ABR, 'f', -1, 64)
}

// FormatListResponse is the body of POST /formats. Error is set instead of
// Title and Formats when the lookup failed.
type FormatListResponse struct {
	Title     string   `json:"title,omitempty"`
	Thumbnail string   `json:"thumbnail,omitempty"`
	Formats   []Format `json:"formats,omitempty"`
	Error     string   `json:"error,omitempty"`
}

type FormatListRequest struct {
	URL string `json:"url" binding:"required"`
}

// DownloadRequest is the body of POST /download.
type DownloadRequest struct {
	URL        string `json:"url"`
	FormatID   string `json:"format_id"`
	AudioAsMP3 bool   `json:"audio_as_mp3,omitempty"`
}

// MenuEntry is one rendered row of a format list, bound to the URL it was
// fetched for.
type MenuEntry struct {
	Label      string `json:"label"`
	URL        string `json:"url"`
	FormatID   string `json:"format_id"`
	Ext        string `json:"ext"`
	AudioAsMP3 bool   `json:"audio_as_mp3,omitempty"`
	Token      string `json:"token,omitempty"`
}

// Request builds the download request for the entry.
func (e MenuEntry) Request() DownloadRequest {
	return DownloadRequest{URL: e.URL, FormatID: e.FormatID, AudioAsMP3: e.AudioAsMP3}
}

// SavedFile describes where a download ended up.
type SavedFile struct {
	Name        string `json:"name"`
	Location    string `json:"location"`
	Size        int64  `json:"size"`
	ContentType string `json:"content_type,omitempty"`
}

// DownloadRecord is a journal entry for a completed download.
type DownloadRecord struct {
	ID          string    `json:"id" bson:"_id"`
	SessionID   string    `json:"session_id,omitempty" bson:"session_id,omitempty"`
	URL         string    `json:"url" bson:"url"`
	FormatID    string    `json:"format_id" bson:"format_id"`
	FileName    string    `json:"file_name" bson:"file_name"`
	Location    string    `json:"location" bson:"location"`
	Size        int64     `json:"size" bson:"size"`
	ContentType string    `json:"content_type,omitempty" bson:"content_type,omitempty"`
	CompletedAt time.Time `json:"completed_at" bson:"completed_at"`
}

type DownloadListResponse struct {
	Total     int              `json:"total"`
	Limit     int              `json:"limit"`
	Downloads []DownloadRecord `json:"downloads"`
}

// SearchRequest is the page's format lookup. URL is not required here so an
// empty link reaches the controller and is reported as an alert.
type SearchRequest struct {
	URL string `json:"url"`
}

// TokenRequest carries a signed menu entry from the page.
type TokenRequest struct {
	Token string `json:"token" binding:"required"`
}
