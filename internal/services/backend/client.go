package backend

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/andybalholm/brotli"

	"github.com/denisAlshanov/vidgrab/internal/config"
	"github.com/denisAlshanov/vidgrab/internal/models"
	"github.com/denisAlshanov/vidgrab/internal/utils"
)

const (
	formatsPath  = "/formats"
	downloadPath = "/download"

	// errorBodyLimit caps how much of a failed response is read for logging.
	errorBodyLimit = 4 << 10
)

// HTTPClient implements Client over the service's JSON API.
type HTTPClient struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewClient creates a new HTTPClient.
func NewClient(cfg *config.BackendConfig) *HTTPClient {
	return &HTTPClient{
		BaseURL:    strings.TrimSuffix(cfg.URL, "/"),
		HTTPClient: &http.Client{Timeout: cfg.Timeout},
	}
}

// ListFormats posts {url} to /formats. The body is decoded whatever the
// status, since the service reports lookup errors as {"error": ...} with a
// 4xx or 5xx status.
func (c *HTTPClient) ListFormats(ctx context.Context, url string) (*models.FormatListResponse, error) {
	utils.LogDebug(ctx, "Requesting formats", utils.Fields{"url": url})

	resp, err := c.post(ctx, formatsPath, models.FormatListRequest{URL: url})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := decodedBody(resp)
	if err != nil {
		return nil, utils.NewBackendUnavailableError(err)
	}
	defer body.Close()

	var result models.FormatListResponse
	if err := json.NewDecoder(body).Decode(&result); err != nil {
		utils.LogWarn(ctx, "Undecodable formats response", utils.Fields{
			"status": resp.StatusCode,
			"error":  err.Error(),
		})
		if resp.StatusCode >= http.StatusBadRequest {
			return &models.FormatListResponse{Error: fmt.Sprintf("format lookup failed (status %d)", resp.StatusCode)}, nil
		}
		return nil, utils.NewBackendUnavailableError(fmt.Errorf("decoding formats response: %w", err))
	}

	if result.Error == "" && resp.StatusCode >= http.StatusBadRequest {
		result.Error = fmt.Sprintf("format lookup failed (status %d)", resp.StatusCode)
	}

	utils.LogDebug(ctx, "Formats received", utils.Fields{
		"status":  resp.StatusCode,
		"formats": len(result.Formats),
	})
	return &result, nil
}

// Download posts {url, format_id} to /download. Any non-2xx status is a
// DOWNLOAD_FAILED error; the error body is logged and otherwise ignored.
func (c *HTTPClient) Download(ctx context.Context, req models.DownloadRequest) (*Download, error) {
	utils.LogInfo(ctx, "Requesting download", utils.Fields{
		"url":          req.URL,
		"format_id":    req.FormatID,
		"audio_as_mp3": req.AudioAsMP3,
	})

	resp, err := c.post(ctx, downloadPath, req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyLimit))
		utils.LogWarn(ctx, "Download rejected by service", utils.Fields{
			"status":    resp.StatusCode,
			"format_id": req.FormatID,
			"body":      string(snippet),
		})
		return nil, utils.NewDownloadError(resp.StatusCode)
	}

	body, err := decodedBody(resp)
	if err != nil {
		resp.Body.Close()
		return nil, utils.NewBackendUnavailableError(err)
	}

	length := resp.ContentLength
	if resp.Header.Get("Content-Encoding") != "" {
		length = -1
	}

	return &Download{
		Body:          body,
		ContentType:   resp.Header.Get("Content-Type"),
		ContentLength: length,
		FileName:      dispositionFileName(resp.Header.Get("Content-Disposition")),
	}, nil
}

func (c *HTTPClient) post(ctx context.Context, path string, payload interface{}) (*http.Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encoding %s request: %w", path, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating %s request: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept-Encoding", "gzip, br")

	start := time.Now()
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		utils.LogError(ctx, "Download service request failed", err, utils.Fields{"path": path})
		return nil, utils.NewBackendUnavailableError(err)
	}
	utils.LogDebug(ctx, "Download service responded", utils.Fields{
		"path":     path,
		"status":   resp.StatusCode,
		"duration": time.Since(start).String(),
	})
	return resp, nil
}

// decodedBody unwraps gzip or brotli content encodings. Closing the result
// closes the response body.
func decodedBody(resp *http.Response) (io.ReadCloser, error) {
	switch strings.ToLower(resp.Header.Get("Content-Encoding")) {
	case "gzip":
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to create gzip reader: %w", err)
		}
		return &stackedCloser{Reader: gz, closers: []io.Closer{gz, resp.Body}}, nil
	case "br":
		return &stackedCloser{Reader: brotli.NewReader(resp.Body), closers: []io.Closer{resp.Body}}, nil
	default:
		return resp.Body, nil
	}
}

type stackedCloser struct {
	io.Reader
	closers []io.Closer
}

func (s *stackedCloser) Close() error {
	var first error
	for _, c := range s.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func dispositionFileName(header string) string {
	if header == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(header)
	if err != nil {
		return ""
	}
	return params["filename"]
}
