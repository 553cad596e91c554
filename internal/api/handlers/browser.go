package handlers

import (
	"context"
	"io"
	"mime"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/denisAlshanov/vidgrab/internal/api/middleware"
	"github.com/denisAlshanov/vidgrab/internal/browser"
	"github.com/denisAlshanov/vidgrab/internal/models"
	"github.com/denisAlshanov/vidgrab/internal/services/storage"
	"github.com/denisAlshanov/vidgrab/internal/services/tokens"
	"github.com/denisAlshanov/vidgrab/internal/utils"
)

// StateResponse is returned by every browser endpoint that changes state.
type StateResponse struct {
	State  browser.State `json:"state"`
	Alerts []string      `json:"alerts"`
	// Stale is set when a newer search overtook this one.
	Stale bool `json:"stale,omitempty"`
}

type SaveResponse struct {
	File   models.SavedFile `json:"file"`
	Alerts []string         `json:"alerts"`
}

type BrowserHandler struct {
	registry *browser.Registry
	signer   *tokens.Signer
	saver    storage.Saver
}

func NewBrowserHandler(registry *browser.Registry, signer *tokens.Signer, saver storage.Saver) *BrowserHandler {
	return &BrowserHandler{
		registry: registry,
		signer:   signer,
		saver:    saver,
	}
}

// SearchFormats godoc
// @Summary Look up the formats of a link
// @Description Asks the download service for the formats of a video and renders them into the session's video and audio lists. Lookup errors come back as alerts.
// @Tags browser
// @Accept json
// @Produce json
// @Param request body models.SearchRequest true "Link to look up"
// @Success 200 {object} StateResponse
// @Failure 400 {object} map[string]interface{}
// @Failure 422 {object} map[string]interface{}
// @Failure 502 {object} map[string]interface{}
// @Router /api/v1/formats [post]
func (h *BrowserHandler) SearchFormats(c *gin.Context) {
	ctx := c.Request.Context()
	session := h.session(c)

	var req models.SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errorResponse(c, session, utils.NewValidationError("Invalid request body", map[string]interface{}{
			"error": err.Error(),
		}))
		return
	}

	err := session.Controller.FetchFormats(ctx, req.URL)
	switch {
	case err == nil:
		h.stateResponse(c, session, false)
	case utils.HasCode(err, utils.ErrorCodeStaleResponse):
		h.stateResponse(c, session, true)
	default:
		h.errorResponse(c, session, utils.AsAppError(err))
	}
}

// ToggleMenu godoc
// @Summary Show or hide a format list
// @Tags browser
// @Produce json
// @Param menu path string true "video or audio"
// @Success 200 {object} StateResponse
// @Failure 404 {object} map[string]interface{}
// @Router /api/v1/menus/{menu}/toggle [post]
func (h *BrowserHandler) ToggleMenu(c *gin.Context) {
	session := h.session(c)

	id, err := browser.ParseMenuID(c.Param("menu"))
	if err != nil {
		h.errorResponse(c, session, utils.AsAppError(err))
		return
	}
	if _, err := session.Controller.ToggleMenu(id); err != nil {
		h.errorResponse(c, session, utils.AsAppError(err))
		return
	}
	h.stateResponse(c, session, false)
}

// GetState godoc
// @Summary Current browser state
// @Description Returns the session's title, lists and download status, and any alerts not yet shown.
// @Tags browser
// @Produce json
// @Success 200 {object} StateResponse
// @Router /api/v1/state [get]
func (h *BrowserHandler) GetState(c *gin.Context) {
	h.stateResponse(c, h.session(c), false)
}

// Download godoc
// @Summary Download a format to the browser
// @Description Relays the selected format from the download service as an attachment.
// @Tags browser
// @Accept json
// @Produce application/octet-stream
// @Param request body models.TokenRequest true "Signed menu entry"
// @Success 200 {file} binary "Downloaded file"
// @Failure 400 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Failure 502 {object} map[string]interface{}
// @Router /api/v1/download [post]
func (h *BrowserHandler) Download(c *gin.Context) {
	ctx := c.Request.Context()
	session := h.session(c)

	entry, ok := h.entryFromToken(c, session)
	if !ok {
		return
	}

	rs := &responseSaver{c: c}
	if _, err := session.Controller.DownloadTo(ctx, entry, rs); err != nil {
		if rs.started {
			// Headers are gone; all that is left is to cut the stream.
			utils.LogError(ctx, "Download aborted mid-stream", err)
			c.Abort()
			return
		}
		h.errorResponse(c, session, utils.AsAppError(err))
	}
}

// Save godoc
// @Summary Download a format into server storage
// @Description Downloads the selected format into the configured storage (local directory or S3) and reports where it was saved.
// @Tags browser
// @Accept json
// @Produce json
// @Param request body models.TokenRequest true "Signed menu entry"
// @Success 200 {object} SaveResponse
// @Failure 400 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Failure 502 {object} map[string]interface{}
// @Router /api/v1/save [post]
func (h *BrowserHandler) Save(c *gin.Context) {
	ctx := c.Request.Context()
	session := h.session(c)

	entry, ok := h.entryFromToken(c, session)
	if !ok {
		return
	}

	saved, err := session.Controller.DownloadTo(ctx, entry, h.saver)
	if err != nil {
		h.errorResponse(c, session, utils.AsAppError(err))
		return
	}

	c.JSON(http.StatusOK, SaveResponse{
		File:   *saved,
		Alerts: h.drain(session),
	})
}

func (h *BrowserHandler) entryFromToken(c *gin.Context, session *browser.Session) (models.MenuEntry, bool) {
	var req models.TokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errorResponse(c, session, utils.NewValidationError("Invalid request body", map[string]interface{}{
			"error": err.Error(),
		}))
		return models.MenuEntry{}, false
	}

	entry, err := h.signer.Parse(req.Token)
	if err != nil {
		utils.LogWarn(c.Request.Context(), "Rejected entry token", utils.Fields{"error": err.Error()})
		h.errorResponse(c, session, utils.NewInvalidTokenError(err))
		return models.MenuEntry{}, false
	}
	return entry, true
}

func (h *BrowserHandler) session(c *gin.Context) *browser.Session {
	return h.registry.Get(middleware.SessionID(c))
}

func (h *BrowserHandler) drain(session *browser.Session) []string {
	if session.Alerts == nil {
		return []string{}
	}
	return session.Alerts.Drain()
}

// signedState returns the session state with a token on every entry.
func (h *BrowserHandler) signedState(session *browser.Session) (browser.State, error) {
	state := session.Controller.State()
	if err := h.signer.SignEntries(state.Video.Items); err != nil {
		return state, err
	}
	if err := h.signer.SignEntries(state.Audio.Items); err != nil {
		return state, err
	}
	return state, nil
}

func (h *BrowserHandler) stateResponse(c *gin.Context, session *browser.Session, stale bool) {
	state, err := h.signedState(session)
	if err != nil {
		utils.LogError(c.Request.Context(), "Failed to sign menu entries", err)
		h.errorResponse(c, session, utils.NewInternalError())
		return
	}

	c.JSON(http.StatusOK, StateResponse{
		State:  state,
		Alerts: h.drain(session),
		Stale:  stale,
	})
}

func (h *BrowserHandler) errorResponse(c *gin.Context, session *browser.Session, err *utils.AppError) {
	body := gin.H{
		"error":      err,
		"alerts":     h.drain(session),
		"request_id": c.GetString("request_id"),
		"timestamp":  time.Now().Format(time.RFC3339),
	}
	if state, signErr := h.signedState(session); signErr == nil {
		body["state"] = state
	}
	c.JSON(err.StatusCode, body)
}

// responseSaver streams a download straight into the HTTP response.
type responseSaver struct {
	c       *gin.Context
	started bool
}

func (s *responseSaver) Save(ctx context.Context, name string, body io.Reader, contentType string) (*models.SavedFile, error) {
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	header := s.c.Writer.Header()
	header.Set("Content-Type", contentType)
	header.Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name}))
	header.Set("Cache-Control", "no-store")

	s.started = true
	s.c.Status(http.StatusOK)
	n, err := io.Copy(s.c.Writer, body)
	if err != nil {
		return nil, err
	}

	return &models.SavedFile{
		Name:        name,
		Location:    "response",
		Size:        n,
		ContentType: contentType,
	}, nil
}
