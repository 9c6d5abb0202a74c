package handler

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/djcafe/cafe/internal/api/request"
	"github.com/djcafe/cafe/internal/api/response"
	"github.com/djcafe/cafe/internal/core"
	"github.com/djcafe/cafe/internal/display"
	"github.com/djcafe/cafe/internal/model"
	"github.com/djcafe/cafe/internal/storage"
)

// VideoStore is the object storage used for campaign videos.
type VideoStore interface {
	Enabled() bool
	PutVideo(ctx context.Context, key, contentType string, body io.Reader, size int64) error
	DeleteVideo(ctx context.Context, key string) error
	VideoURL(ctx context.Context, key string) (string, error)
}

type overlayPlayer interface {
	Play(ctx context.Context, campaignID string, manual bool) (*display.Overlay, error)
}

type scheduleReloader interface {
	Reload(ctx context.Context) (int, error)
}

type Campaign struct {
	svc       *core.CampaignService
	videos    VideoStore
	player    overlayPlayer
	scheduler scheduleReloader
	maxBytes  int64
}

// NewCampaign wires the campaign endpoints. scheduler may be nil.
func NewCampaign(svc *core.CampaignService, videos VideoStore, player overlayPlayer, scheduler scheduleReloader, maxBytes int64) *Campaign {
	return &Campaign{svc: svc, videos: videos, player: player, scheduler: scheduler, maxBytes: maxBytes}
}

func (h *Campaign) List(w http.ResponseWriter, r *http.Request) {
	campaigns, err := h.svc.List(r.Context(), r.URL.Query().Get("active") == "true")
	if err != nil {
		response.WriteServiceError(w, r, err)
		return
	}
	if campaigns == nil {
		campaigns = []model.Campaign{}
	}
	for i := range campaigns {
		h.resolveVideoURL(r.Context(), &campaigns[i])
	}
	response.WriteJSON(w, http.StatusOK, campaigns)
}

func (h *Campaign) Create(w http.ResponseWriter, r *http.Request) {
	var req request.CreateCampaign
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	c := &model.Campaign{
		Title:               req.Title,
		CountdownSeconds:    req.CountdownSeconds,
		VideoSeconds:        req.VideoSeconds,
		HighlightSeconds:    req.HighlightSeconds,
		HighlightProductIDs: req.HighlightProductIDs,
		Schedule:            emptyToNil(req.Schedule),
		Active:              true,
	}
	if req.Active != nil {
		c.Active = *req.Active
	}

	if err := h.svc.Create(r.Context(), c); err != nil {
		response.WriteServiceError(w, r, err)
		return
	}
	h.reloadSchedule(r)

	response.WriteJSON(w, http.StatusCreated, c)
}

func (h *Campaign) Get(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	c, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		response.WriteServiceError(w, r, err)
		return
	}
	h.resolveVideoURL(r.Context(), c)

	response.WriteJSON(w, http.StatusOK, c)
}

func (h *Campaign) Update(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req request.UpdateCampaign
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	c, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		response.WriteServiceError(w, r, err)
		return
	}

	if req.Title != nil {
		c.Title = *req.Title
	}
	if req.CountdownSeconds != nil {
		c.CountdownSeconds = *req.CountdownSeconds
	}
	if req.VideoSeconds != nil {
		c.VideoSeconds = *req.VideoSeconds
	}
	if req.HighlightSeconds != nil {
		c.HighlightSeconds = *req.HighlightSeconds
	}
	if req.HighlightProductIDs != nil {
		c.HighlightProductIDs = *req.HighlightProductIDs
	}
	if req.Schedule != nil {
		c.Schedule = emptyToNil(req.Schedule)
	}
	if req.Active != nil {
		c.Active = *req.Active
	}

	if err := h.svc.Update(r.Context(), c); err != nil {
		response.WriteServiceError(w, r, err)
		return
	}
	h.reloadSchedule(r)
	h.resolveVideoURL(r.Context(), c)

	response.WriteJSON(w, http.StatusOK, c)
}

func (h *Campaign) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	c, err := h.svc.Delete(r.Context(), id)
	if err != nil {
		response.WriteServiceError(w, r, err)
		return
	}
	if c.HasVideo() && h.videos.Enabled() {
		if err := h.videos.DeleteVideo(r.Context(), *c.VideoKey); err != nil {
			zerolog.Ctx(r.Context()).Warn().Err(err).Str("key", *c.VideoKey).Msg("failed to delete campaign video")
		}
	}
	h.reloadSchedule(r)

	w.WriteHeader(http.StatusNoContent)
}

// UploadVideo stores the request body as the campaign's video. The body is
// spooled to a temporary file first so the object upload is seekable and has
// a known length.
func (h *Campaign) UploadVideo(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !h.videos.Enabled() {
		response.WriteServiceError(w, r, storage.ErrDisabled)
		return
	}

	contentType := r.Header.Get("Content-Type")
	key, err := storage.ObjectKey(id, contentType)
	if err != nil {
		response.WriteError(w, http.StatusUnsupportedMediaType, err.Error())
		return
	}

	if _, err := h.svc.GetByID(r.Context(), id); err != nil {
		response.WriteServiceError(w, r, err)
		return
	}

	tmp, err := os.CreateTemp("", "cafe-video-*")
	if err != nil {
		response.WriteServiceError(w, r, err)
		return
	}
	defer os.Remove(tmp.Name())
	defer tmp.Close()

	size, err := io.Copy(tmp, http.MaxBytesReader(w, r.Body, h.maxBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.WriteError(w, http.StatusRequestEntityTooLarge, "video exceeds the upload limit")
			return
		}
		response.WriteError(w, http.StatusBadRequest, "read upload: "+err.Error())
		return
	}
	if size == 0 {
		response.WriteError(w, http.StatusBadRequest, "empty upload")
		return
	}
	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		response.WriteServiceError(w, r, err)
		return
	}

	if err := h.videos.PutVideo(r.Context(), key, contentType, tmp, size); err != nil {
		response.WriteServiceError(w, r, err)
		return
	}

	logger := zerolog.Ctx(r.Context())
	previous, err := h.svc.AttachVideo(r.Context(), id, key)
	if err != nil {
		if delErr := h.videos.DeleteVideo(r.Context(), key); delErr != nil {
			logger.Warn().Err(delErr).Str("key", key).Msg("failed to remove orphaned video")
		}
		response.WriteServiceError(w, r, err)
		return
	}
	if previous != nil && *previous != "" && *previous != key {
		if err := h.videos.DeleteVideo(r.Context(), *previous); err != nil {
			logger.Warn().Err(err).Str("key", *previous).Msg("failed to delete replaced video")
		}
	}
	h.reloadSchedule(r)

	c, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		response.WriteServiceError(w, r, err)
		return
	}
	h.resolveVideoURL(r.Context(), c)

	response.WriteJSON(w, http.StatusOK, c)
}

// Play starts the campaign overlay now, interrupting any running one.
func (h *Campaign) Play(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	o, err := h.player.Play(r.Context(), id, true)
	if err != nil {
		response.WriteServiceError(w, r, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, o)
}

func (h *Campaign) resolveVideoURL(ctx context.Context, c *model.Campaign) {
	if !c.HasVideo() || !h.videos.Enabled() {
		return
	}
	u, err := h.videos.VideoURL(ctx, *c.VideoKey)
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("campaign_id", c.ID).Msg("failed to resolve video url")
		return
	}
	c.VideoURL = u
}

func (h *Campaign) reloadSchedule(r *http.Request) {
	if h.scheduler == nil {
		return
	}
	if _, err := h.scheduler.Reload(r.Context()); err != nil {
		zerolog.Ctx(r.Context()).Warn().Err(err).Msg("failed to reload campaign schedule")
	}
}

func emptyToNil(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}
