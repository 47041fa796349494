package server

import (
	"context"
	"encoding/json"
	"net/http"

	"soundwave/events"
	"soundwave/logger"
	"soundwave/model"
	"soundwave/repository"

	"github.com/gorilla/mux"
)

// 1 MB is far beyond any song document.
const maxBodyBytes = 1 << 20

// APIHandler 处理歌曲相关的API请求
type APIHandler struct {
	songRepo  repository.SongRepository
	publisher events.Publisher
}

// NewAPIHandler 创建新的API处理器
// Events go through an AsyncPublisher so a slow broker never delays a response.
func NewAPIHandler(songRepo repository.SongRepository, publisher events.Publisher) *APIHandler {
	switch publisher.(type) {
	case nil:
		publisher = events.Noop{}
	case events.Noop, *events.AsyncPublisher:
	default:
		publisher = events.NewAsyncPublisher(publisher, 0, 0)
	}
	return &APIHandler{songRepo: songRepo, publisher: publisher}
}

// Close flushes queued events and closes the publisher.
func (h *APIHandler) Close() error {
	return h.publisher.Close()
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("Failed to encode response", logger.ErrorField(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// publish only enqueues; failures never reach the caller.
func (h *APIHandler) publish(kind string, song *model.Song) {
	if err := h.publisher.Publish(context.Background(), events.NewSongEvent(kind, song)); err != nil {
		logger.Warn("Failed to queue song event",
			logger.String("type", kind),
			logger.String("songId", song.Key),
			logger.ErrorField(err))
	}
}

// ListSongsHandler GET /api/songs
func (h *APIHandler) ListSongsHandler(w http.ResponseWriter, r *http.Request) {
	logger.Debug("Handling list songs request", logger.String("path", r.URL.Path))

	songs, err := h.songRepo.List(r.Context())
	if err != nil {
		logger.Error("Failed to get songs", logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Failed to get songs")
		return
	}
	if songs == nil {
		songs = []*model.Song{}
	}

	logger.Debug("Successfully retrieved songs", logger.Int("count", len(songs)))
	writeJSON(w, http.StatusOK, songs)
}

// GetSongHandler GET /api/songs/{id}
func (h *APIHandler) GetSongHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	logger.Debug("Handling get song request", logger.String("songId", id))

	song, err := h.songRepo.GetByID(r.Context(), id)
	if err != nil {
		logger.Error("Failed to get song",
			logger.String("songId", id),
			logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Failed to get song")
		return
	}
	if song == nil {
		logger.Warn("Song not found", logger.String("songId", id))
		writeError(w, http.StatusNotFound, "Song not found")
		return
	}

	writeJSON(w, http.StatusOK, song)
}

// CreateSongHandler POST /api/songs
func (h *APIHandler) CreateSongHandler(w http.ResponseWriter, r *http.Request) {
	logger.Debug("Handling create song request")

	var song model.Song
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&song); err != nil {
		logger.Warn("Invalid song body", logger.ErrorField(err))
		writeError(w, http.StatusBadRequest, "Failed to add song")
		return
	}
	song.Key = ""

	created, err := h.songRepo.Create(r.Context(), &song)
	if err != nil {
		logger.Error("Failed to add song",
			logger.String("title", song.Title),
			logger.ErrorField(err))
		writeError(w, http.StatusBadRequest, "Failed to add song")
		return
	}

	logger.Info("Song created",
		logger.String("songId", created.Key),
		logger.String("title", created.Title),
		logger.String("artist", created.Artist))
	writeJSON(w, http.StatusCreated, created)
	h.publish(model.SongCreated, created)
}

// UpdateSongHandler PATCH /api/songs/{id}
func (h *APIHandler) UpdateSongHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	logger.Debug("Handling update song request", logger.String("songId", id))

	var patch model.SongPatch
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&patch); err != nil {
		logger.Warn("Invalid song patch", logger.String("songId", id), logger.ErrorField(err))
		writeError(w, http.StatusBadRequest, "Failed to update song")
		return
	}

	updated, err := h.songRepo.Update(r.Context(), id, &patch)
	if err != nil {
		logger.Error("Failed to update song",
			logger.String("songId", id),
			logger.ErrorField(err))
		writeError(w, http.StatusBadRequest, "Failed to update song")
		return
	}
	if updated == nil {
		logger.Warn("Song not found", logger.String("songId", id))
		writeError(w, http.StatusNotFound, "Song not found")
		return
	}

	logger.Info("Song updated",
		logger.String("songId", id),
		logger.Any("fields", patch.Fields()))
	writeJSON(w, http.StatusOK, updated)
	h.publish(model.SongUpdated, updated)
}

// DeleteSongHandler DELETE /api/songs/{id}
func (h *APIHandler) DeleteSongHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	logger.Debug("Handling delete song request", logger.String("songId", id))

	deleted, err := h.songRepo.Delete(r.Context(), id)
	if err != nil {
		logger.Error("Failed to delete song",
			logger.String("songId", id),
			logger.ErrorField(err))
		writeError(w, http.StatusBadRequest, "Failed to delete song")
		return
	}
	if deleted == nil {
		logger.Warn("Song not found", logger.String("songId", id))
		writeError(w, http.StatusNotFound, "Song not found")
		return
	}

	logger.Info("Song deleted", logger.String("songId", id), logger.String("title", deleted.Title))
	writeJSON(w, http.StatusOK, map[string]string{"message": "Song deleted"})
	h.publish(model.SongDeleted, deleted)
}

// HealthHandler GET /healthz
func (h *APIHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
