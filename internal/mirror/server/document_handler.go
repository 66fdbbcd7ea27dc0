package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/alexanderramin/riff/internal/apperrors"
	"github.com/alexanderramin/riff/internal/mirror/docstore"
	"github.com/gin-gonic/gin"
)

// snapshotEvent is the payload of every "snapshot" server-sent event.
type snapshotEvent struct {
	Exists    bool            `json:"exists"`
	Version   int64           `json:"version"`
	UpdatedAt *time.Time      `json:"updatedAt,omitempty"`
	Document  json.RawMessage `json:"document,omitempty"`
}

func eventFor(doc *docstore.Document) snapshotEvent {
	if doc == nil {
		return snapshotEvent{}
	}
	updated := doc.UpdatedAt
	return snapshotEvent{Exists: true, Version: doc.Version, UpdatedAt: &updated, Document: doc.Body}
}

type DocumentHandler struct {
	docs      *docstore.DocumentRepository
	hub       *docstore.Hub
	maxBytes  int64
	keepAlive time.Duration
	logger    *slog.Logger
}

func NewDocumentHandler(docs *docstore.DocumentRepository, hub *docstore.Hub, maxBytes int64, keepAlive time.Duration, logger *slog.Logger) *DocumentHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &DocumentHandler{docs: docs, hub: hub, maxBytes: maxBytes, keepAlive: keepAlive, logger: logger}
}

func (h *DocumentHandler) Get(c *gin.Context) {
	userID := c.Param("userID")
	doc, err := h.docs.Get(c.Request.Context(), userID)
	if errors.Is(err, docstore.ErrNotFound) {
		writeError(c, apperrors.NotFound("document_not_found", "no document for this user"))
		return
	}
	if err != nil {
		h.logger.Error("loading document failed", "user_id", userID, "error", err)
		writeError(c, apperrors.Internal("failed to load document"))
		return
	}
	c.JSON(http.StatusOK, eventFor(doc))
}

// Put replaces the caller's document in full and notifies subscribers,
// the writer included.
func (h *DocumentHandler) Put(c *gin.Context) {
	userID := c.Param("userID")

	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(c, apperrors.TooLarge("document exceeds size limit"))
			return
		}
		invalidJSON(c)
		return
	}

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' || !json.Valid(trimmed) {
		writeError(c, apperrors.BadRequest("invalid_document", "document must be a JSON object"))
		return
	}
	var compact bytes.Buffer
	if err := json.Compact(&compact, trimmed); err != nil {
		writeError(c, apperrors.BadRequest("invalid_document", "document must be a JSON object"))
		return
	}

	doc, err := h.docs.Put(c.Request.Context(), userID, compact.Bytes())
	if err != nil {
		h.logger.Error("storing document failed", "user_id", userID, "error", err)
		writeError(c, apperrors.Internal("failed to store document"))
		return
	}
	h.hub.Publish(*doc)
	h.logger.Debug("document replaced", "user_id", userID, "version", doc.Version, "bytes", compact.Len())

	c.JSON(http.StatusOK, gin.H{"version": doc.Version, "updatedAt": doc.UpdatedAt})
}

// Events streams the current document and every later replacement as
// "snapshot" server-sent events until the client goes away.
func (h *DocumentHandler) Events(c *gin.Context) {
	userID := c.Param("userID")
	ctx := c.Request.Context()

	updates, cancel := h.hub.Subscribe(userID)
	defer cancel()

	doc, err := h.docs.Get(ctx, userID)
	if err != nil && !errors.Is(err, docstore.ErrNotFound) {
		h.logger.Error("loading document failed", "user_id", userID, "error", err)
		writeError(c, apperrors.Internal("failed to load document"))
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	c.SSEvent("snapshot", eventFor(doc))
	c.Writer.Flush()

	keepAlive := time.NewTicker(h.keepAlive)
	defer keepAlive.Stop()

	h.logger.Debug("subscriber connected", "user_id", userID, "subscribers", h.hub.Subscribers(userID))
	c.Stream(func(io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case next, ok := <-updates:
			if !ok {
				return false
			}
			c.SSEvent("snapshot", eventFor(&next))
			return true
		case <-keepAlive.C:
			c.SSEvent("ping", gin.H{"at": time.Now().UTC()})
			return true
		}
	})
	h.logger.Debug("subscriber disconnected", "user_id", userID)
}
