package archive

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/eleven-am/streamplay/internal/dto"
	"github.com/eleven-am/streamplay/internal/shared"
	"github.com/labstack/echo/v4"
)

type Handler struct {
	store   BlobStore
	history *History
	logger  *slog.Logger
}

func NewHandler(store BlobStore, history *History, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		store:   store,
		history: history,
		logger:  logger,
	}
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("/archives/:id", h.GetArchive)
	g.GET("/history", h.ListHistory)
}

func (h *Handler) GetArchive(c echo.Context) error {
	id := TrimExtension(c.Param("id"))
	if id == "" {
		return shared.BadRequest("missing_id", "archive id is required")
	}

	data, err := h.store.Get(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NotFound("archive_not_found", "archive not found")
		}
		h.logger.Error("failed to load archive", "error", err, "archive_id", id)
		return shared.InternalError("get_archive_failed", "failed to load archive")
	}

	return c.Blob(http.StatusOK, FormatWAV, data)
}

func (h *Handler) ListHistory(c echo.Context) error {
	entries := h.history.List()

	resp := dto.HistoryResponse{
		Total:   len(entries),
		Entries: make([]dto.HistoryEntryResponse, len(entries)),
	}
	for i, e := range entries {
		resp.Entries[i] = entryToResponse(e)
	}

	return c.JSON(http.StatusOK, resp)
}

func referenceToResponse(r Reference) dto.ReferenceResponse {
	return dto.ReferenceResponse{
		ID:     r.ID,
		URL:    r.URL,
		Format: r.Format,
		Size:   r.Size,
	}
}

func entryToResponse(e Entry) dto.HistoryEntryResponse {
	return dto.HistoryEntryResponse{
		ID:        e.ID,
		Turn:      e.Turn,
		Received:  referenceToResponse(e.Received),
		Recorded:  referenceToResponse(e.Recorded),
		Status:    string(e.Status),
		CreatedAt: e.CreatedAt,
	}
}
