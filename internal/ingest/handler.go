package ingest

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	httperr "github.com/locus-lab/project-locus/internal/core/errors"
	"github.com/locus-lab/project-locus/internal/domain"
	"github.com/locus-lab/project-locus/internal/timezone"
)

// locationPayload is the wire shape of one ping. The timestamp is the
// client's local wall clock, with or without a UTC offset. Numeric
// fields are pointers so "missing" and "zero" stay distinguishable.
type locationPayload struct {
	Timestamp string   `json:"timestamp" binding:"required"`
	Lat       *float64 `json:"lat" binding:"required,gte=-90,lte=90"`
	Long      *float64 `json:"long" binding:"required,gte=-180,lte=180"`
	Accuracy  *float64 `json:"accuracy" binding:"required"`
	Speed     *float64 `json:"speed" binding:"required"`
	UserID    string   `json:"user_id" binding:"required"`
}

// PutLocationHandler accepts one ping and dispatches it on the bus.
// A silently dropped stale sample still answers 202: the client has
// nothing to correct.
func (s *Service) PutLocationHandler(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.maxBodySizeBytes)

	var payload locationPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		slog.Warn("Invalid location payload", "error", err)
		c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
			ErrorType: httperr.HttpInvalidJsonError,
			Message:   "Invalid location payload",
		})
		return
	}

	ts, naive, err := timezone.ParseTimestamp(payload.Timestamp)
	if err != nil {
		c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
			ErrorType: httperr.HttpValidationError,
			Message:   err.Error(),
		})
		return
	}

	cmd := domain.PutLocation{
		Timestamp: ts,
		Naive:     naive,
		Lat:       *payload.Lat,
		Long:      *payload.Long,
		Accuracy:  *payload.Accuracy,
		Speed:     *payload.Speed,
		UserID:    payload.UserID,
	}

	slog.Info("Received ping",
		"user_id", cmd.UserID,
		"timestamp", payload.Timestamp,
		"naive", naive)

	if _, err := s.bus.Handle(c.Request.Context(), cmd); err != nil {
		writeCommandError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"status": "accepted"})
}

func writeCommandError(c *gin.Context, err error) {
	if errors.Is(err, timezone.ErrNoZone) {
		c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
			ErrorType: httperr.HttpTimezoneError,
			Message:   err.Error(),
		})
		return
	}
	slog.Error("Failed to handle location command", "error", err)
	c.JSON(http.StatusInternalServerError, httperr.ErrorResponse{
		ErrorType: httperr.HttpInternalError,
		Message:   "Failed to process location",
	})
}
