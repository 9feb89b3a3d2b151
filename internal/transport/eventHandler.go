package transport

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/x9sg296jrh-cell/gt-jfc-auditor-clean/internal/entity"
	"github.com/x9sg296jrh-cell/gt-jfc-auditor-clean/internal/service"
)

type EventHandler struct {
	eventService service.EventService
}

func NewEventHandler(eventService service.EventService) *EventHandler {
	return &EventHandler{eventService: eventService}
}

// GetEvents serves the windowed event query. Malformed window parameters
// fall back to defaults inside the service; a best-effort list beats an
// error page. lat/lng must be supplied together or are ignored.
func (h *EventHandler) GetEvents(c *gin.Context) {
	req := service.QueryRequest{
		Start: c.Query("start"),
		End:   c.Query("end"),
		Date:  c.Query("date"),
	}

	latStr, lngStr := c.Query("lat"), c.Query("lng")
	if latStr != "" || lngStr != "" {
		lat, latErr := strconv.ParseFloat(latStr, 64)
		lng, lngErr := strconv.ParseFloat(lngStr, 64)
		if latErr == nil && lngErr == nil {
			req.Origin = &entity.GeoPoint{Lat: lat, Lng: lng}
		} else {
			logrus.Warnf("events: ignoring incomplete origin lat=%q lng=%q", latStr, lngStr)
		}
	}

	result, err := h.eventService.Query(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read events"})
		return
	}

	c.JSON(http.StatusOK, result)
}

// Refresh triggers one ingestion run and reports its outcome.
func (h *EventHandler) Refresh(c *gin.Context) {
	result, err := h.eventService.Refresh(c.Request.Context())
	if err != nil {
		switch {
		case errors.Is(err, entity.ErrRefreshInProgress):
			c.JSON(http.StatusConflict, gin.H{"success": false, "message": err.Error()})
		case errors.Is(err, entity.ErrUpstreamUnavailable), errors.Is(err, entity.ErrEmptyRun):
			c.JSON(http.StatusBadGateway, result)
		default:
			c.JSON(http.StatusInternalServerError, result)
		}
		return
	}

	c.JSON(http.StatusOK, result)
}
