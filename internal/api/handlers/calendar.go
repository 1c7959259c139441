// Package handlers implements the HTTP endpoint handlers.
package handlers

import (
	"net/http"
	"time"

	"github.com/magicstocks/calendar/internal/artifact"
	"github.com/magicstocks/calendar/pkg/logger"
)

// CalendarHandler serves the published seasonal calendar.
type CalendarHandler struct {
	store  *artifact.Store
	logger *logger.Logger
	now    func() time.Time
}

// NewCalendarHandler creates the calendar read handlers.
func NewCalendarHandler(store *artifact.Store, log *logger.Logger) *CalendarHandler {
	return &CalendarHandler{
		store:  store,
		logger: log,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// GetHistorical returns the whole published calendar artifact.
// GET /api/calendar/historical
func (h *CalendarHandler) GetHistorical(w http.ResponseWriter, r *http.Request) {
	cal, err := h.store.Load()
	if err != nil {
		h.logger.WithError(err).Error("Calendar artifact load failed")
		respondError(w, http.StatusNotFound, "calendar not available yet")
		return
	}

	respondJSON(w, http.StatusOK, cal)
}

// GetTodaySignal resolves the current UTC day-of-year against the calendar.
// GET /api/signals/today
func (h *CalendarHandler) GetTodaySignal(w http.ResponseWriter, r *http.Request) {
	cal, err := h.store.Load()
	if err != nil {
		h.logger.WithError(err).Error("Calendar artifact load failed")
		respondError(w, http.StatusNotFound, "calendar not available yet")
		return
	}

	now := h.now()
	day := now.YearDay()
	slot, ok := cal.Slot(day)
	if !ok {
		respondError(w, http.StatusNotFound, "no slot for current day")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"date":           now.Format("2006-01-02"),
		"day_of_year":    day,
		"signal":         slot.Signal,
		"up_probability": slot.UpProbability,
		"model_accuracy": cal.ModelAccuracy,
		"generated_at":   cal.GeneratedAt,
	})
}
