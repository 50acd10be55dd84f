package api

import (
	"net/http"

	"github.com/hearthside/tourplan/internal/middleware"
	"github.com/hearthside/tourplan/internal/share"
)

// TourHandlers serves the share endpoints: publishing the active schedule
// as a snapshot and retrieving published snapshots for the read-only
// client view.
type TourHandlers struct {
	publisher *share.Publisher
	handlers  *ScheduleHandlers
	metrics   *middleware.Metrics
}

func NewTourHandlers(publisher *share.Publisher, handlers *ScheduleHandlers, metrics *middleware.Metrics) *TourHandlers {
	return &TourHandlers{publisher: publisher, handlers: handlers, metrics: metrics}
}

// PublishTour handles POST /tours. The active schedule is snapshotted
// under a fresh share id.
func (h *TourHandlers) PublishTour(w http.ResponseWriter, r *http.Request) {
	link, err := h.publisher.Publish(r.Context())
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, ErrCodeInternal, "failed to publish tour")
		return
	}
	if link == nil {
		WriteError(w, r, http.StatusBadRequest, ErrCodeValidation, "cannot share an empty tour")
		return
	}
	h.metrics.IncToursPublished()
	WriteJSON(r.Context(), w, http.StatusCreated, link)
}

// CurrentLink handles GET /share/link, returning the most recently
// published link for the active schedule.
func (h *TourHandlers) CurrentLink(w http.ResponseWriter, r *http.Request) {
	link := h.publisher.Current()
	if link == nil {
		WriteError(w, r, http.StatusNotFound, ErrCodeNotFound, "no tour has been shared")
		return
	}
	WriteJSON(r.Context(), w, http.StatusOK, link)
}

// GetTour handles GET /tours/{id} and GET /view/{id}, returning a
// published snapshot. Snapshots are independent of the active schedule:
// later edits do not show up here.
func (h *TourHandlers) GetTour(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	sched := h.handlers.store.TourByID(id)
	if sched == nil {
		WriteError(w, r, http.StatusNotFound, ErrCodeNotFound, "no properties found for this tour")
		return
	}
	WriteJSON(r.Context(), w, http.StatusOK, toScheduleResponse(*sched))
}
