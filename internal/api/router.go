package api

import (
	"net/http"
)

// Handlers bundles the handler groups the router wires up. Geocode and
// Uploads are optional and left unrouted when nil.
type Handlers struct {
	Schedule *ScheduleHandlers
	Tours    *TourHandlers
	Maps     *MapHandlers
	Geocode  *GeocodeHandlers
	Uploads  *UploadHandlers
	Health   *HealthHandlers
}

// NewRouter builds the route table on a standard ServeMux.
func NewRouter(h Handlers) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /schedule", h.Schedule.GetSchedule)
	mux.HandleFunc("PATCH /schedule", h.Schedule.UpdateSchedule)
	mux.HandleFunc("POST /schedule/clear", h.Schedule.ClearSchedule)
	mux.HandleFunc("POST /schedule/properties", h.Schedule.AddProperty)
	mux.HandleFunc("PATCH /schedule/properties/{id}", h.Schedule.UpdateProperty)
	mux.HandleFunc("DELETE /schedule/properties/{id}", h.Schedule.RemoveProperty)

	mux.HandleFunc("POST /tours", h.Tours.PublishTour)
	mux.HandleFunc("GET /tours/{id}", h.Tours.GetTour)
	mux.HandleFunc("GET /view/{id}", h.Tours.GetTour)
	mux.HandleFunc("GET /share/link", h.Tours.CurrentLink)

	mux.HandleFunc("GET /map", h.Maps.GetMap)
	mux.HandleFunc("GET /map/style", h.Maps.GetMapStyle)
	mux.HandleFunc("POST /map/select", h.Maps.SelectMarker)
	mux.HandleFunc("DELETE /map/select", h.Maps.ClearSelection)

	if h.Geocode != nil {
		mux.HandleFunc("GET /geocode", h.Geocode.Search)
	}
	if h.Uploads != nil {
		mux.HandleFunc("POST /uploads/sign", h.Uploads.SignUpload)
	}

	mux.HandleFunc("GET /health", h.Health.Health)
	mux.HandleFunc("GET /ready", h.Health.Ready)

	return mux
}
