package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/hearthside/tourplan/internal/middleware"
	"github.com/hearthside/tourplan/internal/tour"
	"github.com/hearthside/tourplan/internal/validate"
)

// ScheduleHandlers serves the tour schedule endpoints.
type ScheduleHandlers struct {
	store   *tour.Store
	metrics *middleware.Metrics
}

func NewScheduleHandlers(store *tour.Store, metrics *middleware.Metrics) *ScheduleHandlers {
	return &ScheduleHandlers{store: store, metrics: metrics}
}

type propertyResponse struct {
	ID                 string     `json:"id"`
	Address            string     `json:"address"`
	Price              int64      `json:"price"`
	PriceDisplay       string     `json:"priceDisplay"`
	Bedrooms           float64    `json:"bedrooms"`
	Bathrooms          float64    `json:"bathrooms"`
	SquareFootage      int        `json:"squareFootage"`
	ImageURL           string     `json:"imageUrl,omitempty"`
	Description        string     `json:"description,omitempty"`
	ViewingTime        string     `json:"viewingTime"`
	ViewingTimeDisplay string     `json:"viewingTimeDisplay"`
	Location           tour.Point `json:"location"`
}

type scheduleResponse struct {
	TourDate   string             `json:"tourDate"`
	AgentName  string             `json:"agentName"`
	ClientName string             `json:"clientName"`
	Properties []propertyResponse `json:"properties"`
}

func toPropertyResponse(p tour.Property) propertyResponse {
	return propertyResponse{
		ID:                 p.ID,
		Address:            p.Address,
		Price:              p.Price,
		PriceDisplay:       tour.FormatCurrency(p.Price),
		Bedrooms:           p.Bedrooms,
		Bathrooms:          p.Bathrooms,
		SquareFootage:      p.SquareFootage,
		ImageURL:           p.ImageURL,
		Description:        p.Description,
		ViewingTime:        p.ViewingTime,
		ViewingTimeDisplay: tour.FormatTime(p.ViewingTime),
		Location:           p.Location,
	}
}

func toScheduleResponse(s tour.Schedule) scheduleResponse {
	sorted := tour.SortByViewingTime(s.Properties)
	props := make([]propertyResponse, 0, len(sorted))
	for _, p := range sorted {
		props = append(props, toPropertyResponse(p))
	}
	return scheduleResponse{
		TourDate:   s.TourDate,
		AgentName:  s.AgentName,
		ClientName: s.ClientName,
		Properties: props,
	}
}

// GetSchedule handles GET /schedule.
func (h *ScheduleHandlers) GetSchedule(w http.ResponseWriter, r *http.Request) {
	sched := h.store.Schedule()
	WriteJSON(r.Context(), w, http.StatusOK, toScheduleResponse(sched))
}

type addPropertyRequest struct {
	Address       string     `json:"address"`
	Price         int64      `json:"price"`
	Bedrooms      float64    `json:"bedrooms"`
	Bathrooms     float64    `json:"bathrooms"`
	SquareFootage int        `json:"squareFootage"`
	ImageURL      string     `json:"imageUrl"`
	Description   string     `json:"description"`
	ViewingTime   string     `json:"viewingTime"`
	Location      tour.Point `json:"location"`
}

func (req *addPropertyRequest) validate() (code, message string) {
	address, err := validate.Address(req.Address)
	if err != nil {
		return ErrCodeValidation, "address is required and must be at most 200 characters"
	}
	req.Address = address
	desc, err := validate.Description(req.Description)
	if err != nil {
		return ErrCodeValidation, "description is too long"
	}
	req.Description = desc
	if req.ImageURL != "" {
		imageURL, err := validate.ImageURL(req.ImageURL)
		if err != nil {
			return ErrCodeValidation, "imageUrl must be a valid http or https URL"
		}
		req.ImageURL = imageURL
	}
	if !tour.ValidViewingTime(req.ViewingTime) {
		return ErrCodeValidation, "viewingTime must be in HH:MM format"
	}
	if req.Price < 0 {
		return ErrCodeValidation, "price must not be negative"
	}
	if req.Bedrooms < 0 || req.Bathrooms < 0 {
		return ErrCodeValidation, "bedrooms and bathrooms must not be negative"
	}
	if req.SquareFootage < 0 {
		return ErrCodeValidation, "squareFootage must not be negative"
	}
	if req.Location.Lat < -90 || req.Location.Lat > 90 || req.Location.Lng < -180 || req.Location.Lng > 180 {
		return ErrCodeValidation, "location is out of range"
	}
	return "", ""
}

// AddProperty handles POST /schedule/properties.
func (h *ScheduleHandlers) AddProperty(w http.ResponseWriter, r *http.Request) {
	var req addPropertyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, r, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	if code, msg := req.validate(); code != "" {
		WriteError(w, r, http.StatusBadRequest, code, msg)
		return
	}

	prop := tour.Property{
		ID:            tour.NewPropertyID(),
		Address:       req.Address,
		Price:         req.Price,
		Bedrooms:      req.Bedrooms,
		Bathrooms:     req.Bathrooms,
		SquareFootage: req.SquareFootage,
		ImageURL:      req.ImageURL,
		Description:   req.Description,
		ViewingTime:   req.ViewingTime,
		Location:      req.Location,
	}
	if err := h.store.AddProperty(r.Context(), prop); err != nil {
		if errors.Is(err, tour.ErrDuplicateID) {
			WriteError(w, r, http.StatusConflict, ErrCodeDuplicateID, "property id already exists")
			return
		}
		WriteError(w, r, http.StatusInternalServerError, ErrCodeInternal, "failed to add property")
		return
	}
	h.metrics.IncTourMutation("add_property")
	WriteJSON(r.Context(), w, http.StatusCreated, toPropertyResponse(prop))
}

type updatePropertyRequest struct {
	Address       *string     `json:"address"`
	Price         *int64      `json:"price"`
	Bedrooms      *float64    `json:"bedrooms"`
	Bathrooms     *float64    `json:"bathrooms"`
	SquareFootage *int        `json:"squareFootage"`
	ImageURL      *string     `json:"imageUrl"`
	Description   *string     `json:"description"`
	ViewingTime   *string     `json:"viewingTime"`
	Location      *tour.Point `json:"location"`
}

// UpdateProperty handles PATCH /schedule/properties/{id}. Updating a
// property that is not on the schedule succeeds without effect.
func (h *ScheduleHandlers) UpdateProperty(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	var req updatePropertyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, r, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	if req.ViewingTime != nil && !tour.ValidViewingTime(*req.ViewingTime) {
		WriteError(w, r, http.StatusBadRequest, ErrCodeValidation, "viewingTime must be in HH:MM format")
		return
	}
	if req.Price != nil && *req.Price < 0 {
		WriteError(w, r, http.StatusBadRequest, ErrCodeValidation, "price must not be negative")
		return
	}
	if (req.Bedrooms != nil && *req.Bedrooms < 0) || (req.Bathrooms != nil && *req.Bathrooms < 0) {
		WriteError(w, r, http.StatusBadRequest, ErrCodeValidation, "bedrooms and bathrooms must not be negative")
		return
	}
	if req.SquareFootage != nil && *req.SquareFootage < 0 {
		WriteError(w, r, http.StatusBadRequest, ErrCodeValidation, "squareFootage must not be negative")
		return
	}
	if req.Location != nil &&
		(req.Location.Lat < -90 || req.Location.Lat > 90 || req.Location.Lng < -180 || req.Location.Lng > 180) {
		WriteError(w, r, http.StatusBadRequest, ErrCodeValidation, "location is out of range")
		return
	}
	if req.Address != nil {
		address, err := validate.Address(*req.Address)
		if err != nil {
			WriteError(w, r, http.StatusBadRequest, ErrCodeValidation, "address is required and must be at most 200 characters")
			return
		}
		req.Address = &address
	}
	if req.ImageURL != nil && *req.ImageURL != "" {
		imageURL, err := validate.ImageURL(*req.ImageURL)
		if err != nil {
			WriteError(w, r, http.StatusBadRequest, ErrCodeValidation, "imageUrl must be a valid http or https URL")
			return
		}
		req.ImageURL = &imageURL
	}

	patch := tour.PropertyPatch{
		Address:       req.Address,
		Price:         req.Price,
		Bedrooms:      req.Bedrooms,
		Bathrooms:     req.Bathrooms,
		SquareFootage: req.SquareFootage,
		ImageURL:      req.ImageURL,
		Description:   req.Description,
		ViewingTime:   req.ViewingTime,
		Location:      req.Location,
	}
	if err := h.store.UpdateProperty(r.Context(), id, patch); err != nil {
		WriteError(w, r, http.StatusInternalServerError, ErrCodeInternal, "failed to update property")
		return
	}
	h.metrics.IncTourMutation("update_property")
	w.WriteHeader(http.StatusNoContent)
}

// RemoveProperty handles DELETE /schedule/properties/{id}. Removing a
// property that is not on the schedule succeeds without effect.
func (h *ScheduleHandlers) RemoveProperty(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.store.RemoveProperty(r.Context(), id); err != nil {
		WriteError(w, r, http.StatusInternalServerError, ErrCodeInternal, "failed to remove property")
		return
	}
	h.metrics.IncTourMutation("remove_property")
	w.WriteHeader(http.StatusNoContent)
}

type updateScheduleRequest struct {
	TourDate   *string `json:"tourDate"`
	AgentName  *string `json:"agentName"`
	ClientName *string `json:"clientName"`
}

// UpdateSchedule handles PATCH /schedule for the tour date and the agent
// and client names.
func (h *ScheduleHandlers) UpdateSchedule(w http.ResponseWriter, r *http.Request) {
	var req updateScheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, r, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	if req.TourDate != nil {
		date, err := validate.TourDate(*req.TourDate)
		if err != nil {
			WriteError(w, r, http.StatusBadRequest, ErrCodeValidation, "tourDate must be in YYYY-MM-DD format")
			return
		}
		req.TourDate = &date
	}
	if req.AgentName != nil {
		name, err := validate.PersonName(*req.AgentName)
		if err != nil {
			WriteError(w, r, http.StatusBadRequest, ErrCodeValidation, "agentName must be at most 100 characters")
			return
		}
		req.AgentName = &name
	}
	if req.ClientName != nil {
		name, err := validate.PersonName(*req.ClientName)
		if err != nil {
			WriteError(w, r, http.StatusBadRequest, ErrCodeValidation, "clientName must be at most 100 characters")
			return
		}
		req.ClientName = &name
	}

	ctx := r.Context()
	if req.TourDate != nil {
		if err := h.store.SetTourDate(ctx, *req.TourDate); err != nil {
			WriteError(w, r, http.StatusInternalServerError, ErrCodeInternal, "failed to update schedule")
			return
		}
	}
	if req.AgentName != nil {
		if err := h.store.SetAgentName(ctx, *req.AgentName); err != nil {
			WriteError(w, r, http.StatusInternalServerError, ErrCodeInternal, "failed to update schedule")
			return
		}
	}
	if req.ClientName != nil {
		if err := h.store.SetClientName(ctx, *req.ClientName); err != nil {
			WriteError(w, r, http.StatusInternalServerError, ErrCodeInternal, "failed to update schedule")
			return
		}
	}
	h.metrics.IncTourMutation("update_schedule")
	WriteJSON(ctx, w, http.StatusOK, toScheduleResponse(h.store.Schedule()))
}

// ClearSchedule handles POST /schedule/clear. Shared tour snapshots are
// kept.
func (h *ScheduleHandlers) ClearSchedule(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Clear(r.Context()); err != nil {
		WriteError(w, r, http.StatusInternalServerError, ErrCodeInternal, "failed to clear schedule")
		return
	}
	h.metrics.IncTourMutation("clear_schedule")
	w.WriteHeader(http.StatusNoContent)
}
