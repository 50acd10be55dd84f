// Package tour provides the data model, derived views, and stateful store
// for property viewing tour schedules.
package tour

import "time"

// Point represents a geographic coordinate with latitude and longitude.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Property represents a geocoded listing on a tour schedule.
// ViewingTime is a wall-clock time in 24-hour HH:MM form with no date
// or timezone attached.
type Property struct {
	ID            string  `json:"id"`
	Address       string  `json:"address"`
	Price         int64   `json:"price"`
	Bedrooms      float64 `json:"bedrooms"`
	Bathrooms     float64 `json:"bathrooms"`
	SquareFootage int     `json:"square_footage"`
	ImageURL      string  `json:"image_url"`
	Description   string  `json:"description,omitempty"`
	ViewingTime   string  `json:"viewing_time"`
	Location      Point   `json:"location"`
}

// Clone returns an independent copy of the property.
func (p Property) Clone() Property {
	return p
}

// Schedule represents the active, editable tour: an insertion-ordered list
// of properties plus tour metadata. Property order is entry order and is
// independent of viewing time; time ordering is derived at display time.
type Schedule struct {
	Properties []Property `json:"properties"`
	TourDate   string     `json:"tour_date"`
	AgentName  string     `json:"agent_name,omitempty"`
	ClientName string     `json:"client_name,omitempty"`
}

// NewSchedule returns the initial empty schedule: no properties, the given
// moment's calendar date, and empty agent/client names.
func NewSchedule(now time.Time) Schedule {
	return Schedule{
		Properties: []Property{},
		TourDate:   now.Format("2006-01-02"),
	}
}

// Clone returns a deep copy of the schedule. Snapshots and repository
// round-trips must never alias live state.
func (s Schedule) Clone() Schedule {
	out := s
	out.Properties = make([]Property, len(s.Properties))
	copy(out.Properties, s.Properties)
	return out
}

// PropertyPatch carries partial updates for a property. Nil fields are
// left unchanged.
type PropertyPatch struct {
	Address       *string  `json:"address,omitempty"`
	Price         *int64   `json:"price,omitempty"`
	Bedrooms      *float64 `json:"bedrooms,omitempty"`
	Bathrooms     *float64 `json:"bathrooms,omitempty"`
	SquareFootage *int     `json:"square_footage,omitempty"`
	ImageURL      *string  `json:"image_url,omitempty"`
	Description   *string  `json:"description,omitempty"`
	ViewingTime   *string  `json:"viewing_time,omitempty"`
	Location      *Point   `json:"location,omitempty"`
}

// Apply merges the patch into the property, field by field.
func (pp PropertyPatch) Apply(p *Property) {
	if pp.Address != nil {
		p.Address = *pp.Address
	}
	if pp.Price != nil {
		p.Price = *pp.Price
	}
	if pp.Bedrooms != nil {
		p.Bedrooms = *pp.Bedrooms
	}
	if pp.Bathrooms != nil {
		p.Bathrooms = *pp.Bathrooms
	}
	if pp.SquareFootage != nil {
		p.SquareFootage = *pp.SquareFootage
	}
	if pp.ImageURL != nil {
		p.ImageURL = *pp.ImageURL
	}
	if pp.Description != nil {
		p.Description = *pp.Description
	}
	if pp.ViewingTime != nil {
		p.ViewingTime = *pp.ViewingTime
	}
	if pp.Location != nil {
		p.Location = *pp.Location
	}
}
