package maps

import (
	"sync"

	"github.com/hearthside/tourplan/internal/geo"
	"github.com/hearthside/tourplan/internal/tour"
)

// DefaultZoom is the zoom level used when centering on a tour.
const DefaultZoom = 12

// Marker is one labeled map pin. The label is the property's viewing time
// in 12-hour form.
type Marker struct {
	PropertyID string     `json:"property_id"`
	Label      string     `json:"label"`
	Position   tour.Point `json:"position"`
}

// View is the render model the map client consumes: a center and zoom,
// one marker per property, and at most one selected marker whose detail
// popup is open. Placeholder is set when there is nothing to render (no
// properties, or the style never loaded).
type View struct {
	Placeholder bool       `json:"placeholder"`
	Center      tour.Point `json:"center,omitempty"`
	Zoom        int        `json:"zoom,omitempty"`
	Markers     []Marker   `json:"markers,omitempty"`
	SelectedID  string     `json:"selected_id,omitempty"`
	MapReady    bool       `json:"map_ready"`
}

// Presenter derives the map view from the current property list and
// tracks the single selected marker. Selection survives re-centering but
// is dropped when the selected property leaves the list.
type Presenter struct {
	mu       sync.Mutex
	selected string
}

// NewPresenter creates an empty presenter.
func NewPresenter() *Presenter {
	return &Presenter{}
}

// Select marks the property with the given id as selected. Only one
// property may be selected at a time; selecting replaces the previous
// selection.
func (p *Presenter) Select(id string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.selected = id
}

// ClearSelection closes the detail view.
func (p *Presenter) ClearSelection() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.selected = ""
}

// BuildView computes the render model for the given properties. mapReady
// reports whether the style document is available; when it is false the
// client shows the "map unavailable" placeholder even if markers exist.
func (p *Presenter) BuildView(properties []tour.Property, mapReady bool) View {
	if len(properties) == 0 {
		return View{Placeholder: true, MapReady: mapReady}
	}

	points := make([]tour.Point, len(properties))
	markers := make([]Marker, len(properties))
	for i, prop := range properties {
		points[i] = prop.Location
		markers[i] = Marker{
			PropertyID: prop.ID,
			Label:      tour.FormatTime(prop.ViewingTime),
			Position:   prop.Location,
		}
	}
	center, _ := geo.Centroid(points)

	p.mu.Lock()
	selected := p.selected
	p.mu.Unlock()
	if selected != "" {
		found := false
		for _, prop := range properties {
			if prop.ID == selected {
				found = true
				break
			}
		}
		if !found {
			p.mu.Lock()
			p.selected = ""
			p.mu.Unlock()
			selected = ""
		}
	}

	return View{
		Center:     center,
		Zoom:       DefaultZoom,
		Markers:    markers,
		SelectedID: selected,
		MapReady:   mapReady,
	}
}
