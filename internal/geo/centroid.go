// Package geo provides geographic helpers for map presentation.
package geo

import "github.com/hearthside/tourplan/internal/tour"

// Centroid returns the arithmetic mean of the given coordinates, used to
// center the map view. The second return value is false when the list is
// empty; callers show a placeholder instead of a map in that case.
func Centroid(points []tour.Point) (tour.Point, bool) {
	if len(points) == 0 {
		return tour.Point{}, false
	}
	var sumLat, sumLng float64
	for _, p := range points {
		sumLat += p.Lat
		sumLng += p.Lng
	}
	n := float64(len(points))
	return tour.Point{Lat: sumLat / n, Lng: sumLng / n}, true
}
