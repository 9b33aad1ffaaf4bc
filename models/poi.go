package models

import (
	"strconv"
	"strings"
)

// PointOfInterest is one element returned by the geodata service.
type PointOfInterest struct {
	ID   int64             `json:"id"`
	Lat  float64           `json:"lat"`
	Lon  float64           `json:"lon"`
	Tags map[string]string `json:"tags"`
}

// Name returns the name tag, or "Unnamed" when it is absent.
func (p PointOfInterest) Name() string {
	if name := strings.TrimSpace(p.Tags["name"]); name != "" {
		return p.Tags["name"]
	}
	return "Unnamed"
}

// Location formats the coordinate as "lat, lon".
func (p PointOfInterest) Location() string {
	return strconv.FormatFloat(p.Lat, 'f', -1, 64) + ", " + strconv.FormatFloat(p.Lon, 'f', -1, 64)
}

// RestaurantResult is the aggregate returned once a restaurant resolves.
type RestaurantResult struct {
	Name     string  `json:"name"`
	Lat      float64 `json:"lat"`
	Lon      float64 `json:"lon"`
	Location string  `json:"location"`
	URL      string  `json:"url"`
	MapHTML  string  `json:"map_html"`

	EnrichedContent
}
