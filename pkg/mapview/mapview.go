// Package mapview renders a self-contained Leaflet map for one restaurant.
package mapview

import (
	"bytes"
	"fmt"
	"html/template"
)

const DefaultZoom = 15

var documentTmpl = template.Must(template.New("map").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<link rel="stylesheet" href="https://unpkg.com/leaflet@1.9.4/dist/leaflet.css">
<script src="https://unpkg.com/leaflet@1.9.4/dist/leaflet.js"></script>
<style>html, body, #map { height: 100%; margin: 0; }</style>
</head>
<body>
<div id="map"></div>
<script>
var map = L.map("map").setView([{{.Lat}}, {{.Lon}}], {{.Zoom}});
L.tileLayer("https://{s}.tile.openstreetmap.org/{z}/{x}/{y}.png", {
  maxZoom: 19,
  attribution: "&copy; OpenStreetMap contributors"
}).addTo(map);
L.marker([{{.Lat}}, {{.Lon}}]).bindTooltip({{.Name}}).addTo(map);
</script>
</body>
</html>`))

var frameTmpl = template.Must(template.New("frame").Parse(
	`<iframe class="restaurant-map" title="{{.Name}}" srcdoc="{{.Document}}" style="width:100%;height:100%;border:none;"></iframe>`))

type mapData struct {
	Lat  float64
	Lon  float64
	Zoom int
	Name string
}

// Render returns an iframe whose srcdoc holds the map document. The iframe
// keeps the map's scripts running when the snippet is inserted with
// innerHTML.
func Render(lat, lon float64, name string) (string, error) {
	var doc bytes.Buffer
	if err := documentTmpl.Execute(&doc, mapData{Lat: lat, Lon: lon, Zoom: DefaultZoom, Name: name}); err != nil {
		return "", fmt.Errorf("failed to render map: %w", err)
	}

	var frame bytes.Buffer
	if err := frameTmpl.Execute(&frame, struct {
		Name     string
		Document string
	}{Name: name, Document: doc.String()}); err != nil {
		return "", fmt.Errorf("failed to render map frame: %w", err)
	}
	return frame.String(), nil
}
