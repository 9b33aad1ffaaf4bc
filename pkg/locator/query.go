package locator

import (
	"fmt"
	"strconv"
	"strings"
)

// AreaQuery selects every named restaurant inside the administrative area
// called areaName.
func AreaQuery(areaName string) string {
	return fmt.Sprintf(`[out:json];
area["name"=%s]->.searchArea;
node["amenity"="restaurant"]["name"](area.searchArea);
out body;`, quote(areaName))
}

// AroundQuery selects every named restaurant within radiusMeters of lat/lon.
func AroundQuery(lat, lon float64, radiusMeters int) string {
	return fmt.Sprintf(`[out:json];
node(around:%d,%s,%s)["amenity"="restaurant"]["name"];
out body;`, radiusMeters, formatCoord(lat), formatCoord(lon))
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// quote renders s as an Overpass QL string literal.
func quote(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`)
	return `"` + r.Replace(s) + `"`
}
