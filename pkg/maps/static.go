package maps

import (
	"net/url"
	"strconv"
	"strings"
)

const staticMapBaseURL = "https://maps.googleapis.com/maps/api/staticmap"

const (
	ZoomNeighborhood = 16
	ZoomExpanded     = 17
)

// StaticMapURL renders the background image of the neighborhood map. The
// key is optional; keyless URLs work for low-volume development.
func StaticMapURL(center LatLng, expanded bool, apiKey string) string {
	zoom := ZoomNeighborhood
	if expanded {
		zoom = ZoomExpanded
	}
	q := url.Values{}
	q.Set("center", strconv.FormatFloat(center.Latitude, 'f', -1, 64)+","+strconv.FormatFloat(center.Longitude, 'f', -1, 64))
	q.Set("zoom", strconv.Itoa(zoom))
	q.Set("size", "600x800")
	q.Set("scale", "2")
	q.Add("style", "feature:poi|visibility:off")
	if key := strings.TrimSpace(apiKey); key != "" {
		q.Set("key", key)
	}
	return staticMapBaseURL + "?" + q.Encode()
}
