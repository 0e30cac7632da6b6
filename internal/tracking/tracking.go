// Package tracking derives the tracking screen: progress, route, marker
// position and timeline for the active order or a pickup point navigation.
package tracking

import (
	"github.com/barribox/barribox-backend/internal/reference"
	"github.com/barribox/barribox-backend/pkg/enums"
	"github.com/barribox/barribox-backend/pkg/maps"
	"github.com/barribox/barribox-backend/pkg/models"
)

const (
	OrderRoute = "M60 120 L140 120 L140 280 L300 280 L300 440"
	PointRoute = "M60 120 L220 120 L220 360 L140 360"

	navigationProgress = 45
)

var progressByStatus = map[enums.OrderStatus]int{
	enums.OrderStatusCreated:       5,
	enums.OrderStatusAtPickupPoint: 20,
	enums.OrderStatusAssigned:      35,
	enums.OrderStatusPickedUp:      50,
	enums.OrderStatusInTransit:     75,
	enums.OrderStatusDelivered:     100,
	enums.OrderStatusFinalized:     100,
	enums.OrderStatusDisputed:      85,
}

var timeline = []struct {
	status enums.OrderStatus
	title  string
}{
	{enums.OrderStatusCreated, "Solicitud"},
	{enums.OrderStatusAtPickupPoint, "En Punto"},
	{enums.OrderStatusPickedUp, "Recogido"},
	{enums.OrderStatusInTransit, "En Camino"},
	{enums.OrderStatusDelivered, "¡Llegó!"},
}

// Position is a marker location in route coordinates.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type Step struct {
	Status  enums.OrderStatus `json:"status"`
	Title   string            `json:"title"`
	Past    bool              `json:"past"`
	Current bool              `json:"current"`
}

// Snapshot is everything the tracking screen renders.
type Snapshot struct {
	Order        *models.Order       `json:"order"`
	NavigatingTo *models.PickupPoint `json:"navigatingTo,omitempty"`
	Progress     int                 `json:"progress"`
	Route        string              `json:"route"`
	Marker       Position            `json:"marker"`
	Steps        []Step              `json:"steps"`
}

// Progress maps a status to its completion percentage.
func Progress(status enums.OrderStatus) int {
	return progressByStatus[status]
}

// Marker interpolates the moving icon along the drawn route.
func Marker(progress int, toPoint bool) Position {
	p := float64(progress)
	if toPoint {
		var pos Position
		switch {
		case p < 30:
			pos.X = 60 + p*5.3
		case p < 75:
			pos.X = 220
		default:
			pos.X = 220 - (p-75)*3.2
		}
		switch {
		case p < 30:
			pos.Y = 120
		case p < 75:
			pos.Y = 120 + (p-30)*5.3
		default:
			pos.Y = 360
		}
		return pos
	}

	var pos Position
	switch {
	case p < 20:
		pos.X = 60 + p*4
	case p < 50:
		pos.X = 140
	case p < 75:
		pos.X = 140 + (p-50)*6.4
	default:
		pos.X = 300
	}
	switch {
	case p < 20:
		pos.Y = 120
	case p < 50:
		pos.Y = 120 + (p-20)*5.3
	case p < 75:
		pos.Y = 280
	default:
		pos.Y = 280 + (p-75)*6.4
	}
	return pos
}

// Steps marks each timeline step as past or current. Statuses outside the
// timeline leave every step pending.
func Steps(status enums.OrderStatus) []Step {
	current := -1
	for i, s := range timeline {
		if s.status == status {
			current = i
			break
		}
	}
	out := make([]Step, 0, len(timeline))
	for i, s := range timeline {
		out = append(out, Step{
			Status:  s.status,
			Title:   s.title,
			Past:    current >= i,
			Current: s.status == status,
		})
	}
	return out
}

// Build assembles the snapshot. Navigation to a point takes precedence over
// the active order.
func Build(active *models.Order, point *models.PickupPoint) Snapshot {
	snap := Snapshot{Order: active, Route: OrderRoute}
	var status enums.OrderStatus
	if active != nil {
		status = active.Status
		snap.Progress = Progress(status)
	}
	if point != nil {
		snap.NavigatingTo = point
		snap.Route = PointRoute
		snap.Progress = navigationProgress
	}
	snap.Marker = Marker(snap.Progress, point != nil)
	snap.Steps = Steps(status)
	return snap
}

// MapPoint is a pickup point positioned on the neighborhood map.
type MapPoint struct {
	models.PickupPoint
	Top  float64 `json:"top"`
	Left float64 `json:"left"`
}

// MapView is the neighborhood map with its pickup points.
type MapView struct {
	Neighborhood models.Neighborhood `json:"neighborhood"`
	Points       []MapPoint          `json:"points"`
	StaticMapURL string              `json:"staticMapUrl"`
	ExpandedURL  string              `json:"expandedMapUrl"`
}

// NeighborhoodMap lays out the points of the user's neighborhood.
func NeighborhoodMap(neighborhood, mapsKey string) MapView {
	n := reference.NeighborhoodOrDefault(neighborhood)
	points := reference.PointsForNeighborhood(n.Name)
	view := MapView{
		Neighborhood: n,
		Points:       make([]MapPoint, 0, len(points)),
	}
	for _, p := range points {
		top, left := reference.MarkerOffset(n, p)
		view.Points = append(view.Points, MapPoint{PickupPoint: p, Top: top, Left: left})
	}
	center := maps.LatLng{Latitude: n.Lat, Longitude: n.Lng}
	view.StaticMapURL = maps.StaticMapURL(center, false, mapsKey)
	view.ExpandedURL = maps.StaticMapURL(center, true, mapsKey)
	return view
}
