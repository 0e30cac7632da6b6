package reference

import (
	"fmt"

	"github.com/barribox/barribox-backend/pkg/models"
)

type pointTemplate struct {
	suffix  int
	name    func(neighborhood string) string
	address string
	dLat    float64
	dLng    float64
	hours   string
}

var pointTemplates = []pointTemplate{
	{
		suffix:  1,
		name:    func(n string) string { return "Kiosco " + n },
		address: "Carrer Major, 10",
		dLat:    0.001,
		dLng:    0.001,
		hours:   "08:00 - 20:00",
	},
	{
		suffix:  2,
		name:    func(n string) string { return "Farmacia " + n },
		address: "Avinguda Principal, 44",
		dLat:    -0.001,
		dLng:    0.002,
		hours:   "09:00 - 21:00",
	},
	{
		suffix:  3,
		name:    func(string) string { return "Café del Barri" },
		address: "Placa del Poble, 1",
		dLat:    0.002,
		dLng:    -0.001,
		hours:   "07:00 - 19:00",
	},
}

var pickupPoints = buildPickupPoints()

func buildPickupPoints() []models.PickupPoint {
	out := make([]models.PickupPoint, 0, len(neighborhoods)*len(pointTemplates))
	for _, n := range neighborhoods {
		out = append(out, pointsFor(n)...)
	}
	return out
}

func pointsFor(n models.Neighborhood) []models.PickupPoint {
	out := make([]models.PickupPoint, 0, len(pointTemplates))
	for _, tpl := range pointTemplates {
		out = append(out, models.PickupPoint{
			ID:           fmt.Sprintf("p-%s-%d", n.ID, tpl.suffix),
			Name:         tpl.name(n.Name),
			Address:      tpl.address,
			Neighborhood: n.Name,
			Lat:          n.Lat + tpl.dLat,
			Lng:          n.Lng + tpl.dLng,
			Hours:        tpl.hours,
		})
	}
	return out
}

// PickupPoints returns every pickup point, grouped by neighborhood order.
func PickupPoints() []models.PickupPoint {
	out := make([]models.PickupPoint, len(pickupPoints))
	copy(out, pickupPoints)
	return out
}

// PointsForNeighborhood returns the three points of a neighborhood. Unknown
// names resolve to the first neighborhood.
func PointsForNeighborhood(name string) []models.PickupPoint {
	return pointsFor(NeighborhoodOrDefault(name))
}

// FindPickupPoint looks a point up by id.
func FindPickupPoint(id string) (models.PickupPoint, bool) {
	for _, p := range pickupPoints {
		if p.ID == id {
			return p, true
		}
	}
	return models.PickupPoint{}, false
}

// MarkerOffset places a point on the neighborhood map as percentages from
// the top-left corner.
func MarkerOffset(n models.Neighborhood, p models.PickupPoint) (top, left float64) {
	top = 50 + (n.Lat-p.Lat)*12000
	left = 50 + (p.Lng-n.Lng)*12000
	return top, left
}
