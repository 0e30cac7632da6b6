// Package reference holds the fixed geography, pricing and identifier
// generators of the Terrassa delivery network.
package reference

import (
	"strings"

	"github.com/barribox/barribox-backend/pkg/models"
)

var neighborhoods = []models.Neighborhood{
	{ID: "n1", Name: "La Maurina", Lat: 41.5601, Lng: 1.9961},
	{ID: "n2", Name: "Roc Blanc", Lat: 41.5560, Lng: 1.9920},
	{ID: "n3", Name: "Les Arenes", Lat: 41.5720, Lng: 2.0430},
	{ID: "n4", Name: "Ca n'Aurell", Lat: 41.5615, Lng: 2.0035},
	{ID: "n5", Name: "Centre", Lat: 41.5630, Lng: 2.0112},
	{ID: "n6", Name: "Sant Pere Nord", Lat: 41.5750, Lng: 2.0180},
	{ID: "n7", Name: "Can Palet", Lat: 41.5540, Lng: 2.0200},
	{ID: "n8", Name: "Vallparadís", Lat: 41.5635, Lng: 2.0195},
	{ID: "n9", Name: "Torre-sana", Lat: 41.5700, Lng: 2.0500},
	{ID: "n10", Name: "La Grípia", Lat: 41.5780, Lng: 2.0450},
	{ID: "n11", Name: "Can Roca", Lat: 41.5830, Lng: 2.0080},
}

// Neighborhoods returns a copy of every neighborhood in display order.
func Neighborhoods() []models.Neighborhood {
	out := make([]models.Neighborhood, len(neighborhoods))
	copy(out, neighborhoods)
	return out
}

// NeighborhoodNames lists the names accepted at registration.
func NeighborhoodNames() []string {
	names := make([]string, 0, len(neighborhoods))
	for _, n := range neighborhoods {
		names = append(names, n.Name)
	}
	return names
}

// FindNeighborhood looks a neighborhood up by exact name, ignoring case.
func FindNeighborhood(name string) (models.Neighborhood, bool) {
	name = strings.TrimSpace(name)
	for _, n := range neighborhoods {
		if strings.EqualFold(n.Name, name) {
			return n, true
		}
	}
	return models.Neighborhood{}, false
}

// NeighborhoodOrDefault falls back to the first neighborhood for unknown
// names.
func NeighborhoodOrDefault(name string) models.Neighborhood {
	if n, ok := FindNeighborhood(name); ok {
		return n
	}
	return neighborhoods[0]
}
