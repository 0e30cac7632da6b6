package controllers

import (
	"net/http"
	"strings"

	"github.com/barribox/barribox-backend/api/responses"
	"github.com/barribox/barribox-backend/internal/reference"
)

func Neighborhoods() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, reference.Neighborhoods())
	}
}

// PickupPoints lists every point, or the points of one neighborhood.
func PickupPoints() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if name := strings.TrimSpace(r.URL.Query().Get("neighborhood")); name != "" {
			responses.WriteSuccess(w, reference.PointsForNeighborhood(name))
			return
		}
		responses.WriteSuccess(w, reference.PickupPoints())
	}
}

func Prices() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, map[string]any{
			"sizes":      reference.PriceTable(),
			"courierFee": reference.CourierFee,
		})
	}
}

func Partners() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, reference.Partners())
	}
}

func Catalog() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, reference.Catalog(r.URL.Query().Get("q")))
	}
}
