package controllers

import (
	"context"
	"net/http"
	"strings"

	"github.com/barribox/barribox-backend/api/responses"
	"github.com/barribox/barribox-backend/api/validators"
	"github.com/barribox/barribox-backend/internal/orders"
	"github.com/barribox/barribox-backend/internal/reference"
	"github.com/barribox/barribox-backend/internal/tracking"
	pkgerrors "github.com/barribox/barribox-backend/pkg/errors"
	"github.com/barribox/barribox-backend/pkg/logger"
	"github.com/barribox/barribox-backend/pkg/maps"
	"github.com/barribox/barribox-backend/pkg/models"
)

// PlacesClient suggests destination addresses.
type PlacesClient interface {
	Autocomplete(ctx context.Context, req maps.AutocompleteRequest) ([]maps.Suggestion, error)
}

// Tracking returns the active order progress, or the route to a pickup
// point when pointId is given.
func Tracking(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := currentActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var point *models.PickupPoint
		if id := strings.TrimSpace(r.URL.Query().Get("pointId")); id != "" {
			p, ok := reference.FindPickupPoint(id)
			if !ok {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Newf(pkgerrors.CodeNotFound, "pickup point %s not found", id))
				return
			}
			point = &p
		}
		responses.WriteSuccess(w, tracking.Build(svc.ActiveOrder(actor), point))
	}
}

func PointsMap(mapsKey string, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := currentUser(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, tracking.NeighborhoodMap(user.Neighborhood, mapsKey))
	}
}

// PlacesAutocomplete biases suggestions to the caller's neighborhood. It
// answers with an empty list when no maps key is configured.
func PlacesAutocomplete(client PlacesClient, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := currentUser(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input := validators.SanitizeString(r.URL.Query().Get("input"), 120)
		if len([]rune(input)) < 3 || client == nil {
			responses.WriteSuccess(w, []maps.Suggestion{})
			return
		}
		radius, err := validators.ParseQueryInt(r, "radius", 3000, 100, 20000)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		n := reference.NeighborhoodOrDefault(user.Neighborhood)
		suggestions, err := client.Autocomplete(r.Context(), maps.AutocompleteRequest{
			Input:        input,
			Near:         &maps.LatLng{Latitude: n.Lat, Longitude: n.Lng},
			RadiusMeters: float64(radius),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, suggestions)
	}
}
