package controllers

import (
	"context"
	"net/http"

	"github.com/barribox/barribox-backend/api/responses"
	"github.com/barribox/barribox-backend/api/validators"
	"github.com/barribox/barribox-backend/internal/assistant"
	"github.com/barribox/barribox-backend/pkg/logger"
	"github.com/barribox/barribox-backend/pkg/models"
)

type assistantRequest struct {
	Input string `json:"input" validate:"required,max=500"`
}

// AssistantVoice handles a transcribed or typed utterance. It is also the
// manual fallback when speech recognition is unavailable on the client.
func AssistantVoice(svc assistant.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := currentUser(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req assistantRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		reply, err := svc.Voice(r.Context(), user, validators.SanitizeString(req.Input, 500))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, reply)
	}
}

func AssistantFAQ(svc assistant.Service, logg *logger.Logger) http.HandlerFunc {
	return assistantText(svc.FAQ, logg)
}

func AssistantSupport(svc assistant.Service, logg *logger.Logger) http.HandlerFunc {
	return assistantText(svc.Support, logg)
}

type textSurface func(ctx context.Context, user models.User, input string) (string, error)

func assistantText(surface textSurface, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := currentUser(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req assistantRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		reply, err := surface(r.Context(), user, validators.SanitizeString(req.Input, 500))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"text": reply})
	}
}
