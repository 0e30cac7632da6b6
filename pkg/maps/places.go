// Package maps talks to the Google Maps Platform: Places autocomplete for
// destination addresses and Static Maps URLs for the neighborhood view.
package maps

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	pkgerrors "github.com/barribox/barribox-backend/pkg/errors"
)

const (
	defaultBaseURL              = "https://places.googleapis.com/v1"
	autocompleteFieldMask       = "suggestions.placePrediction.placeId,suggestions.placePrediction.text"
	defaultRegionCode           = "es"
	defaultLanguageCode         = "es"
	defaultBiasRadiusMeters     = 3000.0
	responseBodyReadLimit int64 = 1024
)

var errAPIKeyRequired = errors.New("google maps api key is required")

// Client wraps the Places API used for destination suggestions.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

type Option func(*Client)

func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if trimmed := strings.TrimSpace(baseURL); trimmed != "" {
			c.baseURL = trimmed
		}
	}
}

// NewClient builds the Places client given an API key.
func NewClient(apiKey string, opts ...Option) (*Client, error) {
	trimmedKey := strings.TrimSpace(apiKey)
	if trimmedKey == "" {
		return nil, errAPIKeyRequired
	}
	client := &Client{
		apiKey:     trimmedKey,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	return client, nil
}

// LatLng is a coordinate pair.
type LatLng struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// AutocompleteRequest asks for suggestions near a point.
type AutocompleteRequest struct {
	Input string
	// Near biases results to a circle around this point when set.
	Near *LatLng
	// RadiusMeters defaults to three kilometres.
	RadiusMeters float64
}

// Suggestion is one predicted place.
type Suggestion struct {
	PlaceID     string `json:"placeId"`
	Description string `json:"description"`
}

type autocompletePayload struct {
	Input               string        `json:"input"`
	IncludedRegionCodes []string      `json:"includedRegionCodes,omitempty"`
	LanguageCode        string        `json:"languageCode,omitempty"`
	LocationBias        *locationBias `json:"locationBias,omitempty"`
}

type locationBias struct {
	Circle struct {
		Center LatLng  `json:"center"`
		Radius float64 `json:"radius"`
	} `json:"circle"`
}

// Autocomplete returns Spanish-region suggestions for partial input.
func (c *Client) Autocomplete(ctx context.Context, req AutocompleteRequest) ([]Suggestion, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "google maps client not configured")
	}
	input := strings.TrimSpace(req.Input)
	if input == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "autocomplete input is required")
	}

	payload := autocompletePayload{
		Input:               input,
		IncludedRegionCodes: []string{defaultRegionCode},
		LanguageCode:        defaultLanguageCode,
	}
	if req.Near != nil {
		bias := &locationBias{}
		bias.Circle.Center = *req.Near
		bias.Circle.Radius = req.RadiusMeters
		if bias.Circle.Radius <= 0 {
			bias.Circle.Radius = defaultBiasRadiusMeters
		}
		payload.LocationBias = bias
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "marshal autocomplete request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.buildURL("places:autocomplete"), bytes.NewReader(body))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build autocomplete request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Goog-Api-Key", c.apiKey)
	httpReq.Header.Set("X-Goog-FieldMask", autocompleteFieldMask)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute autocomplete request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg))), "autocomplete request failed")
	}

	var apiResp struct {
		Suggestions []struct {
			Prediction struct {
				PlaceID string `json:"placeId"`
				Text    struct {
					Text string `json:"text"`
				} `json:"text"`
			} `json:"placePrediction"`
		} `json:"suggestions"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode autocomplete response")
	}

	out := make([]Suggestion, 0, len(apiResp.Suggestions))
	for _, s := range apiResp.Suggestions {
		if s.Prediction.PlaceID == "" {
			continue
		}
		out = append(out, Suggestion{PlaceID: s.Prediction.PlaceID, Description: s.Prediction.Text.Text})
	}
	return out, nil
}

func (c *Client) buildURL(path string) string {
	return fmt.Sprintf("%s/%s", strings.TrimRight(c.baseURL, "/"), strings.TrimLeft(path, "/"))
}
