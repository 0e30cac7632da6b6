package maps

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"testing"

	pkgerrors "github.com/barribox/barribox-backend/pkg/errors"
)

func TestClientAutocompleteRequest(t *testing.T) {
	const expectedURL = "http://maps.test/v1/places:autocomplete"
	respBody := `{"suggestions":[{"placePrediction":{"placeId":"place_123","text":{"text":"Carrer Major, 10, Terrassa"}}},{"placePrediction":{}}]}`

	var capturedURL string
	var capturedHeaders http.Header
	var payload map[string]any

	rt := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		capturedURL = req.URL.String()
		capturedHeaders = req.Header.Clone()
		bodyBytes, err := io.ReadAll(req.Body)
		if err != nil {
			t.Fatalf("read request body: %v", err)
		}
		if err := json.Unmarshal(bodyBytes, &payload); err != nil {
			t.Fatalf("unmarshal request body: %v", err)
		}
		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(strings.NewReader(respBody)),
			Header:     http.Header{},
		}, nil
	})

	client, err := NewClient("test-key", WithBaseURL("http://maps.test/v1"), WithHTTPClient(&http.Client{Transport: rt}))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	result, err := client.Autocomplete(context.Background(), AutocompleteRequest{
		Input: " carrer major ",
		Near:  &LatLng{Latitude: 41.5630, Longitude: 2.0112},
	})
	if err != nil {
		t.Fatalf("autocomplete: %v", err)
	}
	if capturedURL != expectedURL {
		t.Fatalf("unexpected URL %q", capturedURL)
	}
	if capturedHeaders.Get("X-Goog-Api-Key") != "test-key" {
		t.Fatalf("api key header missing")
	}
	if capturedHeaders.Get("X-Goog-FieldMask") != autocompleteFieldMask {
		t.Fatalf("unexpected field mask %q", capturedHeaders.Get("X-Goog-FieldMask"))
	}
	if payload["input"] != "carrer major" || payload["languageCode"] != "es" {
		t.Fatalf("unexpected payload %+v", payload)
	}
	bias, ok := payload["locationBias"].(map[string]any)
	if !ok {
		t.Fatalf("expected location bias, got %+v", payload)
	}
	circle := bias["circle"].(map[string]any)
	if circle["radius"] != 3000.0 {
		t.Fatalf("unexpected radius %v", circle["radius"])
	}
	if len(result) != 1 || result[0].PlaceID != "place_123" {
		t.Fatalf("unexpected result %+v", result)
	}
}

func TestClientAutocompleteUpstreamError(t *testing.T) {
	rt := roundTripFunc(func(*http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: http.StatusForbidden,
			Body:       io.NopCloser(strings.NewReader("quota")),
			Header:     http.Header{},
		}, nil
	})
	client, err := NewClient("k", WithHTTPClient(&http.Client{Transport: rt}))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	_, err = client.Autocomplete(context.Background(), AutocompleteRequest{Input: "x"})
	if !pkgerrors.IsCode(err, pkgerrors.CodeDependency) {
		t.Fatalf("expected dependency error, got %v", err)
	}
	if !strings.Contains(err.Error(), "status 403: quota") {
		t.Fatalf("expected upstream status in error, got %v", err)
	}
}

func TestClientValidation(t *testing.T) {
	if _, err := NewClient(" "); err == nil {
		t.Fatal("expected api key error")
	}
	var nilClient *Client
	if _, err := nilClient.Autocomplete(context.Background(), AutocompleteRequest{Input: "x"}); !pkgerrors.IsCode(err, pkgerrors.CodeDependency) {
		t.Fatalf("expected dependency error for nil client, got %v", err)
	}
	client, _ := NewClient("k")
	if _, err := client.Autocomplete(context.Background(), AutocompleteRequest{}); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestStaticMapURL(t *testing.T) {
	raw := StaticMapURL(LatLng{Latitude: 41.5630, Longitude: 2.0112}, false, "")
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	q := u.Query()
	if q.Get("center") != "41.563,2.0112" || q.Get("zoom") != "16" || q.Get("size") != "600x800" || q.Get("scale") != "2" {
		t.Fatalf("unexpected query %v", q)
	}
	if q.Has("key") {
		t.Fatal("key must be omitted when empty")
	}

	expanded, _ := url.Parse(StaticMapURL(LatLng{}, true, "abc"))
	if expanded.Query().Get("zoom") != "17" || expanded.Query().Get("key") != "abc" {
		t.Fatalf("unexpected expanded query %v", expanded.Query())
	}
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}
