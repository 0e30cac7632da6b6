package middleware

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/barribox/barribox-backend/pkg/enums"
	"github.com/barribox/barribox-backend/pkg/kv"
	"github.com/barribox/barribox-backend/pkg/logger"
)

type countingHandler struct {
	calls  int
	status int
}

func (c *countingHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	c.calls++
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(c.status)
	fmt.Fprintf(w, `{"call":%d}`, c.calls)
}

func idemRequest(userID, key, body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", strings.NewReader(body))
	if key != "" {
		req.Header.Set(idempotencyHeader, key)
	}
	ctx := WithUser(context.Background(), roleUser(userID, enums.UserRoleSender))
	return req.WithContext(ctx)
}

func TestIdempotencyReplaysStoredResponse(t *testing.T) {
	next := &countingHandler{status: http.StatusCreated}
	h := Idempotency(kv.NewMemory(), "barribox_v6", logger.Nop())(next)

	first := httptest.NewRecorder()
	h.ServeHTTP(first, idemRequest("u-1", "k-1", `{"itemName":"Lámpara"}`))
	second := httptest.NewRecorder()
	h.ServeHTTP(second, idemRequest("u-1", "k-1", `{"itemName":"Lámpara"}`))

	if next.calls != 1 {
		t.Fatalf("expected handler to run once, ran %d", next.calls)
	}
	if second.Code != http.StatusCreated || second.Body.String() != first.Body.String() {
		t.Fatalf("expected replayed 201 %q, got %d %q", first.Body.String(), second.Code, second.Body.String())
	}
	if second.Header().Get("Idempotent-Replayed") != "true" {
		t.Fatal("expected replay header")
	}
}

func TestIdempotencyRejectsDifferentBody(t *testing.T) {
	next := &countingHandler{status: http.StatusCreated}
	h := Idempotency(kv.NewMemory(), "barribox_v6", logger.Nop())(next)

	h.ServeHTTP(httptest.NewRecorder(), idemRequest("u-1", "k-1", `{"itemName":"Lámpara"}`))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, idemRequest("u-1", "k-1", `{"itemName":"Silla"}`))
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
}

func TestIdempotencyScopesKeysPerUser(t *testing.T) {
	next := &countingHandler{status: http.StatusCreated}
	h := Idempotency(kv.NewMemory(), "barribox_v6", logger.Nop())(next)

	h.ServeHTTP(httptest.NewRecorder(), idemRequest("u-1", "k-1", `{}`))
	h.ServeHTTP(httptest.NewRecorder(), idemRequest("u-2", "k-1", `{}`))
	if next.calls != 2 {
		t.Fatalf("expected each user to reach the handler, got %d calls", next.calls)
	}
}

func TestIdempotencySkipsServerErrorsAndMissingKey(t *testing.T) {
	next := &countingHandler{status: http.StatusInternalServerError}
	h := Idempotency(kv.NewMemory(), "barribox_v6", logger.Nop())(next)

	h.ServeHTTP(httptest.NewRecorder(), idemRequest("u-1", "k-1", `{}`))
	h.ServeHTTP(httptest.NewRecorder(), idemRequest("u-1", "k-1", `{}`))
	if next.calls != 2 {
		t.Fatalf("expected 5xx responses to be retried, got %d calls", next.calls)
	}

	next.status = http.StatusCreated
	h.ServeHTTP(httptest.NewRecorder(), idemRequest("u-1", "", `{}`))
	h.ServeHTTP(httptest.NewRecorder(), idemRequest("u-1", "", `{}`))
	if next.calls != 4 {
		t.Fatalf("expected requests without a key to pass through, got %d calls", next.calls)
	}
}
