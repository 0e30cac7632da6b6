package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestMetadataForKnownCodes(t *testing.T) {
	tests := []struct {
		code        Code
		status      int
		publicMsg   string
		retryable   bool
		detailsOK   bool
		clientFault bool
	}{
		{code: CodeValidation, status: http.StatusBadRequest, publicMsg: "validation failed", detailsOK: true, clientFault: true},
		{code: CodeUnauthorized, status: http.StatusUnauthorized, publicMsg: "authentication required", clientFault: true},
		{code: CodeForbidden, status: http.StatusForbidden, publicMsg: "access denied", clientFault: true},
		{code: CodeNotFound, status: http.StatusNotFound, publicMsg: "resource not found", clientFault: true},
		{code: CodeConflict, status: http.StatusConflict, publicMsg: "conflict detected", clientFault: true},
		{code: CodeStateConflict, status: http.StatusUnprocessableEntity, publicMsg: "state transition disallowed", detailsOK: true, clientFault: true},
		{code: CodeRateLimit, status: http.StatusTooManyRequests, publicMsg: "rate limit exceeded", clientFault: true},
		{code: CodeInternal, status: http.StatusInternalServerError, publicMsg: "internal server error", retryable: true},
		{code: CodeDependency, status: http.StatusServiceUnavailable, publicMsg: "dependency unavailable", retryable: true, detailsOK: true},
	}

	for _, tt := range tests {
		meta := MetadataFor(tt.code)
		if meta.HTTPStatus != tt.status {
			t.Fatalf("code %s expected status %d got %d", tt.code, tt.status, meta.HTTPStatus)
		}
		if meta.PublicMessage != tt.publicMsg {
			t.Fatalf("code %s expected public message %q got %q", tt.code, tt.publicMsg, meta.PublicMessage)
		}
		if meta.Retryable != tt.retryable {
			t.Fatalf("code %s expected retryable %v got %v", tt.code, tt.retryable, meta.Retryable)
		}
		if meta.DetailsAllowed != tt.detailsOK {
			t.Fatalf("code %s expected details allowed %v got %v", tt.code, tt.detailsOK, meta.DetailsAllowed)
		}
		if meta.ClientFault != tt.clientFault {
			t.Fatalf("code %s expected client fault %v got %v", tt.code, tt.clientFault, meta.ClientFault)
		}
	}
}

func TestMetadataForUnknownCodeDefaultsToInternal(t *testing.T) {
	meta := MetadataFor("SOMETHING_UNKNOWN")
	if meta.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("expected internal status, got %d", meta.HTTPStatus)
	}
}

func TestErrorConstructors(t *testing.T) {
	base := Newf(CodeValidation, "missing %s", "phone")
	if base.Code() != CodeValidation {
		t.Fatalf("expected validation code, got %s", base.Code())
	}
	if base.Message() != "missing phone" {
		t.Fatalf("unexpected message %q", base.Message())
	}
	if base.Details() != nil {
		t.Fatalf("details should be nil by default")
	}

	base.WithDetails(map[string]any{"field": "phone"})
	if base.Details() == nil {
		t.Fatalf("details should be preserved")
	}

	cause := stdErrors.New("boom")
	wrapped := Wrap(CodeDependency, cause, "load orders")
	if !stdErrors.Is(wrapped, cause) {
		t.Fatalf("Wrap did not preserve cause")
	}
	if wrapped.Error() != "DEPENDENCY_ERROR: load orders: boom" {
		t.Fatalf("unexpected error string %q", wrapped.Error())
	}
}

func TestIsCodeFollowsWrappedChain(t *testing.T) {
	inner := New(CodeStateConflict, "order already assigned")
	outer := fmt.Errorf("dispatch assign: %w", inner)

	if !IsCode(outer, CodeStateConflict) {
		t.Fatal("expected state conflict to be found through fmt wrapping")
	}
	if IsCode(outer, CodeNotFound) {
		t.Fatal("unexpected not found match")
	}
	if IsCode(stdErrors.New("plain"), CodeInternal) {
		t.Fatal("untyped errors carry no code")
	}
}

func TestDumpCapturesPostgresFields(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23505", ConstraintName: "kv_entries_pkey", TableName: "kv_entries", Message: "duplicate key"}
	err := Wrap(CodeInternal, pgErr, "save orders")

	dump := Dump(err)
	if dump.Code != CodeInternal {
		t.Fatalf("expected internal code, got %s", dump.Code)
	}
	if dump.PGCode != "23505" || dump.PGTable != "kv_entries" {
		t.Fatalf("unexpected pg fields %+v", dump)
	}
	fields := dump.Fields()
	if fields["pg_constraint"] != "kv_entries_pkey" {
		t.Fatalf("expected constraint in fields, got %v", fields)
	}
	if len(dump.Chain) != 2 {
		t.Fatalf("expected two chain entries, got %v", dump.Chain)
	}
}
