package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestIsMatchesByKind(t *testing.T) {
	err := Stale("negotiation %d moved to %s", 4, "accepted")
	if !errors.Is(err, ErrStale) {
		t.Fatalf("expected stale kind match")
	}
	if errors.Is(err, ErrTerminal) {
		t.Fatalf("stale must not match terminal")
	}
	wrapped := fmt.Errorf("handler: %w", err)
	if !errors.Is(wrapped, ErrStale) {
		t.Fatalf("expected match through wrapping")
	}
}

func TestInfraKeepsDomainErrors(t *testing.T) {
	if Infra("x", nil) != nil {
		t.Fatalf("nil in, nil out")
	}
	nf := NotFound("quotation %s", "R1")
	if got := Infra("load", nf); got != error(nf) {
		t.Fatalf("domain errors pass through, got %v", got)
	}
	cause := errors.New("connection refused")
	err := Infra("load", cause)
	if KindOf(err) != KindInfrastructure {
		t.Fatalf("expected infrastructure kind, got %s", KindOf(err))
	}
	if !errors.Is(err, cause) {
		t.Fatalf("cause must stay reachable")
	}
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		kind Kind
		want int
	}{
		{KindValidation, http.StatusBadRequest},
		{KindNotFound, http.StatusNotFound},
		{KindIllegal, http.StatusConflict},
		{KindTerminal, http.StatusConflict},
		{KindStale, http.StatusConflict},
		{KindUnauthorized, http.StatusUnauthorized},
		{KindForbidden, http.StatusForbidden},
		{KindAllocation, http.StatusServiceUnavailable},
		{KindInfrastructure, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			if got := HTTPStatus(tt.kind); got != tt.want {
				t.Errorf("HTTPStatus(%s) = %d, want %d", tt.kind, got, tt.want)
			}
		})
	}
}

func TestKindOfForeignError(t *testing.T) {
	if KindOf(errors.New("boom")) != KindInfrastructure {
		t.Fatalf("foreign errors default to infrastructure")
	}
}
