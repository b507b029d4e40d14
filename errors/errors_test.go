package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"
)

func TestConstructorsSetCodeAndKind(t *testing.T) {
	cause := stderrors.New("boom")

	tests := []struct {
		name string
		err  *AppError
		code int
		kind Kind
	}{
		{"invalid input", InvalidInput("Op", cause, "bad"), http.StatusBadRequest, KindInvalidInput},
		{"not found", NotFound("Op", cause, "missing"), http.StatusNotFound, KindNotFound},
		{"invalid state", InvalidState("Op", cause, "busy"), http.StatusConflict, KindInvalidState},
		{"already delivered", AlreadyDelivered("Op", cause, "done"), http.StatusConflict, KindAlreadyDelivered},
		{"internal", Internal("Op", cause, "oops"), http.StatusInternalServerError, KindInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != tt.code {
				t.Errorf("expected code %d, got %d", tt.code, tt.err.Code)
			}
			if tt.err.Kind != tt.kind {
				t.Errorf("expected kind %d, got %d", tt.kind, tt.err.Kind)
			}
			if tt.err.Op != "Op" {
				t.Errorf("expected op to be preserved, got %q", tt.err.Op)
			}
		})
	}
}

func TestErrorIncludesCause(t *testing.T) {
	err := Internal("Op", stderrors.New("disk full"), "Failed to save")
	if got := err.Error(); got != "Failed to save: disk full" {
		t.Errorf("unexpected error string %q", got)
	}

	bare := NotFound("Op", nil, "Video not found")
	if got := bare.Error(); got != "Video not found" {
		t.Errorf("unexpected error string %q", got)
	}
}

func TestUnwrap(t *testing.T) {
	cause := stderrors.New("root cause")
	err := Internal("Op", cause, "wrapped")
	if !stderrors.Is(err, cause) {
		t.Error("expected errors.Is to reach the cause")
	}
}

func TestKindPredicates(t *testing.T) {
	notFound := NotFound("Op", nil, "missing")

	if !IsNotFound(notFound) {
		t.Error("IsNotFound should match a NotFound error")
	}
	if IsInvalidState(notFound) || IsAlreadyDelivered(notFound) || IsInvalidInput(notFound) {
		t.Error("other predicates must not match a NotFound error")
	}
	if IsNotFound(nil) {
		t.Error("predicates must not match nil")
	}
	if IsNotFound(stderrors.New("plain")) {
		t.Error("predicates must not match plain errors")
	}
}

func TestKindPredicatesSeeThroughWrapping(t *testing.T) {
	wrapped := fmt.Errorf("context: %w", InvalidState("Op", nil, "busy"))
	if !IsInvalidState(wrapped) {
		t.Error("IsInvalidState should match through wrapping")
	}
}
