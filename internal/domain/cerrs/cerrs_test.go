package cerrs_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/trusteehub/cams/internal/domain/cerrs"
)

func TestKindPredicates(t *testing.T) {
	tests := []struct {
		err            error
		unauthorized   bool
		badRequest     bool
		notFound       bool
	}{
		{cerrs.Unauthorized("m", "no"), true, false, false},
		{cerrs.BadRequest("m", "bad"), false, true, false},
		{cerrs.NotFound("m", "gone"), false, false, true},
		{cerrs.Wrap("m", "db", errors.New("boom")), false, false, false},
		{errors.New("plain"), false, false, false},
		{nil, false, false, false},
	}
	for _, tt := range tests {
		if got := cerrs.IsUnauthorized(tt.err); got != tt.unauthorized {
			t.Errorf("IsUnauthorized(%v) = %v", tt.err, got)
		}
		if got := cerrs.IsBadRequest(tt.err); got != tt.badRequest {
			t.Errorf("IsBadRequest(%v) = %v", tt.err, got)
		}
		if got := cerrs.IsNotFound(tt.err); got != tt.notFound {
			t.Errorf("IsNotFound(%v) = %v", tt.err, got)
		}
	}
}

func TestKindOf_WrappedChain(t *testing.T) {
	inner := cerrs.NotFound("case-assignment", "unknown case")
	outer := fmt.Errorf("handling request: %w", inner)
	if cerrs.KindOf(outer) != cerrs.KindNotFound {
		t.Error("expected kind to survive fmt.Errorf wrapping")
	}
	if !cerrs.IsNotFound(outer) {
		t.Error("expected IsNotFound through wrapped chain")
	}
}

func TestError_Message(t *testing.T) {
	e := cerrs.BadRequest("consolidation-orders", "lead case is a child")
	if !strings.Contains(e.Error(), "consolidation-orders") {
		t.Errorf("expected module in message, got %q", e.Error())
	}
	if !strings.Contains(e.Error(), "lead case is a child") {
		t.Errorf("expected message text, got %q", e.Error())
	}
}

func TestWrap_Unwraps(t *testing.T) {
	cause := errors.New("connection reset")
	e := cerrs.Wrap("case-assignment", "listing assignments", cause)
	if !errors.Is(e, cause) {
		t.Error("expected errors.Is to find the cause")
	}
	if !strings.Contains(e.Error(), "connection reset") {
		t.Errorf("expected cause in message, got %q", e.Error())
	}
	if cerrs.KindOf(e) != cerrs.KindUnknown {
		t.Error("expected wrapped errors to stay KindUnknown")
	}
}
