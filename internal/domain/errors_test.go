package domain

import (
	"fmt"
	"testing"
)

func TestIsValidation(t *testing.T) {
	err := NewValidationError("title", "is required")
	if !IsValidation(err) {
		t.Error("IsValidation missed a direct ValidationError")
	}
	if !IsValidation(fmt.Errorf("saving: %w", err)) {
		t.Error("IsValidation missed a wrapped ValidationError")
	}
	if IsValidation(ErrNotFound) {
		t.Error("IsValidation matched a sentinel error")
	}
	if got := err.Error(); got != "title: is required" {
		t.Errorf("Error() = %q", got)
	}
}

func TestIsPartial(t *testing.T) {
	err := &PartialActionError{Action: "create media", Failures: []string{"mixlist x1: not found"}}
	if !IsPartial(err) {
		t.Error("IsPartial missed a direct PartialActionError")
	}
	if !IsPartial(fmt.Errorf("saving: %w", err)) {
		t.Error("IsPartial missed a wrapped PartialActionError")
	}
	if IsPartial(NewValidationError("x", "y")) {
		t.Error("IsPartial matched a ValidationError")
	}
	if got := err.Error(); got != "create media: 1 follow-up step(s) failed" {
		t.Errorf("Error() = %q", got)
	}
}
