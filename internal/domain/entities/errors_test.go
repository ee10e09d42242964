package entities

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorKind
	}{
		{"not found", NotFound("missing"), KindNotFound},
		{"forbidden", Forbidden("no"), KindForbidden},
		{"validation", Invalid("bad"), KindValidation},
		{"conflict", Conflict("taken"), KindConflict},
		{"wrapped domain error", fmt.Errorf("outer: %w", Conflict("taken")), KindConflict},
		{"plain error", errors.New("boom"), 0},
		{"nil", nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.want {
				t.Errorf("KindOf() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDomainErrorMessage(t *testing.T) {
	err := NotFound("Project not found")
	if err.Error() != "Project not found" {
		t.Errorf("Error() = %q", err.Error())
	}
}
