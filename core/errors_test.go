package core

import (
	"errors"
	"fmt"
	"testing"
)

func TestDomainError_Checks(t *testing.T) {
	cause := errors.New("open u.data: no such file")
	dataErr := WrapDomainError(ModuleDataset, ErrorCodeDataNotFound, cause, "ratings file missing")
	unavailable := WrapDomainError(ModuleEngine, ErrorCodeUnavailable, dataErr, "rating data unavailable")
	unknown := NewUnknownItemError("unknown movie %q", "Nope")

	tests := []struct {
		name  string
		err   error
		check func(error) bool
		want  bool
	}{
		{"data not found", dataErr, IsDataNotFound, true},
		{"data not found is not format", dataErr, IsDataFormat, false},
		{"unavailable", unavailable, IsUnavailable, true},
		{"unavailable keeps cause code", unavailable, IsDataNotFound, true},
		{"wrapped with fmt", fmt.Errorf("query: %w", unavailable), IsUnavailable, true},
		{"unknown item", unknown, IsUnknownItem, true},
		{"store not found is not unknown item", ErrStoreNotFound, IsUnknownItem, false},
		{"store not found", fmt.Errorf("get: %w", ErrStoreNotFound), IsStoreNotFound, true},
		{"invalid input", NewDomainError(ModuleEngine, ErrorCodeInvalidInput, "movie title is required"), IsInvalidInput, true},
		{"plain error", cause, IsDomainError, false},
		{"nil", nil, IsUnavailable, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.check(tt.err); got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}

	if !errors.Is(unavailable, cause) {
		t.Error("errors.Is should reach the root cause")
	}
	if got := unavailable.Error(); got != "rating data unavailable: ratings file missing: open u.data: no such file" {
		t.Errorf("Error() = %q", got)
	}
}

func TestOrDefault(t *testing.T) {
	if got := OrDefault(0, DefaultTopN); got != DefaultTopN {
		t.Errorf("OrDefault(0) = %d", got)
	}
	if got := OrDefault(-3, 7); got != 7 {
		t.Errorf("OrDefault(-3) = %d", got)
	}
	if got := OrDefault(5, 7); got != 5 {
		t.Errorf("OrDefault(5) = %d", got)
	}
}
