package domain_test

import (
	"testing"

	"github.com/RodolfoMedinaCS/LinkLensV4/internal/domain"
)

func TestCanTransition(t *testing.T) {
	testCases := []struct {
		name string
		from domain.Status
		to   domain.Status
		want bool
	}{
		{"pending to processing", domain.StatusPending, domain.StatusProcessing, true},
		{"pending to processed", domain.StatusPending, domain.StatusProcessed, true},
		{"pending to failed", domain.StatusPending, domain.StatusFailed, true},
		{"processing to processed", domain.StatusProcessing, domain.StatusProcessed, true},
		{"processing to failed", domain.StatusProcessing, domain.StatusFailed, true},
		{"processing back to pending", domain.StatusProcessing, domain.StatusPending, false},
		{"processed back to pending", domain.StatusProcessed, domain.StatusPending, false},
		{"processed to processing", domain.StatusProcessed, domain.StatusProcessing, false},
		{"failed back to pending", domain.StatusFailed, domain.StatusPending, false},
		{"failed to processed", domain.StatusFailed, domain.StatusProcessed, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := domain.CanTransition(tc.from, tc.to); got != tc.want {
				t.Errorf("CanTransition(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.want)
			}
		})
	}
}

func TestTerminalStatesHaveNoExits(t *testing.T) {
	all := []domain.Status{
		domain.StatusPending, domain.StatusProcessing,
		domain.StatusProcessed, domain.StatusFailed,
	}

	for _, from := range all {
		if !from.Terminal() {
			continue
		}
		for _, to := range all {
			if domain.CanTransition(from, to) {
				t.Errorf("terminal state %s must not transition to %s", from, to)
			}
		}
	}
}

func TestAllowedPrior(t *testing.T) {
	prior := domain.AllowedPrior(domain.StatusProcessed)
	if len(prior) != 2 {
		t.Fatalf("expected 2 prior states for processed, got %v", prior)
	}

	prior = domain.AllowedPrior(domain.StatusPending)
	if len(prior) != 0 {
		t.Fatalf("nothing may transition into pending, got %v", prior)
	}
}
