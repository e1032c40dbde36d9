package apperr

import (
	"fmt"
	"testing"
)

func TestExitCodeAlwaysOne(t *testing.T) {
	kinds := []Kind{KindPlanLoad, KindPlanStructure, KindConfigLoad, KindPolicyLoad, KindInternalInvariant}
	for _, k := range kinds {
		e := &Error{Kind: k, Message: "boom"}
		if e.ExitCode() != 1 {
			t.Fatalf("%s: expected exit code 1, got %d", k, e.ExitCode())
		}
	}
}

func TestIsMatchesWrappedChain(t *testing.T) {
	base := PlanLoad("could not read plan", fmt.Errorf("open: no such file"))
	wrapped := fmt.Errorf("analyze: %w", base)
	if !Is(wrapped, KindPlanLoad) {
		t.Fatalf("expected Is to find KindPlanLoad through wrap chain")
	}
	if Is(wrapped, KindConfigLoad) {
		t.Fatalf("expected Is to reject the wrong kind")
	}
}

func TestInvariantErrorCarriesName(t *testing.T) {
	e := InternalInvariant("single-action-per-resource", "resource has two actions assigned")
	if e.Invariant != "single-action-per-resource" {
		t.Fatalf("expected invariant name to round-trip, got %q", e.Invariant)
	}
	if got := e.Error(); got == "" {
		t.Fatalf("expected non-empty message")
	}
}
