package analysis

import "testing"

func TestStackingDecaySingleItem(t *testing.T) {
	got := stackingDecay([]weightedItem{{address: "a", weight: 50}}, 0.85)
	if got != 50 {
		t.Fatalf("expected 50, got %v", got)
	}
}

func TestStackingDecayOrdersByDescendingWeight(t *testing.T) {
	items := []weightedItem{
		{address: "z", weight: 10},
		{address: "a", weight: 50},
	}
	got := stackingDecay(items, 0.5)
	want := 50 + 10*0.5
	if got != want {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestStackingDecayTiesBrokenByAddress(t *testing.T) {
	items := []weightedItem{
		{address: "zzz", weight: 30},
		{address: "aaa", weight: 30},
	}
	got := stackingDecay(items, 0.5)
	want := 30 + 30*0.5
	if got != want {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestStackingDecayEmpty(t *testing.T) {
	if got := stackingDecay(nil, 0.85); got != 0 {
		t.Fatalf("expected 0, got %v", got)
	}
}

func TestStackingDecayIsOrderIndependentOnInput(t *testing.T) {
	forward := []weightedItem{{address: "a", weight: 10}, {address: "b", weight: 20}, {address: "c", weight: 5}}
	reversed := []weightedItem{{address: "c", weight: 5}, {address: "b", weight: 20}, {address: "a", weight: 10}}
	if stackingDecay(forward, 0.8) != stackingDecay(reversed, 0.8) {
		t.Fatalf("stackingDecay should not depend on input order")
	}
}
