package planner

import "testing"

func TestPlanMidSizeChunk(t *testing.T) {
	lt := Plan(400)

	if lt.Target != 140 {
		t.Fatalf("expected target 140, got %d", lt.Target)
	}

	if lt.Min != 84 {
		t.Fatalf("expected min 84, got %d", lt.Min)
	}
}

func TestPlanClampsToCeiling(t *testing.T) {
	lt := Plan(2000)

	if lt.Target != 250 {
		t.Fatalf("expected target capped at 250, got %d", lt.Target)
	}

	if lt.Min != 150 {
		t.Fatalf("expected min 150, got %d", lt.Min)
	}
}

func TestPlanSmallChunkUsesFloor(t *testing.T) {
	lt := Plan(60)

	if lt.Target != 30 {
		t.Fatalf("expected target floor 30, got %d", lt.Target)
	}

	if lt.Min != 20 {
		t.Fatalf("expected min floor 20, got %d", lt.Min)
	}
}

func TestPlanInvariantsHold(t *testing.T) {
	for n := 2; n <= 3000; n++ {
		lt := Plan(n)

		if lt.Target < 1 || lt.Min < 1 {
			t.Fatalf("n=%d: non-positive bounds %+v", n, lt)
		}

		if lt.Min > lt.Target {
			t.Fatalf("n=%d: min %d above target %d", n, lt.Min, lt.Target)
		}

		if lt.Target >= n {
			t.Fatalf("n=%d: target %d not below chunk length", n, lt.Target)
		}
	}
}
