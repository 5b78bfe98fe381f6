package combat

import (
	"errors"
	"fmt"
	"testing"
)

func TestClockTickClampsAndCompletes(t *testing.T) {
	s, err := CreateClock(State{}, 1, "Ritual", 4)
	if err != nil {
		t.Fatalf("create clock: %v", err)
	}

	s, clock, err := Tick(s, 1, 5)
	if err != nil {
		t.Fatalf("tick: %v", err)
	}
	if clock.Filled != 4 {
		t.Fatalf("expected clamp at 4, got %d", clock.Filled)
	}
	if !clock.Complete() {
		t.Fatal("expected clock reported complete")
	}

	// Complete clocks stay until deleted.
	if _, ok := s.Clocks[1]; !ok {
		t.Fatal("expected complete clock retained")
	}
}

func TestClockUntickClampsAtZero(t *testing.T) {
	s, _ := CreateClock(State{}, 1, "Alarm", 6)
	s, _, err := Tick(s, 1, 2)
	if err != nil {
		t.Fatalf("tick: %v", err)
	}

	_, clock, err := Untick(s, 1, 10)
	if err != nil {
		t.Fatalf("untick: %v", err)
	}
	if clock.Filled != 0 {
		t.Fatalf("expected clamp at 0, got %d", clock.Filled)
	}
}

func TestClockSegmentsValidation(t *testing.T) {
	for _, segments := range []int{1, 0, 13, -4} {
		if _, err := CreateClock(State{}, 1, "bad", segments); !errors.Is(err, ErrClockInvalidSegments) {
			t.Fatalf("segments %d: expected ErrClockInvalidSegments, got %v", segments, err)
		}
	}
}

func TestClockCapRejectsCreation(t *testing.T) {
	s := State{}
	var err error
	for i := 0; i < ClockCap; i++ {
		s, err = CreateClock(s, i, fmt.Sprintf("clock-%d", i), 4)
		if err != nil {
			t.Fatalf("create clock %d: %v", i, err)
		}
	}

	if _, err := CreateClock(s, ClockCap, "overflow", 4); !errors.Is(err, ErrClockCapExceeded) {
		t.Fatalf("expected ErrClockCapExceeded, got %v", err)
	}
}

func TestClockDelete(t *testing.T) {
	s, _ := CreateClock(State{}, 1, "Ritual", 4)

	if _, err := DeleteClock(s, 9); !errors.Is(err, ErrClockNotFound) {
		t.Fatalf("expected ErrClockNotFound, got %v", err)
	}

	s, err := DeleteClock(s, 1)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(s.Clocks) != 0 {
		t.Fatalf("expected no clocks, got %v", s.Clocks)
	}
}

func TestClockInvalidTicks(t *testing.T) {
	s, _ := CreateClock(State{}, 1, "Ritual", 4)
	if _, _, err := Tick(s, 1, 0); !errors.Is(err, ErrClockInvalidTicks) {
		t.Fatalf("expected ErrClockInvalidTicks, got %v", err)
	}
	if _, _, err := Untick(s, 1, -1); !errors.Is(err, ErrClockInvalidTicks) {
		t.Fatalf("expected ErrClockInvalidTicks, got %v", err)
	}
}
