package combat

import (
	"errors"
	"fmt"
	"testing"
)

func TestHpDamageClampsAndReportsDown(t *testing.T) {
	s, err := SetHp(State{Status: StatusActive, Round: 1}, 1, "Ogre", 10, 10)
	if err != nil {
		t.Fatalf("set hp: %v", err)
	}

	s, entry, err := Damage(s, 1, 15)
	if err != nil {
		t.Fatalf("damage: %v", err)
	}
	if entry.Current != 0 {
		t.Fatalf("expected current 0, got %d", entry.Current)
	}
	if !entry.Down() {
		t.Fatal("expected entry reported down")
	}

	_, entry, err = Heal(s, 1, 5)
	if err != nil {
		t.Fatalf("heal: %v", err)
	}
	if entry.Current != 5 {
		t.Fatalf("expected current 5, got %d", entry.Current)
	}
	if entry.Down() {
		t.Fatal("expected entry no longer down")
	}
}

func TestHpHealClampsAtMax(t *testing.T) {
	s, err := SetHp(State{}, 1, "Knight", 8, 10)
	if err != nil {
		t.Fatalf("set hp: %v", err)
	}
	_, entry, err := Heal(s, 1, 50)
	if err != nil {
		t.Fatalf("heal: %v", err)
	}
	if entry.Current != 10 {
		t.Fatalf("expected clamp at max 10, got %d", entry.Current)
	}
}

func TestHpValidation(t *testing.T) {
	tests := []struct {
		name    string
		label   string
		current int
		max     int
		want    error
	}{
		{name: "empty label", label: " ", current: 5, max: 10, want: ErrHpEmptyLabel},
		{name: "negative current", label: "x", current: -1, max: 10, want: ErrHpInvalidRange},
		{name: "current above max", label: "x", current: 11, max: 10, want: ErrHpInvalidRange},
		{name: "zero max", label: "x", current: 0, max: 0, want: ErrHpInvalidRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := SetHp(State{}, 1, tt.label, tt.current, tt.max); !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestHpCapRejectsCreation(t *testing.T) {
	s := State{}
	var err error
	for i := 0; i < HpEntryCap; i++ {
		s, err = SetHp(s, i, fmt.Sprintf("mob-%d", i), 5, 5)
		if err != nil {
			t.Fatalf("set hp %d: %v", i, err)
		}
	}

	if _, err := SetHp(s, HpEntryCap, "one too many", 5, 5); !errors.Is(err, ErrHpCapExceeded) {
		t.Fatalf("expected ErrHpCapExceeded, got %v", err)
	}

	// Updating an existing entry is still allowed at the cap.
	if _, err := SetHp(s, 0, "mob-0", 1, 5); err != nil {
		t.Fatalf("expected update at cap to succeed, got %v", err)
	}
}

func TestHpRemoveAndClear(t *testing.T) {
	s, err := SetHp(State{}, 1, "Ogre", 5, 5)
	if err != nil {
		t.Fatalf("set hp: %v", err)
	}

	if _, err := RemoveHp(s, 99); !errors.Is(err, ErrHpEntryNotFound) {
		t.Fatalf("expected ErrHpEntryNotFound, got %v", err)
	}

	s, err = RemoveHp(s, 1)
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if len(s.HP) != 0 {
		t.Fatalf("expected no entries, got %v", s.HP)
	}

	s, _ = SetHp(s, 2, "Wolf", 3, 3)
	s = ClearHp(s)
	if len(s.HP) != 0 {
		t.Fatalf("expected cleared entries, got %v", s.HP)
	}
}

func TestHpInvalidAmounts(t *testing.T) {
	s, _ := SetHp(State{}, 1, "Ogre", 5, 5)

	if _, _, err := Damage(s, 1, 0); !errors.Is(err, ErrHpInvalidAmount) {
		t.Fatalf("expected ErrHpInvalidAmount, got %v", err)
	}
	if _, _, err := Heal(s, 1, -2); !errors.Is(err, ErrHpInvalidAmount) {
		t.Fatalf("expected ErrHpInvalidAmount, got %v", err)
	}
	if _, _, err := Damage(s, 9, 1); !errors.Is(err, ErrHpEntryNotFound) {
		t.Fatalf("expected ErrHpEntryNotFound, got %v", err)
	}
}
