package engine

import "testing"

func TestSymbolTableFixed(t *testing.T) {
	tab := NewSymbolTable(nil)
	if tab.Count() != 17 {
		t.Fatalf("Count() = %d, expected 17", tab.Count())
	}

	dash, _ := tab.Index('-')
	pipe, ok := tab.Index('|')
	if !ok || dash != pipe {
		t.Errorf("walls should share a channel: '-'=%d '|'=%d", dash, pipe)
	}
	if i, ok := tab.Index(' '); !ok || i != 0 {
		t.Errorf("blank index = %d, %v; expected 0, true", i, ok)
	}
	if _, ok := tab.Index('B'); ok {
		t.Error("enemy letter should be unknown without a roster")
	}
}

func TestSymbolTableEnemies(t *testing.T) {
	tab := NewSymbolTable([]byte("BSB"))
	if tab.Count() != 19 {
		t.Fatalf("Count() = %d, expected 19", tab.Count())
	}
	if i, _ := tab.Index('B'); i != 17 {
		t.Errorf("'B' index = %d, expected 17", i)
	}
	if i, _ := tab.Index('S'); i != 18 {
		t.Errorf("'S' index = %d, expected 18", i)
	}
	if got := string(tab.Symbols()[17:]); got != "BS" {
		t.Errorf("enemy symbols = %q, expected BS", got)
	}
}

func TestPlayerStateEqual(t *testing.T) {
	a := &PlayerState{Dungeon: []string{" @. "}, Status: Status{Gold: 3}, Steps: 1}
	b := &PlayerState{Dungeon: []string{" @. "}, Status: Status{Gold: 3}, Steps: 9}

	if !a.Equal(b) {
		t.Error("states with the same grid and status should be equal")
	}

	b.Status.Gold = 4
	if a.Equal(b) {
		t.Error("status difference should break equality")
	}

	c := &PlayerState{Dungeon: []string{" @# "}, Status: Status{Gold: 3}}
	if a.Equal(c) {
		t.Error("grid difference should break equality")
	}

	var nilState *PlayerState
	if nilState.Equal(a) || !nilState.Equal(nil) {
		t.Error("nil handling is wrong")
	}
}

func TestPlayerStateAccessors(t *testing.T) {
	s := &PlayerState{
		Dungeon: []string{"ab", "cd", "ef"},
		Visited: [][]bool{{true, false}, {false, false}, {false, true}},
	}
	if s.Height() != 3 || s.Width() != 2 {
		t.Errorf("size = %dx%d, expected 2x3", s.Width(), s.Height())
	}
	if s.At(1, 2) != 'f' || s.At(5, 5) != ' ' {
		t.Error("At returned the wrong symbol")
	}
	if !s.WasVisited(0, 0) || s.WasVisited(1, 0) || s.WasVisited(-1, 0) {
		t.Error("WasVisited returned the wrong value")
	}
}

func TestStatusString(t *testing.T) {
	s := Status{DungeonLevel: 2, Gold: 10, HPCurrent: 5, HPMax: 12, Hunger: HungerWeak}
	if got := s.String(); got[:8] != "Level: 2" {
		t.Errorf("String() = %q", got)
	}
	if s.HungerString() != "Weak" {
		t.Errorf("HungerString() = %q, expected Weak", s.HungerString())
	}
}
