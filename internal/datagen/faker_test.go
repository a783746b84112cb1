//-------------------------------------------------------------------------
//
// pgEdge Demand Preprocessor
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package datagen

import (
	"testing"
)

func TestNewFaker(t *testing.T) {
	f := NewFaker()
	if f == nil {
		t.Fatal("NewFaker returned nil")
	}
	if f.faker == nil {
		t.Fatal("faker field is nil")
	}
}

func TestNewFakerWithSeed(t *testing.T) {
	seed := uint64(12345)
	f1 := NewFakerWithSeed(seed)
	f2 := NewFakerWithSeed(seed)

	// Same seed should produce same sequence
	for i := 0; i < 10; i++ {
		v1 := f1.Int(0, 1000)
		v2 := f2.Int(0, 1000)
		if v1 != v2 {
			t.Errorf("Same seed produced different values: %d != %d", v1, v2)
		}
	}
	if f1.City() != f2.City() {
		t.Error("Same seed produced different cities")
	}
}

func TestFakerStrings(t *testing.T) {
	f := NewFaker()
	if f.City() == "" {
		t.Error("City returned empty string")
	}
	if f.State() == "" {
		t.Error("State returned empty string")
	}
	if f.Sentence(3) == "" {
		t.Error("Sentence returned empty string")
	}
}

func TestFakerInt(t *testing.T) {
	f := NewFaker()
	for i := 0; i < 100; i++ {
		v := f.Int(1, 17)
		if v < 1 || v > 17 {
			t.Errorf("Int(1, 17) returned %d", v)
		}
	}
}

func TestFakerFloat64(t *testing.T) {
	f := NewFaker()
	for i := 0; i < 100; i++ {
		v := f.Float64(-2, 2)
		if v < -2 || v > 2 {
			t.Errorf("Float64(-2, 2) returned %f", v)
		}
	}
}

func TestFakerPrice(t *testing.T) {
	f := NewFaker()
	p := f.Price(1, 800)
	if p < 1 || p > 800 {
		t.Errorf("Price should be between 1 and 800, got %f", p)
	}
}

func TestFakerChance(t *testing.T) {
	f := NewFakerWithSeed(7)
	for i := 0; i < 100; i++ {
		if f.Chance(0) {
			t.Fatal("Chance(0) returned true")
		}
		if !f.Chance(1.01) {
			t.Fatal("Chance(1.01) returned false")
		}
	}
}

func TestChoose(t *testing.T) {
	f := NewFaker()
	items := []string{"a", "b", "c"}

	for i := 0; i < 100; i++ {
		chosen := Choose(f, items)
		found := false
		for _, item := range items {
			if chosen == item {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("Choose returned item not in slice: %s", chosen)
		}
	}
}

func TestChooseEmpty(t *testing.T) {
	f := NewFaker()
	var items []string
	chosen := Choose(f, items)
	if chosen != "" {
		t.Errorf("Choose on empty slice should return zero value, got: %s", chosen)
	}
}

func TestChooseWeighted(t *testing.T) {
	f := NewFaker()
	items := []string{"a", "b", "c"}
	weights := []int{1, 2, 7} // c should be chosen ~70% of the time

	counts := make(map[string]int)
	iterations := 1000

	for i := 0; i < iterations; i++ {
		chosen := ChooseWeighted(f, items, weights)
		counts[chosen]++
	}

	// c should be most common
	if counts["c"] < counts["a"] || counts["c"] < counts["b"] {
		t.Errorf("Weighted choice distribution unexpected: %v", counts)
	}
}

func TestChooseWeightedEmpty(t *testing.T) {
	f := NewFaker()
	chosen := ChooseWeighted(f, []string{}, []int{})
	if chosen != "" {
		t.Errorf("ChooseWeighted on empty slices should return zero value, got: %s", chosen)
	}
}

func TestRound(t *testing.T) {
	tests := []struct {
		input    float64
		places   int
		expected float64
	}{
		{1.2345, 2, 1.23},
		{1.235, 0, 1},
		{-3.14159, 3, -3.142},
		{50, 2, 50},
	}

	for _, tt := range tests {
		if got := Round(tt.input, tt.places); got != tt.expected {
			t.Errorf("Round(%v, %d) = %v, want %v", tt.input, tt.places, got, tt.expected)
		}
	}
}

func TestProgressReporter(t *testing.T) {
	p := NewProgressReporter("train.csv", 100, 0)
	p.Update(30)
	p.Update(30)
	if p.Rows() != 60 {
		t.Errorf("Expected 60 rows, got %d", p.Rows())
	}
	p.Done()
}
