package lossnet

import (
	"math/rand"
	"testing"
)

func TestThresholdZeroAdmitsEverything(t *testing.T) {
	g := NewGate(1, 0)
	for i := 0; i < 1000; i++ {
		if !g.Admit() {
			t.Fatal("Admit() returned false with threshold=0")
		}
	}
}

func TestThresholdAboveMaxAdmitsOnlyTopDraw(t *testing.T) {
	g := NewGate(1, 101)
	if g.Threshold() != lowerBoundMax {
		t.Fatalf("Threshold() = %d; want clamped to %d", g.Threshold(), lowerBoundMax)
	}
	// With the threshold at 100 only a draw of exactly 100 is kept; replay
	// the gate's draws from an identically seeded source to know which.
	ref := rand.New(rand.NewSource(1))
	for i := 0; i < 1000; i++ {
		want := ref.Intn(lowerBoundMax)+1 == lowerBoundMax
		if got := g.Admit(); got != want {
			t.Fatalf("Admit() call %d = %v; want %v with threshold clamped to 100", i, got, want)
		}
	}
}

func TestSetThresholdClampsNegative(t *testing.T) {
	g := NewGate(1, -5)
	if g.Threshold() != 0 {
		t.Fatalf("Threshold() = %d; want clamped to 0", g.Threshold())
	}
}

func TestIndependentGatesDiverge(t *testing.T) {
	a := NewGate(1, 50)
	b := NewGate(2, 50)
	sameCount := 0
	for i := 0; i < 50; i++ {
		if a.Admit() == b.Admit() {
			sameCount++
		}
	}
	if sameCount == 50 {
		t.Fatal("two independently seeded gates produced identical decisions every time")
	}
}
