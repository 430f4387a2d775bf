package components

import (
	"math"
	"testing"

	"github.com/pthm-cable/physarum/neural"
)

func TestSignalHistoryFIFO(t *testing.T) {
	var h SignalHistory
	if h.Len() != 0 || len(h.Values()) != 0 {
		t.Fatal("new history should be empty")
	}

	for i := 1; i <= neural.SignalHistoryLen+2; i++ {
		h.Push(i)
	}

	if h.Len() != neural.SignalHistoryLen {
		t.Fatalf("Len = %d, want %d", h.Len(), neural.SignalHistoryLen)
	}
	got := h.Values()
	for i, v := range got {
		if want := i + 3; v != want {
			t.Errorf("Values()[%d] = %d, want %d", i, v, want)
		}
	}

	// Values returns a copy.
	got[0] = 99
	if h.Values()[0] == 99 {
		t.Error("Values exposes internal buffer")
	}
}

func TestFoodSourceContains(t *testing.T) {
	f := FoodSource{Position: Position{X: 10, Y: -5}, Radius: 3}
	tests := []struct {
		x, y float64
		want bool
	}{
		{10, -5, true},
		{13, -5, true},
		{10, -8.01, false},
		{0, 0, false},
	}
	for _, tt := range tests {
		if got := f.Contains(tt.x, tt.y); got != tt.want {
			t.Errorf("Contains(%v, %v) = %v, want %v", tt.x, tt.y, got, tt.want)
		}
	}
}

func TestEdgeAngle(t *testing.T) {
	e := Edge{X1: 0, Y1: 0, X2: 0, Y2: 20}
	if got := e.Angle(); math.Abs(got-math.Pi/2) > 1e-12 {
		t.Errorf("Angle = %v, want π/2", got)
	}
}
