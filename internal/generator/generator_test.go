package generator

import (
	"testing"
	"time"

	"github.com/verte-zerg/wsim/internal/model"
	"github.com/verte-zerg/wsim/internal/params"
)

func TestSpawnIntervalWithinPaceRange(t *testing.T) {
	g := NewSeeded(1)
	for _, pace := range params.Paces {
		lo, hi := pace.Range()
		minInterval := time.Duration(float64(time.Second) / hi)
		maxInterval := time.Duration(float64(time.Second) / lo)
		for i := 0; i < 500; i++ {
			d := g.SpawnInterval(pace)
			if d < minInterval-time.Millisecond || d > maxInterval+time.Millisecond {
				t.Fatalf("pace %s: interval %v outside [%v, %v]", pace, d, minInterval, maxInterval)
			}
		}
	}
}

func TestOtherColorNeverReturnsExcluded(t *testing.T) {
	g := NewSeeded(7)
	palette := params.Palette(6)
	for i := 0; i < 200; i++ {
		if c := g.OtherColor(palette, model.Green); c == model.Green {
			t.Fatalf("expected a color other than green")
		}
	}
	if c := g.OtherColor([]model.Color{model.Red}, model.Red); c != model.Red {
		t.Fatalf("expected fallback to excluded color, got %s", c)
	}
}

func TestBernoulliBoundaries(t *testing.T) {
	g := NewSeeded(3)
	for i := 0; i < 1000; i++ {
		if g.Bernoulli(0) {
			t.Fatalf("p=0 must never fire")
		}
		if !g.Bernoulli(1) {
			t.Fatalf("p=1 must always fire")
		}
	}
}

func TestCapacityDraws(t *testing.T) {
	g := NewSeeded(11)
	seen := map[int]bool{}
	for i := 0; i < 300; i++ {
		c := g.Capacity(params.CapacityUniform46)
		if c < 4 || c > 6 {
			t.Fatalf("capacity %d outside 4..6", c)
		}
		seen[c] = true
	}
	if len(seen) != 3 {
		t.Fatalf("expected all capacities to appear, got %v", seen)
	}
	if c := g.Capacity(params.CapacityFixed6); c != 6 {
		t.Fatalf("expected fixed 6, got %d", c)
	}
}

func TestDeriveIsStable(t *testing.T) {
	a := Derive(42, 1)
	b := Derive(42, 1)
	for i := 0; i < 20; i++ {
		if a.Intn(1000) != b.Intn(1000) {
			t.Fatalf("derived streams diverged at draw %d", i)
		}
	}
}
