package mapmodel

import (
	"testing"

	"catch/internal/mathutil"
)

func TestNewTestMap(t *testing.T) {
	m := NewTestMap()
	if m.Width() != 20 || m.Height() != 15 {
		t.Fatalf("unexpected dims %dx%d", m.Width(), m.Height())
	}
	if len(m.SpawnRects()) != 2 {
		t.Fatalf("expected 2 spawn rects, got %d", len(m.SpawnRects()))
	}
}

func TestIsBlocking(t *testing.T) {
	m := NewTestMap()
	tests := []struct {
		name    string
		x, y    int
		blocked bool
	}{
		{"top-left border", 0, 0, true},
		{"interior open", 5, 5, false},
		{"out of bounds", -1, 5, true},
		{"out of bounds past width", 100, 5, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := m.IsBlocking(tt.x, tt.y); got != tt.blocked {
				t.Errorf("IsBlocking(%d,%d) = %v, want %v", tt.x, tt.y, got, tt.blocked)
			}
		})
	}
}

func TestIterBlockingOrder(t *testing.T) {
	m := NewTestMap()
	cells := m.IterBlocking()
	if len(cells) == 0 {
		t.Fatal("expected blocking cells on bordered test arena")
	}
	for i := 1; i < len(cells); i++ {
		prev, cur := cells[i-1], cells[i]
		if cur.Y < prev.Y || (cur.Y == prev.Y && cur.X < prev.X) {
			t.Fatalf("cells out of row-major order at %d: %v then %v", i, prev, cur)
		}
	}
}

func TestLineSegmentVsMap(t *testing.T) {
	m := NewTestMap()
	tw := float32(m.TileWidth())

	tests := []struct {
		name   string
		p, q   mathutil.Vec2
		wantOK bool
	}{
		{
			name:   "segment crossing left border wall",
			p:      mathutil.Vec2{X: 3 * tw, Y: 5 * tw},
			q:      mathutil.Vec2{X: -5 * tw, Y: 5 * tw},
			wantOK: true,
		},
		{
			name:   "segment entirely within open interior",
			p:      mathutil.Vec2{X: 3 * tw, Y: 3 * tw},
			q:      mathutil.Vec2{X: 5 * tw, Y: 5 * tw},
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, ok := m.LineSegmentVsMap(tt.p, tt.q)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v (res=%+v)", ok, tt.wantOK, res)
			}
			if ok && (res.T < 0 || res.T > 1) {
				t.Errorf("t out of range: %v", res.T)
			}
		})
	}
}

func TestBlockingSegmentsSkipsInteriorEdges(t *testing.T) {
	m := NewTestMap()
	segs := m.BlockingSegments()
	if len(segs) == 0 {
		t.Fatal("expected boundary segments on bordered test arena")
	}
	// The corner tile (0,0) of the bordered arena has the map border on two
	// sides and border tiles on the other two, so it contributes no segment.
	tw, th := float32(m.TileWidth()), float32(m.TileHeight())
	cornerEdges := 0
	for _, s := range segs {
		if s.A.X <= tw && s.A.Y <= th && s.B.X <= tw && s.B.Y <= th {
			cornerEdges++
		}
	}
	if cornerEdges != 0 {
		t.Fatalf("corner tile contributed %d segments, want 0", cornerEdges)
	}
}
