// Package mapmodel holds the static tile grid and spawn geometry the movement
// core and server simulation query during a session: a two-layer tile grid
// (floor, block) with a ray-vs-block-layer query. Map-file parsing is out of
// scope — this package accepts an in-memory grid, built directly or via
// NewTestMap, and exposes the query surface the simulation and movement code
// need.
package mapmodel

import (
	"catch/internal/mathutil"
)

// Tile identifies a tile image within a tileset. Only Present matters for the
// simulation; Tileset/X/Y are retained for renderer consumption.
type Tile struct {
	Present bool
	Tileset int
	X, Y    int
}

// Layer is the fixed set of tile layers a Map carries.
type Layer int

const (
	LayerFloor Layer = iota
	LayerBlock
)

// SpawnRect is a rectangle (in world units) players or items may spawn within.
type SpawnRect struct {
	X, Y, W, H float32
}

// Center returns the rectangle's midpoint.
func (r SpawnRect) Center() mathutil.Vec2 {
	return mathutil.Vec2{X: r.X + r.W/2, Y: r.Y + r.H/2}
}

// Map is a static tile grid plus per-map spawn geometry. Tiles never change
// during a session.
type Map struct {
	name       string
	width      int
	height     int
	tileWidth  int
	tileHeight int
	floor      []Tile
	block      []Tile
	spawns     []SpawnRect
}

// New constructs a Map from explicit layer data. floor and block must each
// have width*height entries in row-major order.
func New(name string, width, height, tileWidth, tileHeight int, floor, block []Tile, spawns []SpawnRect) *Map {
	m := &Map{
		name:       name,
		width:      width,
		height:     height,
		tileWidth:  tileWidth,
		tileHeight: tileHeight,
		floor:      floor,
		block:      block,
		spawns:     spawns,
	}
	if len(m.floor) != width*height {
		m.floor = make([]Tile, width*height)
	}
	if len(m.block) != width*height {
		m.block = make([]Tile, width*height)
	}
	return m
}

// NewTestMap builds a small open arena bordered by blocking tiles, suitable
// for unit tests and the reference client/server binaries when no real map
// file is supplied.
func NewTestMap() *Map {
	const w, h, tw, th = 20, 15, 32, 32
	floor := make([]Tile, w*h)
	block := make([]Tile, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			floor[y*w+x] = Tile{Present: true}
			if x == 0 || y == 0 || x == w-1 || y == h-1 {
				block[y*w+x] = Tile{Present: true}
			}
		}
	}
	spawns := []SpawnRect{
		{X: 2 * tw, Y: 2 * th, W: 2 * float32(tw), H: 2 * float32(th)},
		{X: float32(w-4) * float32(tw), Y: float32(h-4) * float32(th), W: 2 * float32(tw), H: 2 * float32(th)},
	}
	return New("test_arena", w, h, tw, th, floor, block, spawns)
}

// Name returns the map's identifier, sent to clients in GameInfo.
func (m *Map) Name() string { return m.name }

// TileWidth returns the tile width in world units.
func (m *Map) TileWidth() int { return m.tileWidth }

// TileHeight returns the tile height in world units.
func (m *Map) TileHeight() int { return m.tileHeight }

// Width returns the grid width in tiles.
func (m *Map) Width() int { return m.width }

// Height returns the grid height in tiles.
func (m *Map) Height() int { return m.height }

// IsPosValid reports whether (x,y) is within grid bounds.
func (m *Map) IsPosValid(x, y int) bool {
	return x >= 0 && y >= 0 && x < m.width && y < m.height
}

func (m *Map) layer(l Layer) []Tile {
	if l == LayerBlock {
		return m.block
	}
	return m.floor
}

// GetTile returns the tile at (x,y) on the given layer.
func (m *Map) GetTile(l Layer, x, y int) (Tile, bool) {
	if !m.IsPosValid(x, y) {
		return Tile{}, false
	}
	return m.layer(l)[y*m.width+x], true
}

// IsBlocking reports whether the tile at (x,y) blocks movement. Out-of-bounds
// coordinates are treated as blocking so swept shapes cannot escape the grid.
func (m *Map) IsBlocking(x, y int) bool {
	t, ok := m.GetTile(LayerBlock, x, y)
	if !ok {
		return true
	}
	return t.Present
}

// BlockingTileCoord is one occupied cell yielded by IterBlocking.
type BlockingTileCoord struct {
	X, Y int
}

// IterBlocking returns every occupied cell on the block layer, in row-major
// order — the ascending-order iteration the original TileIter guaranteed.
func (m *Map) IterBlocking() []BlockingTileCoord {
	out := make([]BlockingTileCoord, 0, 32)
	for y := 0; y < m.height; y++ {
		for x := 0; x < m.width; x++ {
			if m.block[y*m.width+x].Present {
				out = append(out, BlockingTileCoord{X: x, Y: y})
			}
		}
	}
	return out
}

// SpawnRects returns the map's spawn rectangles.
func (m *Map) SpawnRects() []SpawnRect { return m.spawns }

// LineVsMapResult is the earliest contact a ray makes with the block layer.
type LineVsMapResult struct {
	TileX, TileY int
	Normal       mathutil.Vec2
	T            float32
}

// LineSegmentVsMap finds the earliest point at which the segment [p,q]
// crosses one of the four edges of any blocking tile, testing all four tile
// edges of every blocking cell.
func (m *Map) LineSegmentVsMap(p, q mathutil.Vec2) (LineVsMapResult, bool) {
	var best LineVsMapResult
	found := false

	tw, th := float32(m.tileWidth), float32(m.tileHeight)

	for _, cell := range m.IterBlocking() {
		x := float32(cell.X) * tw
		y := float32(cell.Y) * th

		type edge struct {
			a, b, n mathutil.Vec2
		}
		edges := [4]edge{
			{mathutil.Vec2{X: x, Y: y}, mathutil.Vec2{X: x + tw, Y: y}, mathutil.Vec2{X: 0, Y: -1}},
			{mathutil.Vec2{X: x, Y: y}, mathutil.Vec2{X: x, Y: y + th}, mathutil.Vec2{X: -1, Y: 0}},
			{mathutil.Vec2{X: x + tw, Y: y}, mathutil.Vec2{X: x + tw, Y: y + th}, mathutil.Vec2{X: 1, Y: 0}},
			{mathutil.Vec2{X: x, Y: y + th}, mathutil.Vec2{X: x + tw, Y: y + th}, mathutil.Vec2{X: 0, Y: 1}},
		}

		for _, e := range edges {
			s, _, ok := mathutil.SegmentSegmentIntersection(p, q, e.a, e.b)
			if !ok {
				continue
			}
			if !found || s < best.T {
				best = LineVsMapResult{TileX: cell.X, TileY: cell.Y, Normal: e.n, T: s}
				found = true
			}
		}
	}

	return best, found
}

// WallSegment is a line segment of the block layer, materialized as a
// WallPosition-bearing entity by the server during world init.
type WallSegment struct {
	A, B mathutil.Vec2
}

// BlockingSegments reduces the block layer to one boundary segment per
// blocking tile edge whose neighbour is not blocking (up to four per tile) —
// a simplified "wall list" the server spawns as WallPosition entities at
// tick 1. Edges shared with another blocking tile or with the map border are
// skipped since nothing can approach them.
func (m *Map) BlockingSegments() []WallSegment {
	tw, th := float32(m.tileWidth), float32(m.tileHeight)
	var segs []WallSegment
	for _, cell := range m.IterBlocking() {
		x, y := float32(cell.X)*tw, float32(cell.Y)*th
		neighborBlocks := func(dx, dy int) bool {
			return m.IsBlocking(cell.X+dx, cell.Y+dy)
		}
		if !neighborBlocks(0, -1) {
			segs = append(segs, WallSegment{A: mathutil.Vec2{X: x, Y: y}, B: mathutil.Vec2{X: x + tw, Y: y}})
		}
		if !neighborBlocks(0, 1) {
			segs = append(segs, WallSegment{A: mathutil.Vec2{X: x, Y: y + th}, B: mathutil.Vec2{X: x + tw, Y: y + th}})
		}
		if !neighborBlocks(-1, 0) {
			segs = append(segs, WallSegment{A: mathutil.Vec2{X: x, Y: y}, B: mathutil.Vec2{X: x, Y: y + th}})
		}
		if !neighborBlocks(1, 0) {
			segs = append(segs, WallSegment{A: mathutil.Vec2{X: x + tw, Y: y}, B: mathutil.Vec2{X: x + tw, Y: y + th}})
		}
	}
	return segs
}
