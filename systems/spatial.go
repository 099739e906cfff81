// Package systems provides ECS systems for the simulation.
package systems

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/missions/components"
)

// Neighbor holds a nearby entity with precomputed spatial data.
type Neighbor struct {
	E      ecs.Entity
	DX, DY float32 // Delta from query origin
	DistSq float32 // Squared distance (avoid sqrt in hot path)
}

// SpatialGrid provides O(1) neighbor lookups using a cell-based grid over a
// bounded world centered on the origin.
type SpatialGrid struct {
	cellSize float32
	cols     int
	rows     int
	minX     float32
	minY     float32
	cells    [][]ecs.Entity // flat grid of entity lists
}

// NewSpatialGrid creates a spatial grid covering a width x height world centered on the origin.
func NewSpatialGrid(width, height, cellSize float32) *SpatialGrid {
	cols := int(width/cellSize) + 1
	rows := int(height/cellSize) + 1

	cells := make([][]ecs.Entity, cols*rows)
	for i := range cells {
		cells[i] = make([]ecs.Entity, 0, 8) // pre-allocate small capacity
	}

	return &SpatialGrid{
		cellSize: cellSize,
		cols:     cols,
		rows:     rows,
		minX:     -width / 2,
		minY:     -height / 2,
		cells:    cells,
	}
}

// Clear removes all entities from the grid.
func (g *SpatialGrid) Clear() {
	for i := range g.cells {
		g.cells[i] = g.cells[i][:0]
	}
}

// Insert adds an entity to the grid at the given position.
func (g *SpatialGrid) Insert(e ecs.Entity, x, y float32) {
	idx := g.cellIndex(x, y)
	g.cells[idx] = append(g.cells[idx], e)
}

// Remove deletes an entity previously inserted at the given position.
// It reports whether the entity was found.
func (g *SpatialGrid) Remove(e ecs.Entity, x, y float32) bool {
	idx := g.cellIndex(x, y)
	cell := g.cells[idx]
	for i, other := range cell {
		if other == e {
			last := len(cell) - 1
			cell[i] = cell[last]
			g.cells[idx] = cell[:last]
			return true
		}
	}
	return false
}

// Len returns the number of entities in the grid.
func (g *SpatialGrid) Len() int {
	n := 0
	for _, cell := range g.cells {
		n += len(cell)
	}
	return n
}

// MaxQueryResults caps the number of neighbors returned by spatial queries.
// This prevents density spikes from causing unbounded work.
const MaxQueryResults = 128

// QueryRadiusInto finds entities within radius and appends to dst (up to MaxQueryResults).
// Returns the updated slice. Reuse dst across calls to avoid allocations.
func (g *SpatialGrid) QueryRadiusInto(dst []Neighbor, x, y, radius float32, exclude ecs.Entity, posMap *ecs.Map[components.Position]) []Neighbor {
	return g.queryRadius(dst, x, y, radius, exclude, posMap, MaxQueryResults)
}

// QueryRadiusAllInto is QueryRadiusInto without the result cap. Use it when the
// caller needs every hit, e.g. to pick the nearest one.
func (g *SpatialGrid) QueryRadiusAllInto(dst []Neighbor, x, y, radius float32, exclude ecs.Entity, posMap *ecs.Map[components.Position]) []Neighbor {
	return g.queryRadius(dst, x, y, radius, exclude, posMap, 0)
}

// queryRadius appends hits within radius to dst, stopping at limit when limit > 0.
func (g *SpatialGrid) queryRadius(dst []Neighbor, x, y, radius float32, exclude ecs.Entity, posMap *ecs.Map[components.Position], limit int) []Neighbor {
	start := len(dst)
	cellRadius := int(radius/g.cellSize) + 1

	centerCol, centerRow := g.cellCoords(x, y)
	radiusSq := radius * radius

	for dr := -cellRadius; dr <= cellRadius; dr++ {
		row := centerRow + dr
		if row < 0 || row >= g.rows {
			continue
		}
		for dc := -cellRadius; dc <= cellRadius; dc++ {
			col := centerCol + dc
			if col < 0 || col >= g.cols {
				continue
			}

			for _, e := range g.cells[row*g.cols+col] {
				if e == exclude {
					continue
				}
				pos := posMap.Get(e)
				if pos == nil {
					continue
				}

				dx := pos.X - x
				dy := pos.Y - y
				distSq := dx*dx + dy*dy

				if distSq <= radiusSq {
					dst = append(dst, Neighbor{E: e, DX: dx, DY: dy, DistSq: distSq})
					if limit > 0 && len(dst)-start >= limit {
						return dst
					}
				}
			}
		}
	}

	return dst
}

// cellCoords returns the clamped column and row for a world position.
func (g *SpatialGrid) cellCoords(x, y float32) (int, int) {
	col := int((x - g.minX) / g.cellSize)
	row := int((y - g.minY) / g.cellSize)

	if col < 0 {
		col = 0
	} else if col >= g.cols {
		col = g.cols - 1
	}
	if row < 0 {
		row = 0
	} else if row >= g.rows {
		row = g.rows - 1
	}

	return col, row
}

// cellIndex returns the flat index for a world position.
func (g *SpatialGrid) cellIndex(x, y float32) int {
	col, row := g.cellCoords(x, y)
	return row*g.cols + col
}
