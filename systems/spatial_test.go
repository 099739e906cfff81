package systems

import (
	"testing"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/missions/components"
)

func TestSpatialGrid_QueryRadius(t *testing.T) {
	w := ecs.NewWorld()
	mapper := ecs.NewMap[components.Position](w)
	grid := NewSpatialGrid(30, 30, 5)

	points := []components.Position{
		{X: 0, Y: 0},
		{X: 2, Y: 0},
		{X: -14.5, Y: -14.5}, // corner
		{X: 14.5, Y: 14.5},   // opposite corner
		{X: 0, Y: 9},
	}
	entities := make([]ecs.Entity, len(points))
	for i := range points {
		entities[i] = mapper.NewEntity(&points[i])
		grid.Insert(entities[i], points[i].X, points[i].Y)
	}

	tests := []struct {
		name   string
		x, y   float32
		radius float32
		want   int
	}{
		{"origin small", 0, 0, 3, 2},
		{"origin vision", 0, 0, 10, 3},
		{"corner only", -14, -14, 2, 1},
		{"no wraparound", -14, -14, 5, 1},
		{"everything", 0, 0, 30, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := grid.QueryRadiusInto(nil, tt.x, tt.y, tt.radius, ecs.Entity{}, mapper)
			if len(got) != tt.want {
				t.Errorf("got %d neighbors, want %d", len(got), tt.want)
			}
		})
	}
}

func TestSpatialGrid_ExcludeAndRemove(t *testing.T) {
	w := ecs.NewWorld()
	mapper := ecs.NewMap[components.Position](w)
	grid := NewSpatialGrid(30, 30, 5)

	a := mapper.NewEntity(&components.Position{X: 1, Y: 1})
	b := mapper.NewEntity(&components.Position{X: 2, Y: 1})
	grid.Insert(a, 1, 1)
	grid.Insert(b, 2, 1)

	got := grid.QueryRadiusInto(nil, 1, 1, 5, a, mapper)
	if len(got) != 1 || got[0].E != b {
		t.Errorf("exclude: got %v, want only b", got)
	}

	if !grid.Remove(a, 1, 1) {
		t.Error("Remove should find a")
	}
	if grid.Remove(a, 1, 1) {
		t.Error("second Remove should report not found")
	}
	if grid.Len() != 1 {
		t.Errorf("Len = %d, want 1", grid.Len())
	}
}

func TestSpatialGrid_QueryCap(t *testing.T) {
	w := ecs.NewWorld()
	mapper := ecs.NewMap[components.Position](w)
	grid := NewSpatialGrid(30, 30, 5)

	n := MaxQueryResults + 50
	for i := 0; i < n; i++ {
		pos := components.Position{X: float32(i%20) * 0.1, Y: float32(i/20) * 0.1}
		e := mapper.NewEntity(&pos)
		grid.Insert(e, pos.X, pos.Y)
	}

	if got := grid.QueryRadiusInto(nil, 0, 0, 10, ecs.Entity{}, mapper); len(got) != MaxQueryResults {
		t.Errorf("capped query returned %d, want %d", len(got), MaxQueryResults)
	}
	if got := grid.QueryRadiusAllInto(nil, 0, 0, 10, ecs.Entity{}, mapper); len(got) != n {
		t.Errorf("uncapped query returned %d, want %d", len(got), n)
	}
}
