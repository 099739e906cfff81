package systems

import "math"

// Clamp functions for common value ranges

// clampFloat clamps a float32 value between min and max.
func clampFloat(v, minVal, maxVal float32) float32 {
	if v < minVal {
		return minVal
	}
	if v > maxVal {
		return maxVal
	}
	return v
}

// clampToBounds clamps both coordinates to [-bound, bound].
func clampToBounds(x, y, bound float32) (float32, float32) {
	return clampFloat(x, -bound, bound), clampFloat(y, -bound, bound)
}

// Distance functions

// distanceSq returns the squared distance between two points.
func distanceSq(x1, y1, x2, y2 float32) float32 {
	dx := x1 - x2
	dy := y1 - y2
	return dx*dx + dy*dy
}

// distance returns the Euclidean distance between two points.
func distance(x1, y1, x2, y2 float32) float32 {
	return float32(math.Sqrt(float64(distanceSq(x1, y1, x2, y2))))
}

// normalize returns the unit vector of (x, y), or ok=false for a near-zero vector.
func normalize(x, y float32) (nx, ny float32, ok bool) {
	lenSq := x*x + y*y
	if lenSq <= epsilon {
		return 0, 0, false
	}
	inv := 1 / float32(math.Sqrt(float64(lenSq)))
	return x * inv, y * inv, true
}

// epsilon is the smallest squared length treated as a direction.
const epsilon = 1.1920929e-7

// RandomInBounds samples a point uniformly in [-bound, bound] on both axes.
func RandomInBounds(rng RNG, bound float32) (float32, float32) {
	return (rng.Float32()*2 - 1) * bound, (rng.Float32()*2 - 1) * bound
}

// RNG is the interface for random number generation.
type RNG interface {
	Float32() float32
}
