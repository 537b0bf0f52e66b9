package voldata

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Grid is the capability set every volumetric representation satisfies.
// Lookups are read-only and safe for concurrent use. The dense grid returns 0
// for coordinates outside its index extent; the brick grid performs no bounds
// check, so its callers clamp or mask coordinates to the extent. The
// index-space origin is always (0,0,0).
type Grid interface {
	// Lookup returns the scalar value at an integer index-space coordinate.
	Lookup(x, y, z int) float32
	// MinorantMajorant returns the global (min, max) over all addressable
	// voxels.
	MinorantMajorant() (float32, float32)
	// IndexExtent returns the inclusive size of the addressable index-space
	// box.
	IndexExtent() [3]int
	// NumVoxels returns the number of active voxels.
	NumVoxels() int
	// SizeBytes returns the in-memory payload footprint.
	SizeBytes() int
	// Transform returns the index-to-world affine transform.
	Transform() mgl32.Mat4
}

// gridBase carries the index-to-world transform shared by all concrete grids.
type gridBase struct {
	transform mgl32.Mat4
}

func newGridBase() gridBase {
	return gridBase{transform: mgl32.Ident4()}
}

func (g *gridBase) Transform() mgl32.Mat4 {
	return g.transform
}

func (g *gridBase) SetTransform(m mgl32.Mat4) {
	g.transform = m
}

// WorldAABB returns the world-space bounding box of a grid's index extent
// under its transform.
func WorldAABB(g Grid) (mgl32.Vec3, mgl32.Vec3) {
	ext := g.IndexExtent()
	m := g.Transform()
	lo := mgl32.Vec3{float32(math.Inf(1)), float32(math.Inf(1)), float32(math.Inf(1))}
	hi := mgl32.Vec3{float32(math.Inf(-1)), float32(math.Inf(-1)), float32(math.Inf(-1))}
	for i := 0; i < 8; i++ {
		corner := mgl32.Vec3{
			float32(ext[0] * (i & 1)),
			float32(ext[1] * ((i >> 1) & 1)),
			float32(ext[2] * ((i >> 2) & 1)),
		}
		w := mgl32.TransformCoordinate(corner, m)
		for c := 0; c < 3; c++ {
			if w[c] < lo[c] {
				lo[c] = w[c]
			}
			if w[c] > hi[c] {
				hi[c] = w[c]
			}
		}
	}
	return lo, hi
}

// GridString renders a human-readable summary of any grid.
func GridString(g Grid) string {
	ext := g.IndexExtent()
	lo, hi := g.MinorantMajorant()
	active := g.NumVoxels()
	dense := ext[0] * ext[1] * ext[2]
	occupancy := 0.0
	if dense > 0 {
		occupancy = math.Round(100 * float64(active) / float64(dense))
	}
	return fmt.Sprintf(
		"AABB (index-space): [0, 0, 0] / %v\nminorant: %g, majorant: %g\nactive voxels: %dk / %dk (%d%%)\nmemory: %.1f MB",
		ext, lo, hi, active/1000, dense/1000, int(occupancy), float64(g.SizeBytes())/1e6)
}

func ceilDiv(num, denom int) int {
	return (num + denom - 1) / denom
}
