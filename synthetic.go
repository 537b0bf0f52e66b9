package voldata

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Procedural scalar fields implementing the grid contract. Useful as test
// sources and for voltool generate.

// ConstantGrid is a uniform scalar field over a fixed extent. Its
// out-of-bounds policy returns the background value itself, so range
// estimation with a dilated halo never manufactures gradients at the border.
type ConstantGrid struct {
	gridBase
	extent [3]int
	value  float32
}

func NewConstantGrid(extent [3]int, value float32) *ConstantGrid {
	return &ConstantGrid{gridBase: newGridBase(), extent: extent, value: value}
}

func (g *ConstantGrid) Lookup(x, y, z int) float32 {
	return g.value
}

func (g *ConstantGrid) MinorantMajorant() (float32, float32) { return g.value, g.value }
func (g *ConstantGrid) IndexExtent() [3]int                  { return g.extent }
func (g *ConstantGrid) NumVoxels() int                       { return g.extent[0] * g.extent[1] * g.extent[2] }
func (g *ConstantGrid) SizeBytes() int                       { return 4 }

// SphereGrid is a solid sphere of constant density, optionally with a linear
// falloff shell around the surface.
type SphereGrid struct {
	gridBase
	extent  [3]int
	center  mgl32.Vec3
	radius  float32
	density float32
	falloff float32
}

func NewSphereGrid(extent [3]int, center mgl32.Vec3, radius, density, falloff float32) *SphereGrid {
	return &SphereGrid{
		gridBase: newGridBase(),
		extent:   extent,
		center:   center,
		radius:   radius,
		density:  density,
		falloff:  falloff,
	}
}

func (g *SphereGrid) Lookup(x, y, z int) float32 {
	if uint(x) >= uint(g.extent[0]) || uint(y) >= uint(g.extent[1]) || uint(z) >= uint(g.extent[2]) {
		return 0
	}
	p := mgl32.Vec3{float32(x) + 0.5, float32(y) + 0.5, float32(z) + 0.5}
	dist := p.Sub(g.center).Len()
	if dist <= g.radius {
		return g.density
	}
	if g.falloff > 0 && dist < g.radius+g.falloff {
		return g.density * (1 - (dist-g.radius)/g.falloff)
	}
	return 0
}

func (g *SphereGrid) MinorantMajorant() (float32, float32) {
	if g.density < 0 {
		return g.density, 0
	}
	return 0, g.density
}

func (g *SphereGrid) IndexExtent() [3]int { return g.extent }

func (g *SphereGrid) NumVoxels() int {
	r := float64(g.radius + g.falloff)
	n := int(math.Ceil(4.0 / 3.0 * math.Pi * r * r * r))
	dense := g.extent[0] * g.extent[1] * g.extent[2]
	if n > dense {
		return dense
	}
	return n
}

func (g *SphereGrid) SizeBytes() int { return 4 * 5 }

// BoxGrid is an axis-aligned box of constant density inside a larger empty
// extent.
type BoxGrid struct {
	gridBase
	extent  [3]int
	min     [3]int
	max     [3]int // exclusive
	density float32
}

func NewBoxGrid(extent, boxMin, boxMax [3]int, density float32) *BoxGrid {
	return &BoxGrid{gridBase: newGridBase(), extent: extent, min: boxMin, max: boxMax, density: density}
}

func (g *BoxGrid) Lookup(x, y, z int) float32 {
	if uint(x) >= uint(g.extent[0]) || uint(y) >= uint(g.extent[1]) || uint(z) >= uint(g.extent[2]) {
		return 0
	}
	if x >= g.min[0] && x < g.max[0] && y >= g.min[1] && y < g.max[1] && z >= g.min[2] && z < g.max[2] {
		return g.density
	}
	return 0
}

func (g *BoxGrid) MinorantMajorant() (float32, float32) {
	if g.density < 0 {
		return g.density, 0
	}
	return 0, g.density
}

func (g *BoxGrid) IndexExtent() [3]int { return g.extent }

func (g *BoxGrid) NumVoxels() int {
	return (g.max[0] - g.min[0]) * (g.max[1] - g.min[1]) * (g.max[2] - g.min[2])
}

func (g *BoxGrid) SizeBytes() int { return 4 * 8 }
