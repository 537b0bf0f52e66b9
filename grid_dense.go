package voldata

import "math"

// DenseGrid stores one byte per voxel, quantized over a single global
// (minValue, maxValue) range. It is immutable once constructed.
type DenseGrid struct {
	gridBase
	shape    [3]int
	minValue float32
	maxValue float32
	data     *Vol3[uint8]
}

// NewDenseGrid quantizes an arbitrary source grid to 8 bit per voxel over the
// source's global extrema.
func NewDenseGrid(src Grid) *DenseGrid {
	shape := src.IndexExtent()
	lo, hi := src.MinorantMajorant()
	g := &DenseGrid{
		gridBase: newGridBase(),
		shape:    shape,
		minValue: lo,
		maxValue: hi,
		data:     NewVol3[uint8](shape[0], shape[1], shape[2]),
	}
	g.SetTransform(src.Transform())
	nx, ny := shape[0], shape[1]
	forEachSlice(shape[2], func(z int) {
		for y := 0; y < ny; y++ {
			for x := 0; x < nx; x++ {
				g.data.Data[z*nx*ny+y*nx+x] = EncodeVoxel(src.Lookup(x, y, z), lo, hi)
			}
		}
	})
	return g
}

// NewDenseGridFromBytes copies a raw 8-bit slab in X-fastest order. The value
// range is fixed to (0, 1).
func NewDenseGridFromBytes(w, h, d int, data []uint8) *DenseGrid {
	g := &DenseGrid{
		gridBase: newGridBase(),
		shape:    [3]int{w, h, d},
		minValue: 0,
		maxValue: 1,
		data:     NewVol3[uint8](w, h, d),
	}
	forEachSlice(d, func(z int) {
		copy(g.data.Data[z*w*h:(z+1)*w*h], data[z*w*h:(z+1)*w*h])
	})
	return g
}

// NewDenseGridFromFloats quantizes a raw float slab in X-fastest order over
// its global extrema. A constant slab quantizes to all zeros.
func NewDenseGridFromFloats(w, h, d int, data []float32) *DenseGrid {
	g := &DenseGrid{
		gridBase: newGridBase(),
		shape:    [3]int{w, h, d},
		minValue: float32(math.Inf(1)),
		maxValue: float32(math.Inf(-1)),
		data:     NewVol3[uint8](w, h, d),
	}
	// per-slice extrema, reduced sequentially
	minima := make([]float32, d)
	maxima := make([]float32, d)
	forEachSlice(d, func(z int) {
		lo, hi := float32(math.Inf(1)), float32(math.Inf(-1))
		for _, v := range data[z*w*h : (z+1)*w*h] {
			if v < lo {
				lo = v
			}
			if v > hi {
				hi = v
			}
		}
		minima[z], maxima[z] = lo, hi
	})
	for z := 0; z < d; z++ {
		if minima[z] < g.minValue {
			g.minValue = minima[z]
		}
		if maxima[z] > g.maxValue {
			g.maxValue = maxima[z]
		}
	}
	lo, hi := g.minValue, g.maxValue
	forEachSlice(d, func(z int) {
		for i := z * w * h; i < (z+1)*w*h; i++ {
			g.data.Data[i] = EncodeVoxel(data[i], lo, hi)
		}
	})
	return g
}

func (g *DenseGrid) Lookup(x, y, z int) float32 {
	if uint(x) >= uint(g.shape[0]) || uint(y) >= uint(g.shape[1]) || uint(z) >= uint(g.shape[2]) {
		return 0
	}
	raw := g.data.At(x, y, z)
	return g.minValue + (float32(raw)/255.0)*(g.maxValue-g.minValue)
}

func (g *DenseGrid) MinorantMajorant() (float32, float32) {
	return g.minValue, g.maxValue
}

func (g *DenseGrid) IndexExtent() [3]int {
	return g.shape
}

func (g *DenseGrid) NumVoxels() int {
	return g.shape[0] * g.shape[1] * g.shape[2]
}

func (g *DenseGrid) SizeBytes() int {
	return g.data.Len()
}
