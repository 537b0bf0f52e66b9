package voldata

import (
	"fmt"
	"math"
	"sync/atomic"
)

const (
	// BrickSize is the edge length of one brick; must stay a power of two so
	// lookups can shift and mask.
	BrickSize   = 8
	bitsPerAxis = 10
	// MaxBricks bounds the brick-grid shape per axis, set by the pointer
	// encoding width.
	MaxBricks      = 1 << bitsPerAxis
	VoxelsPerBrick = BrickSize * BrickSize * BrickSize
	// NumMipmaps is the depth of the range pyramid; n_bricks is aligned to
	// 1<<NumMipmaps per axis so every level halves cleanly.
	NumMipmaps = 3
	// rangeDilation is the halo half-width used when estimating a brick's
	// local range, so trilinear footprints straddling brick borders stay
	// bounded.
	rangeDilation = 2
)

// CapacityError reports a source whose brick-grid shape would reach the
// pointer encoding limit.
type CapacityError struct {
	NBricks [3]int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("brick grid: %v exceeds max brick count of %d per axis", e.NBricks, MaxBricks)
}

// BrickGrid is a two-level sparse representation: a coarse indirection and
// range table over 8x8x8 bricks, with occupied bricks packed into a byte
// atlas and quantized over their local range. A pyramid of coarser range
// tables supports multi-scale empty-space queries. Built once, immutable
// after construction.
type BrickGrid struct {
	gridBase
	nBricks      [3]int
	minMaj       [2]float32
	brickCounter atomic.Uint32

	Indirection  *Vol3[uint32]
	Range        *Vol3[uint32]
	Atlas        *Vol3[uint8]
	RangeMipmaps []*Vol3[uint32]
}

// NewBrickGrid builds a brick grid from any source grid. The source is read
// exclusively through the Grid contract and must tolerate concurrent Lookup
// calls; the result holds no reference to it.
func NewBrickGrid(src Grid) (*BrickGrid, error) {
	ext := src.IndexExtent()
	var nBricks [3]int
	for c := 0; c < 3; c++ {
		align := 1 << NumMipmaps
		nBricks[c] = ceilDiv(ceilDiv(ext[c], BrickSize), align) * align
	}
	if nBricks[0] >= MaxBricks || nBricks[1] >= MaxBricks || nBricks[2] >= MaxBricks {
		return nil, &CapacityError{NBricks: nBricks}
	}

	lo, hi := src.MinorantMajorant()
	g := &BrickGrid{
		gridBase:    newGridBase(),
		nBricks:     nBricks,
		minMaj:      [2]float32{lo, hi},
		Indirection: NewVol3[uint32](nBricks[0], nBricks[1], nBricks[2]),
		Range:       NewVol3[uint32](nBricks[0], nBricks[1], nBricks[2]),
		Atlas:       NewVol3[uint8](nBricks[0]*BrickSize, nBricks[1]*BrickSize, nBricks[2]*BrickSize),
	}
	g.SetTransform(src.Transform())

	// fill bricks, parallel over Z-slices of the brick grid
	forEachSlice(nBricks[2], func(bz int) {
		for by := 0; by < nBricks[1]; by++ {
			for bx := 0; bx < nBricks[0]; bx++ {
				g.fillBrick(src, bx, by, bz)
			}
		}
	})

	// prune atlas storage to the allocated bricks
	count := int(g.brickCounter.Load())
	g.Atlas.Prune(BrickSize * ceilDiv(count, nBricks[0]*nBricks[1]))

	g.buildMipmaps()

	logger.Debugf("brick grid: %d/%d bricks occupied, atlas %v",
		count, nBricks[0]*nBricks[1]*nBricks[2], g.Atlas.Stride)
	return g, nil
}

func (g *BrickGrid) fillBrick(src Grid, bx, by, bz int) {
	g.Indirection.Set(bx, by, bz, 0)

	// local extrema over the dilated brick
	localMin := float32(math.Inf(1))
	localMax := float32(math.Inf(-1))
	for z := -rangeDilation; z < BrickSize+rangeDilation; z++ {
		for y := -rangeDilation; y < BrickSize+rangeDilation; y++ {
			for x := -rangeDilation; x < BrickSize+rangeDilation; x++ {
				v := src.Lookup(bx*BrickSize+x, by*BrickSize+y, bz*BrickSize+z)
				if v < localMin {
					localMin = v
				}
				if v > localMax {
					localMax = v
				}
			}
		}
	}
	g.Range.Set(bx, by, bz, EncodeRange(localMin, localMax))
	if localMax == localMin {
		return // empty brick, no atlas storage
	}

	// unique id ordering is all the counter provides; atlas placement is
	// scheduler-dependent and only ever reached through the indirection table
	id := int(g.brickCounter.Add(1)) - 1
	px, py, pz := g.Indirection.Unlinearize(id)
	g.Indirection.Set(bx, by, bz, EncodePtr(uint32(px), uint32(py), uint32(pz)))

	lo, hi := DecodeRange(g.Range.At(bx, by, bz))
	for z := 0; z < BrickSize; z++ {
		for y := 0; y < BrickSize; y++ {
			for x := 0; x < BrickSize; x++ {
				v := src.Lookup(bx*BrickSize+x, by*BrickSize+y, bz*BrickSize+z)
				g.Atlas.Set(px*BrickSize+x, py*BrickSize+y, pz*BrickSize+z, EncodeVoxel(v, lo, hi))
			}
		}
	}
}

func (g *BrickGrid) buildMipmaps() {
	g.RangeMipmaps = make([]*Vol3[uint32], NumMipmaps)
	for level := 0; level < NumMipmaps; level++ {
		size := [3]int{
			g.nBricks[0] >> (level + 1),
			g.nBricks[1] >> (level + 1),
			g.nBricks[2] >> (level + 1),
		}
		dst := NewVol3[uint32](size[0], size[1], size[2])
		src := g.Range
		if level > 0 {
			src = g.RangeMipmaps[level-1]
		}
		forEachSlice(size[2], func(bz int) {
			for by := 0; by < size[1]; by++ {
				for bx := 0; bx < size[0]; bx++ {
					lo := float32(math.Inf(1))
					hi := float32(math.Inf(-1))
					for z := 0; z < 2; z++ {
						for y := 0; y < 2; y++ {
							for x := 0; x < 2; x++ {
								clo, chi := DecodeRange(src.At(2*bx+x, 2*by+y, 2*bz+z))
								if clo < lo {
									lo = clo
								}
								if chi > hi {
									hi = chi
								}
							}
						}
					}
					dst.Set(bx, by, bz, EncodeRange(lo, hi))
				}
			}
		})
		g.RangeMipmaps[level] = dst
	}
}

// Lookup resolves an index-space coordinate through the indirection table.
// No bounds check is performed; callers clamp or mask as appropriate.
func (g *BrickGrid) Lookup(x, y, z int) float32 {
	bx, by, bz := x>>3, y>>3, z>>3
	lo, hi := DecodeRange(g.Range.At(bx, by, bz))
	if hi <= lo {
		return lo // empty brick, the atlas holds no storage for it
	}
	px, py, pz := DecodePtr(g.Indirection.At(bx, by, bz))
	raw := g.Atlas.At(int(px)<<3+x&7, int(py)<<3+y&7, int(pz)<<3+z&7)
	return DecodeVoxel(raw, lo, hi)
}

// MinorantMajorant returns the extrema of the source at construction time,
// not of the re-quantized data.
func (g *BrickGrid) MinorantMajorant() (float32, float32) {
	return g.minMaj[0], g.minMaj[1]
}

func (g *BrickGrid) IndexExtent() [3]int {
	return [3]int{g.nBricks[0] * BrickSize, g.nBricks[1] * BrickSize, g.nBricks[2] * BrickSize}
}

// NBricks returns the brick-grid shape.
func (g *BrickGrid) NBricks() [3]int {
	return g.nBricks
}

// BrickCount returns the number of occupied bricks in the atlas.
func (g *BrickGrid) BrickCount() int {
	return int(g.brickCounter.Load())
}

func (g *BrickGrid) NumVoxels() int {
	return g.BrickCount() * VoxelsPerBrick
}

func (g *BrickGrid) SizeBytes() int {
	size := 4*g.Indirection.Len() + 4*g.Range.Len() + g.Atlas.Len()
	for _, mip := range g.RangeMipmaps {
		size += 4 * mip.Len()
	}
	return size
}

func (g *BrickGrid) String() string {
	capacity := g.Atlas.Len() / VoxelsPerBrick
	pct := 0
	if capacity > 0 {
		pct = int(math.Round(100 * float64(g.BrickCount()) / float64(capacity)))
	}
	return fmt.Sprintf("%s\nbrick dim: %v\nbricks in atlas: %d / %d (%d%%)\natlas dim: %v",
		GridString(g), g.nBricks, g.BrickCount(), capacity, pct, g.Atlas.Stride)
}
