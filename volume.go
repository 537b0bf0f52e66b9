package voldata

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// DefaultGridName is the grid slot a volume renders by default.
const DefaultGridName = "density"

// GridFrame groups the named grids of one animation frame.
type GridFrame map[string]Grid

// Volume is the multi-frame façade over the grid representations: a sequence
// of frames, each holding named grids, plus the render parameters shared by
// all of them. The model matrix composes with each grid's own transform.
type Volume struct {
	ID            uuid.UUID
	Model         mgl32.Mat4
	Albedo        mgl32.Vec3
	Phase         float32
	DensityScale  float32
	EmissionScale float32

	frame  int
	frames []GridFrame
}

func NewVolume() *Volume {
	return &Volume{
		ID:            uuid.New(),
		Model:         mgl32.Ident4(),
		Albedo:        mgl32.Vec3{1, 1, 1},
		Phase:         0,
		DensityScale:  1,
		EmissionScale: 1,
	}
}

// NewVolumeFromFile loads path into the default grid slot of frame 0.
func NewVolumeFromFile(path string) (*Volume, error) {
	v := NewVolume()
	if err := v.LoadGrid(path, DefaultGridName); err != nil {
		return nil, err
	}
	return v, nil
}

// Clear drops all frames and resets the frame cursor.
func (v *Volume) Clear() {
	v.frames = nil
	v.frame = 0
}

// NumFrames returns the number of grid frames.
func (v *Volume) NumFrames() int {
	return len(v.frames)
}

// SetFrame selects the current frame, clamped to the valid range.
func (v *Volume) SetFrame(i int) {
	if i < 0 {
		i = 0
	}
	if n := len(v.frames); n > 0 && i >= n {
		i = n - 1
	}
	v.frame = i
}

// Frame returns the current frame index.
func (v *Volume) Frame() int {
	return v.frame
}

// UpdateGridFrame stores a named grid in frame i, growing the frame sequence
// as needed.
func (v *Volume) UpdateGridFrame(i int, name string, g Grid) {
	for len(v.frames) <= i {
		v.frames = append(v.frames, GridFrame{})
	}
	v.frames[i][name] = g
}

// AddGridFrame appends a frame holding a single named grid.
func (v *Volume) AddGridFrame(name string, g Grid) {
	v.frames = append(v.frames, GridFrame{name: g})
}

// HasGrid reports whether frame i holds a grid under name.
func (v *Volume) HasGrid(i int, name string) bool {
	if i < 0 || i >= len(v.frames) {
		return false
	}
	_, ok := v.frames[i][name]
	return ok
}

// CurrentGridFrame returns the selected frame, or nil if the volume is empty.
func (v *Volume) CurrentGridFrame() GridFrame {
	if v.frame >= len(v.frames) {
		return nil
	}
	return v.frames[v.frame]
}

// CurrentGrid returns the named grid of the current frame.
func (v *Volume) CurrentGrid(name string) (Grid, error) {
	frame := v.CurrentGridFrame()
	if frame == nil {
		return nil, errors.New("volume: no frames loaded")
	}
	g, ok := frame[name]
	if !ok {
		return nil, errors.Errorf("volume: no grid named %q in frame %d", name, v.frame)
	}
	return g, nil
}

// CurrentGridDense returns the current grid as a dense grid, converting when
// necessary.
func (v *Volume) CurrentGridDense(name string) (*DenseGrid, error) {
	g, err := v.CurrentGrid(name)
	if err != nil {
		return nil, err
	}
	return ToDenseGrid(g), nil
}

// CurrentGridBrick returns the current grid as a brick grid, converting when
// necessary.
func (v *Volume) CurrentGridBrick(name string) (*BrickGrid, error) {
	g, err := v.CurrentGrid(name)
	if err != nil {
		return nil, err
	}
	return ToBrickGrid(g)
}

// LoadGrid loads a grid file into the named slot of a new frame, resolving
// the representation from the path: .dense and .brick archives, a single
// image slice, or a directory of image slices.
func (v *Volume) LoadGrid(path string, name string) error {
	g, err := LoadGridFile(path)
	if err != nil {
		return err
	}
	v.AddGridFrame(name, g)
	return nil
}

// LoadGridFile resolves a load path by extension.
func LoadGridFile(path string) (Grid, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, errors.Wrapf(err, "load %s", path)
	}
	if info.IsDir() {
		return LoadImageStackDir(path, DefaultImageStackOptions())
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".dense":
		return LoadDenseGrid(path)
	case ".brick":
		return LoadBrickGrid(path)
	case ".png", ".jpg", ".jpeg", ".tif", ".tiff", ".bmp":
		return LoadImageStack([]string{path}, DefaultImageStackOptions())
	default:
		return nil, errors.Errorf("load %s: unsupported extension", path)
	}
}

// ToWorld maps an index-space position of the named current grid to world
// space through the grid transform and the volume's model matrix.
func (v *Volume) ToWorld(p mgl32.Vec3, name string) (mgl32.Vec3, error) {
	g, err := v.CurrentGrid(name)
	if err != nil {
		return mgl32.Vec3{}, err
	}
	m := v.Model.Mul4(g.Transform())
	return mgl32.TransformCoordinate(p, m), nil
}

// ToIndex maps a world-space position back to index space of the named
// current grid by inverting the composed transform.
func (v *Volume) ToIndex(p mgl32.Vec3, name string) (mgl32.Vec3, error) {
	g, err := v.CurrentGrid(name)
	if err != nil {
		return mgl32.Vec3{}, err
	}
	m := v.Model.Mul4(g.Transform()).Inv()
	return mgl32.TransformCoordinate(p, m), nil
}

// WorldAABB returns the world-space bounding box of the named current grid
// under the composed transform.
func (v *Volume) WorldAABB(name string) (mgl32.Vec3, mgl32.Vec3, error) {
	g, err := v.CurrentGrid(name)
	if err != nil {
		return mgl32.Vec3{}, mgl32.Vec3{}, err
	}
	composed := composedGrid{Grid: g, model: v.Model}
	lo, hi := WorldAABB(&composed)
	return lo, hi, nil
}

// composedGrid overlays the volume model matrix on a grid's transform.
type composedGrid struct {
	Grid
	model mgl32.Mat4
}

func (c *composedGrid) Transform() mgl32.Mat4 {
	return c.model.Mul4(c.Grid.Transform())
}

// MinorantMajorant returns the extrema of the named current grid.
func (v *Volume) MinorantMajorant(name string) (float32, float32, error) {
	g, err := v.CurrentGrid(name)
	if err != nil {
		return 0, 0, err
	}
	lo, hi := g.MinorantMajorant()
	return lo, hi, nil
}

func (v *Volume) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "volume %s: %d frames (current %d)\n", v.ID, len(v.frames), v.frame)
	fmt.Fprintf(&b, "albedo: %v, phase: %g, density scale: %g, emission scale: %g",
		v.Albedo, v.Phase, v.DensityScale, v.EmissionScale)
	if frame := v.CurrentGridFrame(); frame != nil {
		for name, g := range frame {
			fmt.Fprintf(&b, "\ngrid %q:\n%s", name, GridString(g))
		}
	}
	return b.String()
}
