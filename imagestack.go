package voldata

import (
	"image"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"sort"

	"github.com/pkg/errors"

	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
)

// ImageStackGrid is a scalar field sourced from a stack of equally sized
// image slices, one slice per Z. Samples are kept as raw 16-bit gray values;
// a rescale slope and intercept map them to physical units at lookup, the way
// CT stacks carry rescale parameters.
type ImageStackGrid struct {
	gridBase
	shape     [3]int
	slope     float32
	intercept float32
	minMaj    [2]float32
	data      *Vol3[uint16]
}

// ImageStackOptions configures the raw-to-physical mapping of a stack.
type ImageStackOptions struct {
	RescaleSlope     float32
	RescaleIntercept float32
}

// DefaultImageStackOptions uses the identity mapping.
func DefaultImageStackOptions() ImageStackOptions {
	return ImageStackOptions{RescaleSlope: 1, RescaleIntercept: 0}
}

// LoadImageStack decodes the given slice files (PNG, JPEG, TIFF or BMP) into
// a grid. All slices must share the same dimensions; slice order is the order
// of paths.
func LoadImageStack(paths []string, opts ImageStackOptions) (*ImageStackGrid, error) {
	if len(paths) == 0 {
		return nil, errors.New("image stack: no slices")
	}
	g := &ImageStackGrid{
		gridBase:  newGridBase(),
		slope:     opts.RescaleSlope,
		intercept: opts.RescaleIntercept,
		minMaj:    [2]float32{float32(math.Inf(1)), float32(math.Inf(-1))},
	}
	for z, path := range paths {
		img, err := decodeImage(path)
		if err != nil {
			return nil, errors.Wrapf(err, "image stack slice %d", z)
		}
		bounds := img.Bounds()
		w, h := bounds.Dx(), bounds.Dy()
		if z == 0 {
			g.shape = [3]int{w, h, len(paths)}
			g.data = NewVol3[uint16](w, h, len(paths))
		} else if w != g.shape[0] || h != g.shape[1] {
			return nil, errors.Errorf("image stack slice %d: %dx%d differs from %dx%d",
				z, w, h, g.shape[0], g.shape[1])
		}
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				gray := color.Gray16Model.Convert(img.At(bounds.Min.X+x, bounds.Min.Y+y)).(color.Gray16)
				g.data.Set(x, y, z, gray.Y)
				v := g.rescale(gray.Y)
				if v < g.minMaj[0] {
					g.minMaj[0] = v
				}
				if v > g.minMaj[1] {
					g.minMaj[1] = v
				}
			}
		}
	}
	logger.Debugf("image stack: %d slices, extent %v, range [%g, %g]",
		len(paths), g.shape, g.minMaj[0], g.minMaj[1])
	return g, nil
}

// LoadImageStackDir loads every decodable image in a directory as one stack,
// slices ordered by filename.
func LoadImageStackDir(dir string, opts ImageStackOptions) (*ImageStackGrid, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "image stack dir %s", dir)
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch filepath.Ext(e.Name()) {
		case ".png", ".jpg", ".jpeg", ".tif", ".tiff", ".bmp":
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(paths)
	if len(paths) == 0 {
		return nil, errors.Errorf("image stack dir %s: no image slices", dir)
	}
	return LoadImageStack(paths, opts)
}

func decodeImage(path string) (image.Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	img, _, err := image.Decode(file)
	return img, err
}

func (g *ImageStackGrid) rescale(raw uint16) float32 {
	return g.slope*float32(raw) + g.intercept
}

func (g *ImageStackGrid) Lookup(x, y, z int) float32 {
	if uint(x) >= uint(g.shape[0]) || uint(y) >= uint(g.shape[1]) || uint(z) >= uint(g.shape[2]) {
		return 0
	}
	return g.rescale(g.data.At(x, y, z))
}

func (g *ImageStackGrid) MinorantMajorant() (float32, float32) {
	return g.minMaj[0], g.minMaj[1]
}

func (g *ImageStackGrid) IndexExtent() [3]int {
	return g.shape
}

func (g *ImageStackGrid) NumVoxels() int {
	return g.shape[0] * g.shape[1] * g.shape[2]
}

func (g *ImageStackGrid) SizeBytes() int {
	return 2 * g.data.Len()
}
