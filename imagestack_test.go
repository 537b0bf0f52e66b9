package voldata

import (
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeGraySlice(t *testing.T, path string, w, h int, fill func(x, y int) uint8) {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Pix[y*img.Stride+x] = fill(x, y)
		}
	}
	file, err := os.Create(path)
	require.NoError(t, err)
	defer file.Close()
	require.NoError(t, png.Encode(file, img))
}

func TestLoadImageStack(t *testing.T) {
	dir := t.TempDir()
	p0 := filepath.Join(dir, "slice_000.png")
	p1 := filepath.Join(dir, "slice_001.png")
	writeGraySlice(t, p0, 4, 3, func(x, y int) uint8 { return uint8(x * 10) })
	writeGraySlice(t, p1, 4, 3, func(x, y int) uint8 { return uint8(y * 20) })

	g, err := LoadImageStack([]string{p0, p1}, DefaultImageStackOptions())
	require.NoError(t, err)

	assert.Equal(t, [3]int{4, 3, 2}, g.IndexExtent())
	// 8-bit gray v maps to the 16-bit sample v*257
	assert.Equal(t, float32(3*10*257), g.Lookup(3, 0, 0))
	assert.Equal(t, float32(2*20*257), g.Lookup(0, 2, 1))
	assert.Equal(t, float32(0), g.Lookup(0, 0, 0))

	lo, hi := g.MinorantMajorant()
	assert.Equal(t, float32(0), lo)
	assert.Equal(t, float32(40*257), hi)

	// out of extent
	assert.Equal(t, float32(0), g.Lookup(4, 0, 0))
	assert.Equal(t, float32(0), g.Lookup(0, 0, 2))

	assert.Equal(t, 4*3*2, g.NumVoxels())
	assert.Equal(t, 2*4*3*2, g.SizeBytes())
}

func TestLoadImageStackRescale(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "s.png")
	writeGraySlice(t, path, 2, 2, func(x, y int) uint8 { return 100 })

	opts := ImageStackOptions{RescaleSlope: 0.5, RescaleIntercept: -1000}
	g, err := LoadImageStack([]string{path}, opts)
	require.NoError(t, err)

	want := 0.5*float32(100*257) - 1000
	assert.Equal(t, want, g.Lookup(0, 0, 0))
	lo, hi := g.MinorantMajorant()
	assert.Equal(t, want, lo)
	assert.Equal(t, want, hi)
}

func TestLoadImageStackMismatchedSlices(t *testing.T) {
	dir := t.TempDir()
	p0 := filepath.Join(dir, "a.png")
	p1 := filepath.Join(dir, "b.png")
	writeGraySlice(t, p0, 4, 4, func(x, y int) uint8 { return 1 })
	writeGraySlice(t, p1, 3, 4, func(x, y int) uint8 { return 1 })

	_, err := LoadImageStack([]string{p0, p1}, DefaultImageStackOptions())
	assert.Error(t, err)
}

func TestLoadImageStackDir(t *testing.T) {
	dir := t.TempDir()
	writeGraySlice(t, filepath.Join(dir, "02.png"), 2, 2, func(x, y int) uint8 { return 20 })
	writeGraySlice(t, filepath.Join(dir, "01.png"), 2, 2, func(x, y int) uint8 { return 10 })
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))

	g, err := LoadImageStackDir(dir, DefaultImageStackOptions())
	require.NoError(t, err)
	assert.Equal(t, [3]int{2, 2, 2}, g.IndexExtent())
	// slices ordered by filename
	assert.Equal(t, float32(10*257), g.Lookup(0, 0, 0))
	assert.Equal(t, float32(20*257), g.Lookup(0, 0, 1))
}

func TestLoadImageStackEmpty(t *testing.T) {
	_, err := LoadImageStack(nil, DefaultImageStackOptions())
	assert.Error(t, err)
	_, err = LoadImageStackDir(t.TempDir(), DefaultImageStackOptions())
	assert.Error(t, err)
}
