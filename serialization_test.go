package voldata

import (
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDenseGridArchiveRoundTrip(t *testing.T) {
	data := make([]float32, 8*8*8)
	for i := range data {
		data[i] = float32(i%31) * 0.125
	}
	g := NewDenseGridFromFloats(8, 8, 8, data)
	g.SetTransform(mgl32.Translate3D(1, 2, 3))

	path := filepath.Join(t.TempDir(), "field.dense")
	require.NoError(t, WriteGrid(g, path))

	loaded, err := LoadDenseGrid(path)
	require.NoError(t, err)

	assert.Equal(t, g.IndexExtent(), loaded.IndexExtent())
	assert.Equal(t, g.Transform(), loaded.Transform())
	glo, ghi := g.MinorantMajorant()
	llo, lhi := loaded.MinorantMajorant()
	assert.Equal(t, glo, llo)
	assert.Equal(t, ghi, lhi)
	// payload is already quantized, the round trip is bit exact
	for z := 0; z < 8; z++ {
		for y := 0; y < 8; y++ {
			for x := 0; x < 8; x++ {
				require.Equal(t, g.Lookup(x, y, z), loaded.Lookup(x, y, z))
			}
		}
	}
}

func TestBrickGridArchiveRoundTrip(t *testing.T) {
	src := NewSphereGrid([3]int{24, 24, 24}, mgl32.Vec3{12, 12, 12}, 8, 1, 2)
	g, err := NewBrickGrid(src)
	require.NoError(t, err)
	g.SetTransform(mgl32.Scale3D(0.5, 0.5, 0.5))

	path := filepath.Join(t.TempDir(), "field.brick")
	require.NoError(t, WriteGrid(g, path))

	loaded, err := LoadBrickGrid(path)
	require.NoError(t, err)

	assert.Equal(t, g.NBricks(), loaded.NBricks())
	assert.Equal(t, g.BrickCount(), loaded.BrickCount())
	assert.Equal(t, g.Transform(), loaded.Transform())
	assert.Equal(t, g.SizeBytes(), loaded.SizeBytes())
	require.Len(t, loaded.RangeMipmaps, NumMipmaps)
	ext := src.IndexExtent()
	for z := 0; z < ext[2]; z++ {
		for y := 0; y < ext[1]; y++ {
			for x := 0; x < ext[0]; x++ {
				require.Equal(t, g.Lookup(x, y, z), loaded.Lookup(x, y, z))
			}
		}
	}
}

func TestLoadGridDispatch(t *testing.T) {
	dir := t.TempDir()
	dense := NewDenseGridFromBytes(4, 4, 4, make([]uint8, 64))
	densePath := filepath.Join(dir, "a.dense")
	require.NoError(t, WriteGrid(dense, densePath))

	brick, err := NewBrickGrid(NewBoxGrid([3]int{8, 8, 8}, [3]int{2, 2, 2}, [3]int{6, 6, 6}, 1))
	require.NoError(t, err)
	brickPath := filepath.Join(dir, "b.brick")
	require.NoError(t, WriteGrid(brick, brickPath))

	g, err := LoadGrid(densePath)
	require.NoError(t, err)
	_, ok := g.(*DenseGrid)
	assert.True(t, ok)

	g, err = LoadGrid(brickPath)
	require.NoError(t, err)
	_, ok = g.(*BrickGrid)
	assert.True(t, ok)

	// tag mismatch is rejected
	_, err = LoadDenseGrid(brickPath)
	assert.Error(t, err)
	_, err = LoadBrickGrid(densePath)
	assert.Error(t, err)
}

func TestWriteGridUnsupportedType(t *testing.T) {
	src := NewConstantGrid([3]int{4, 4, 4}, 1)
	err := WriteGrid(src, filepath.Join(t.TempDir(), "c.dense"))
	assert.Error(t, err)
}
