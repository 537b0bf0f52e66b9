package voldata

import (
	"encoding/binary"
	"io"
	"os"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/golang/snappy"
	"github.com/pkg/errors"
)

// Grid archives: a snappy-framed little-endian binary layout of shape plus
// flat payload per buffer. Extensions .dense and .brick by convention.

const (
	archiveMagic   = 0x564F4C44 // "VOLD"
	archiveVersion = 1

	archiveTagDense = uint8(1)
	archiveTagBrick = uint8(2)
)

func writeHeader(w io.Writer, tag uint8) error {
	if err := binary.Write(w, binary.LittleEndian, uint32(archiveMagic)); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint16(archiveVersion)); err != nil {
		return err
	}
	return binary.Write(w, binary.LittleEndian, tag)
}

func readHeader(r io.Reader) (uint8, error) {
	var magic uint32
	if err := binary.Read(r, binary.LittleEndian, &magic); err != nil {
		return 0, err
	}
	if magic != archiveMagic {
		return 0, errors.Errorf("bad archive magic 0x%08X", magic)
	}
	var version uint16
	if err := binary.Read(r, binary.LittleEndian, &version); err != nil {
		return 0, err
	}
	if version != archiveVersion {
		return 0, errors.Errorf("unsupported archive version %d", version)
	}
	var tag uint8
	err := binary.Read(r, binary.LittleEndian, &tag)
	return tag, err
}

func writeTransform(w io.Writer, m mgl32.Mat4) error {
	return binary.Write(w, binary.LittleEndian, [16]float32(m))
}

func readTransform(r io.Reader) (mgl32.Mat4, error) {
	var vals [16]float32
	err := binary.Read(r, binary.LittleEndian, &vals)
	return mgl32.Mat4(vals), err
}

func writeStride(w io.Writer, stride [3]int) error {
	return binary.Write(w, binary.LittleEndian, [3]int64{int64(stride[0]), int64(stride[1]), int64(stride[2])})
}

func readStride(r io.Reader) ([3]int, error) {
	var s [3]int64
	err := binary.Read(r, binary.LittleEndian, &s)
	return [3]int{int(s[0]), int(s[1]), int(s[2])}, err
}

func writeVol3U32(w io.Writer, v *Vol3[uint32]) error {
	if err := writeStride(w, v.Stride); err != nil {
		return err
	}
	return binary.Write(w, binary.LittleEndian, v.Data)
}

func readVol3U32(r io.Reader) (*Vol3[uint32], error) {
	stride, err := readStride(r)
	if err != nil {
		return nil, err
	}
	v := NewVol3[uint32](stride[0], stride[1], stride[2])
	return v, binary.Read(r, binary.LittleEndian, v.Data)
}

func writeVol3U8(w io.Writer, v *Vol3[uint8]) error {
	if err := writeStride(w, v.Stride); err != nil {
		return err
	}
	_, err := w.Write(v.Data)
	return err
}

func readVol3U8(r io.Reader) (*Vol3[uint8], error) {
	stride, err := readStride(r)
	if err != nil {
		return nil, err
	}
	v := NewVol3[uint8](stride[0], stride[1], stride[2])
	return v, errors.WithStack(readFull(r, v.Data))
}

func readFull(r io.Reader, buf []uint8) error {
	_, err := io.ReadFull(r, buf)
	return err
}

// WriteGrid archives a dense or brick grid to path. Other representations
// must be converted first.
func WriteGrid(g Grid, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "write grid %s", path)
	}
	defer file.Close()
	w := snappy.NewBufferedWriter(file)

	switch grid := g.(type) {
	case *DenseGrid:
		err = writeDense(w, grid)
	case *BrickGrid:
		err = writeBrick(w, grid)
	default:
		err = errors.Errorf("unsupported grid type %T", g)
	}
	if err != nil {
		return errors.Wrapf(err, "write grid %s", path)
	}
	if err := w.Close(); err != nil {
		return errors.Wrapf(err, "write grid %s", path)
	}
	return file.Close()
}

func writeDense(w io.Writer, g *DenseGrid) error {
	if err := writeHeader(w, archiveTagDense); err != nil {
		return err
	}
	if err := writeTransform(w, g.Transform()); err != nil {
		return err
	}
	if err := writeStride(w, g.shape); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, [2]float32{g.minValue, g.maxValue}); err != nil {
		return err
	}
	return writeVol3U8(w, g.data)
}

func writeBrick(w io.Writer, g *BrickGrid) error {
	if err := writeHeader(w, archiveTagBrick); err != nil {
		return err
	}
	if err := writeTransform(w, g.Transform()); err != nil {
		return err
	}
	if err := writeStride(w, g.nBricks); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, g.minMaj); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(g.BrickCount())); err != nil {
		return err
	}
	if err := writeVol3U32(w, g.Indirection); err != nil {
		return err
	}
	if err := writeVol3U32(w, g.Range); err != nil {
		return err
	}
	if err := writeVol3U8(w, g.Atlas); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(len(g.RangeMipmaps))); err != nil {
		return err
	}
	for _, mip := range g.RangeMipmaps {
		if err := writeVol3U32(w, mip); err != nil {
			return err
		}
	}
	return nil
}

// LoadDenseGrid reads a .dense archive.
func LoadDenseGrid(path string) (*DenseGrid, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "load dense grid %s", path)
	}
	defer file.Close()
	r := snappy.NewReader(file)

	tag, err := readHeader(r)
	if err != nil {
		return nil, errors.Wrapf(err, "load dense grid %s", path)
	}
	if tag != archiveTagDense {
		return nil, errors.Errorf("load dense grid %s: archive holds tag %d", path, tag)
	}
	g, err := readDense(r)
	if err != nil {
		return nil, errors.Wrapf(err, "load dense grid %s", path)
	}
	return g, nil
}

func readDense(r io.Reader) (*DenseGrid, error) {
	transform, err := readTransform(r)
	if err != nil {
		return nil, err
	}
	shape, err := readStride(r)
	if err != nil {
		return nil, err
	}
	var minMax [2]float32
	if err := binary.Read(r, binary.LittleEndian, &minMax); err != nil {
		return nil, err
	}
	data, err := readVol3U8(r)
	if err != nil {
		return nil, err
	}
	g := &DenseGrid{
		gridBase: newGridBase(),
		shape:    shape,
		minValue: minMax[0],
		maxValue: minMax[1],
		data:     data,
	}
	g.SetTransform(transform)
	return g, nil
}

// LoadBrickGrid reads a .brick archive.
func LoadBrickGrid(path string) (*BrickGrid, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "load brick grid %s", path)
	}
	defer file.Close()
	r := snappy.NewReader(file)

	tag, err := readHeader(r)
	if err != nil {
		return nil, errors.Wrapf(err, "load brick grid %s", path)
	}
	if tag != archiveTagBrick {
		return nil, errors.Errorf("load brick grid %s: archive holds tag %d", path, tag)
	}
	g, err := readBrick(r)
	if err != nil {
		return nil, errors.Wrapf(err, "load brick grid %s", path)
	}
	return g, nil
}

func readBrick(r io.Reader) (*BrickGrid, error) {
	transform, err := readTransform(r)
	if err != nil {
		return nil, err
	}
	nBricks, err := readStride(r)
	if err != nil {
		return nil, err
	}
	g := &BrickGrid{gridBase: newGridBase(), nBricks: nBricks}
	g.SetTransform(transform)
	if err := binary.Read(r, binary.LittleEndian, &g.minMaj); err != nil {
		return nil, err
	}
	var count uint32
	if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
		return nil, err
	}
	g.brickCounter.Store(count)
	if g.Indirection, err = readVol3U32(r); err != nil {
		return nil, err
	}
	if g.Range, err = readVol3U32(r); err != nil {
		return nil, err
	}
	if g.Atlas, err = readVol3U8(r); err != nil {
		return nil, err
	}
	var mips uint32
	if err := binary.Read(r, binary.LittleEndian, &mips); err != nil {
		return nil, err
	}
	g.RangeMipmaps = make([]*Vol3[uint32], mips)
	for i := range g.RangeMipmaps {
		if g.RangeMipmaps[i], err = readVol3U32(r); err != nil {
			return nil, err
		}
	}
	return g, nil
}

// LoadGrid reads an archive of either representation, dispatching on its tag.
func LoadGrid(path string) (Grid, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "load grid %s", path)
	}
	defer file.Close()
	r := snappy.NewReader(file)

	tag, err := readHeader(r)
	if err != nil {
		return nil, errors.Wrapf(err, "load grid %s", path)
	}
	var g Grid
	switch tag {
	case archiveTagDense:
		g, err = readDense(r)
	case archiveTagBrick:
		g, err = readBrick(r)
	default:
		err = errors.Errorf("unknown archive tag %d", tag)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "load grid %s", path)
	}
	logger.Debugf("loaded %s (%d bytes in memory)", path, g.SizeBytes())
	return g, nil
}
