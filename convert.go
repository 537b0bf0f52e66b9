package voldata

import "github.com/pkg/errors"

// GridType tags the conversion targets the data layer can construct.
type GridType int

const (
	GridTypeDense GridType = iota
	GridTypeBrick
)

func (t GridType) String() string {
	switch t {
	case GridTypeDense:
		return "dense"
	case GridTypeBrick:
		return "brick"
	}
	return "unknown"
}

// ToDenseGrid returns the grid itself if it already is dense, otherwise a
// newly built dense image of it.
func ToDenseGrid(g Grid) *DenseGrid {
	if dense, ok := g.(*DenseGrid); ok {
		return dense
	}
	return NewDenseGrid(g)
}

// ToBrickGrid returns the grid itself if it already is a brick grid,
// otherwise a newly built brick image of it.
func ToBrickGrid(g Grid) (*BrickGrid, error) {
	if brick, ok := g.(*BrickGrid); ok {
		return brick, nil
	}
	return NewBrickGrid(g)
}

// Convert is the polymorphic entry point for constructing a target
// representation from any grid. Construction reads the source through the
// Grid contract only.
func Convert(g Grid, target GridType) (Grid, error) {
	switch target {
	case GridTypeDense:
		return ToDenseGrid(g), nil
	case GridTypeBrick:
		return ToBrickGrid(g)
	}
	return nil, errors.Errorf("convert: unknown grid type %d", target)
}
