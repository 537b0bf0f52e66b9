package voldata

import "testing"

func TestVol3LinearIndexRoundTrip(t *testing.T) {
	shapes := [][3]int{{1, 1, 1}, {4, 4, 4}, {3, 5, 7}, {8, 2, 1}}
	for _, shape := range shapes {
		v := NewVol3[uint32](shape[0], shape[1], shape[2])
		if v.Len() != shape[0]*shape[1]*shape[2] {
			t.Fatalf("shape %v: len %d", shape, v.Len())
		}
		for z := 0; z < shape[2]; z++ {
			for y := 0; y < shape[1]; y++ {
				for x := 0; x < shape[0]; x++ {
					idx := v.LinearIndex(x, y, z)
					rx, ry, rz := v.Unlinearize(idx)
					if rx != x || ry != y || rz != z {
						t.Fatalf("shape %v: (%d,%d,%d) -> %d -> (%d,%d,%d)",
							shape, x, y, z, idx, rx, ry, rz)
					}
				}
			}
		}
	}
}

func TestVol3Layout(t *testing.T) {
	v := NewVol3[uint8](3, 4, 5)
	v.Set(2, 1, 3, 42)
	if v.Data[3*3*4+1*3+2] != 42 {
		t.Error("element (2,1,3) not at z*sx*sy + y*sx + x")
	}
	if v.At(2, 1, 3) != 42 {
		t.Error("read back mismatch")
	}
}

func TestVol3Resize(t *testing.T) {
	v := NewVol3[uint32](2, 2, 2)
	v.Set(1, 1, 1, 7)
	v.Resize(4, 3, 2)
	if v.Stride != [3]int{4, 3, 2} {
		t.Errorf("stride after resize: %v", v.Stride)
	}
	if len(v.Data) != 24 {
		t.Errorf("len after resize: %d", len(v.Data))
	}
}

func TestVol3Prune(t *testing.T) {
	v := NewVol3[uint8](4, 4, 4)
	for i := range v.Data {
		v.Data[i] = uint8(i)
	}
	v.Prune(2)
	if v.Stride != [3]int{4, 4, 2} {
		t.Errorf("stride after prune: %v", v.Stride)
	}
	if len(v.Data) != 32 {
		t.Fatalf("len after prune: %d", len(v.Data))
	}
	// elements keep their position
	if v.At(3, 3, 1) != 31 {
		t.Errorf("element moved during prune: %d", v.At(3, 3, 1))
	}

	v.Prune(0)
	if len(v.Data) != 0 {
		t.Errorf("prune to zero slices left %d elements", len(v.Data))
	}
}
