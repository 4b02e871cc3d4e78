package detail

import (
	"math"

	"github.com/jonassorgenfrei/HoudiniHDKTools/pkg/geo"
)

// Compile-time interface check.
var _ geo.Attribute = (*Attribute)(nil)

// Attribute stores one value tuple per element slot. Slots of destroyed
// elements keep their last value; offsets are never reused.
type Attribute struct {
	name     string
	owner    geo.Owner
	storage  geo.Storage
	tuple    int
	typeInfo geo.TypeInfo
	dataID   int64

	floats  []float64
	ints    []int64
	strings []string
	size    int // element slots allocated
}

func newAttribute(owner geo.Owner, name string, storage geo.Storage, tuple int, ti geo.TypeInfo) *Attribute {
	if storage == geo.StorageString {
		tuple = 1
	}
	if tuple < 1 {
		tuple = 1
	}
	return &Attribute{
		name:     name,
		owner:    owner,
		storage:  storage,
		tuple:    tuple,
		typeInfo: ti,
	}
}

func (a *Attribute) Name() string           { return a.name }
func (a *Attribute) Owner() geo.Owner       { return a.owner }
func (a *Attribute) Storage() geo.Storage   { return a.storage }
func (a *Attribute) TupleSize() int         { return a.tuple }
func (a *Attribute) TypeInfo() geo.TypeInfo { return a.typeInfo }
func (a *Attribute) DataID() int64          { return a.dataID }
func (a *Attribute) BumpDataID()            { a.dataID++ }

// NeedsTransform is true for float attributes whose type info transforms.
func (a *Attribute) NeedsTransform() bool {
	return a.storage == geo.StorageFloat && a.typeInfo.Transforms()
}

// grow ensures the attribute has at least n element slots.
func (a *Attribute) grow(n int) {
	if n <= a.size {
		return
	}
	switch a.storage {
	case geo.StorageFloat:
		a.floats = append(a.floats, make([]float64, (n-a.size)*a.tuple)...)
	case geo.StorageInt:
		a.ints = append(a.ints, make([]int64, (n-a.size)*a.tuple)...)
	case geo.StorageString:
		a.strings = append(a.strings, make([]string, n-a.size)...)
	}
	a.size = n
}

// Float returns component i of the value at off.
func (a *Attribute) Float(off geo.Offset, i int) float64 {
	switch a.storage {
	case geo.StorageFloat:
		return a.floats[int(off)*a.tuple+i]
	case geo.StorageInt:
		return float64(a.ints[int(off)*a.tuple+i])
	}
	return 0
}

// SetFloat sets component i of the value at off.
func (a *Attribute) SetFloat(off geo.Offset, i int, v float64) {
	switch a.storage {
	case geo.StorageFloat:
		a.floats[int(off)*a.tuple+i] = v
	case geo.StorageInt:
		a.ints[int(off)*a.tuple+i] = int64(math.Round(v))
	}
}

// Int returns component i of the value at off.
func (a *Attribute) Int(off geo.Offset, i int) int64 {
	switch a.storage {
	case geo.StorageInt:
		return a.ints[int(off)*a.tuple+i]
	case geo.StorageFloat:
		return int64(a.floats[int(off)*a.tuple+i])
	}
	return 0
}

// SetInt sets component i of the value at off.
func (a *Attribute) SetInt(off geo.Offset, i int, v int64) {
	switch a.storage {
	case geo.StorageInt:
		a.ints[int(off)*a.tuple+i] = v
	case geo.StorageFloat:
		a.floats[int(off)*a.tuple+i] = float64(v)
	}
}

// String returns the value at off of a string attribute.
func (a *Attribute) String(off geo.Offset) string {
	if a.storage != geo.StorageString {
		return ""
	}
	return a.strings[off]
}

// SetString sets the value at off of a string attribute.
func (a *Attribute) SetString(off geo.Offset, s string) {
	if a.storage == geo.StorageString {
		a.strings[off] = s
	}
}

// copyValue copies the tuple at src to dst.
func (a *Attribute) copyValue(dst, src geo.Offset) {
	d, s := int(dst)*a.tuple, int(src)*a.tuple
	switch a.storage {
	case geo.StorageFloat:
		copy(a.floats[d:d+a.tuple], a.floats[s:s+a.tuple])
	case geo.StorageInt:
		copy(a.ints[d:d+a.tuple], a.ints[s:s+a.tuple])
	case geo.StorageString:
		a.strings[dst] = a.strings[src]
	}
}

// lerpValue writes the interpolation of src0 and src1 at t into dst.
// Integers round to the nearest value; strings take the nearer source.
func (a *Attribute) lerpValue(dst, src0, src1 geo.Offset, t float64) {
	d, s0, s1 := int(dst)*a.tuple, int(src0)*a.tuple, int(src1)*a.tuple
	switch a.storage {
	case geo.StorageFloat:
		for i := 0; i < a.tuple; i++ {
			v0, v1 := a.floats[s0+i], a.floats[s1+i]
			a.floats[d+i] = v0 + (v1-v0)*t
		}
	case geo.StorageInt:
		for i := 0; i < a.tuple; i++ {
			v0, v1 := float64(a.ints[s0+i]), float64(a.ints[s1+i])
			a.ints[d+i] = int64(math.Round(v0 + (v1-v0)*t))
		}
	case geo.StorageString:
		if t < 0.5 {
			a.strings[dst] = a.strings[src0]
		} else {
			a.strings[dst] = a.strings[src1]
		}
	}
}

// clone returns a deep copy.
func (a *Attribute) clone() *Attribute {
	c := *a
	c.floats = append([]float64(nil), a.floats...)
	c.ints = append([]int64(nil), a.ints...)
	c.strings = append([]string(nil), a.strings...)
	return &c
}
