package geo

// Storage is the scalar representation of an attribute's components.
type Storage int

const (
	StorageFloat Storage = iota
	StorageInt
	StorageString
)

func (s Storage) String() string {
	switch s {
	case StorageFloat:
		return "float"
	case StorageInt:
		return "int"
	case StorageString:
		return "string"
	default:
		return "unknown"
	}
}

// TypeInfo describes how an attribute's value should be interpreted under
// transformation.
type TypeInfo int

const (
	TypeNone TypeInfo = iota
	TypePoint
	TypeHPoint
	TypeNormal
	TypeVector
	TypeColor
	TypeTexCoord
)

func (t TypeInfo) String() string {
	switch t {
	case TypeNone:
		return "none"
	case TypePoint:
		return "point"
	case TypeHPoint:
		return "hpoint"
	case TypeNormal:
		return "normal"
	case TypeVector:
		return "vector"
	case TypeColor:
		return "color"
	case TypeTexCoord:
		return "texturecoord"
	default:
		return "unknown"
	}
}

// Transforms reports whether values of this type change under a spatial
// transform.
func (t TypeInfo) Transforms() bool {
	switch t {
	case TypePoint, TypeHPoint, TypeNormal, TypeVector:
		return true
	}
	return false
}

// Attribute is a named per-element value array.
type Attribute interface {
	Name() string
	Owner() Owner
	Storage() Storage
	TupleSize() int
	TypeInfo() TypeInfo

	// NeedsTransform is true for float attributes whose type info
	// transforms (positions, normals, vectors).
	NeedsTransform() bool

	// DataID changes whenever the attribute is bumped, letting consumers
	// detect modified data.
	DataID() int64
	BumpDataID()
}

// IsVector3 reports whether a can be read with Detail.Vector3.
func IsVector3(a Attribute) bool {
	return a != nil && a.Storage() == StorageFloat && a.TupleSize() >= 3
}
