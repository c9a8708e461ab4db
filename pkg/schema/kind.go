package schema

//go:generate go run github.com/dmarkham/enumer -type Kind -trimprefix Kind -transform lower -output kind.gen.go

// Kind is the structural type of an entity field.
type Kind int

const (
	KindText Kind = iota
	KindInteger
	KindNumber
	KindBoolean
	KindTimestamp
	KindObject
	KindArray
)
