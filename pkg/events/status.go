package events

//go:generate go run github.com/dmarkham/enumer -type Status -trimprefix Status -transform lower -json -output status.gen.go

// Status records whether the logged operation completed or failed.
type Status int

const (
	StatusCompleted Status = iota
	StatusFailed
)
