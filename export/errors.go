package export

import "errors"

var (
	// ErrUnknownCodec is returned for an unrecognized codec.
	ErrUnknownCodec = errors.New("export: unknown codec")
	// ErrBadMagic is returned when a stream is not a result file.
	ErrBadMagic = errors.New("export: not a result file")
	// ErrUnsupportedVersion is returned for result files of a newer version.
	ErrUnsupportedVersion = errors.New("export: unsupported file version")
	// ErrCorrupt is returned when a result file cannot be decoded.
	ErrCorrupt = errors.New("export: corrupt result file")
	// ErrClosed is returned when writing to a closed Writer.
	ErrClosed = errors.New("export: writer closed")
	// ErrNegativeComponent is returned when a component id is negative.
	ErrNegativeComponent = errors.New("export: negative component id")
	// ErrSizeMismatch is returned when a set does not cover the id map.
	ErrSizeMismatch = errors.New("export: set size does not match node count")
	// ErrNilIDMap is returned when an exporter is created without an id map.
	ErrNilIDMap = errors.New("export: nil id map")
)
