package mmap

import "errors"

// AccessPattern is a read-ahead hint passed to the kernel for a mapping.
type AccessPattern int

const (
	// AccessDefault leaves read-ahead at the kernel's default.
	AccessDefault AccessPattern = iota
	// AccessSequential suits edge files that are scanned front to back once.
	AccessSequential
	// AccessRandom suits arena pages that are probed by node offset.
	AccessRandom
)

var (
	ErrClosed      = errors.New("mmap: mapping is closed")
	ErrInvalidSize = errors.New("mmap: invalid size")
)
