package repl

import "errors"

// Sentinel errors.
var (
	ErrOutOfBounds  = errors.New("index out of range")
	ErrEditDeclined = errors.New("decline edit")
	ErrNoManifest   = errors.New("no manifest file configured")
	ErrNoEngine     = errors.New("no engine loader")
)
