// Package config parses the raptodb server CLI flags and an optional JSONC
// configuration file, per spec.md §6.
package config

import "errors"

// Sentinel errors.
var (
	// ErrNameRequired indicates --name was not supplied.
	ErrNameRequired = errors.New("config: --name is required")

	// ErrCapacityUndefined indicates --db-size was omitted and no existing
	// storage file could supply a capacity.
	ErrCapacityUndefined = errors.New("config: capacity undefined")
)
