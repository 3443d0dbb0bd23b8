// Copyright 2020 YourBase Inc.
// SPDX-License-Identifier: BSD-3-Clause

package configstore

import (
	"errors"
	"fmt"
)

// Error kinds returned by a Store. Use errors.Is to test for them.
var (
	// ErrInvalidArgument indicates a required argument was missing.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrLoadFailed indicates an existing configuration file could not be read.
	ErrLoadFailed = errors.New("load failed")

	// ErrSaveFailed indicates the configuration could not be written.
	ErrSaveFailed = errors.New("save failed")
)

// LoadError is returned by Open when an existing file cannot be read or
// parsed. It matches ErrLoadFailed.
type LoadError struct {
	// Path is the file that failed to load.
	Path string
	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *LoadError) Error() string {
	return fmt.Sprintf("load config %s: %v", e.Path, e.Err)
}

// Unwrap returns the underlying error.
func (e *LoadError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrLoadFailed.
func (e *LoadError) Is(target error) bool {
	return target == ErrLoadFailed
}

// SaveError is returned by Store.Save for any failure while writing the file.
// It matches ErrSaveFailed.
type SaveError struct {
	// Path is the file that failed to save.
	Path string
	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *SaveError) Error() string {
	return fmt.Sprintf("save config %s: %v", e.Path, e.Err)
}

// Unwrap returns the underlying error.
func (e *SaveError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrSaveFailed.
func (e *SaveError) Is(target error) bool {
	return target == ErrSaveFailed
}
