// Copyright 2020 YourBase Inc.
// SPDX-License-Identifier: BSD-3-Clause

// Package configstore binds an INI document to a file on disk. A Store is
// loaded once by Open, read and modified in memory, and written back only
// when Save is called.
package configstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/yourbase/configstore/ini"
	"zombiezen.com/go/log"
)

// Default permissions used by Save.
const (
	DefaultFileMode os.FileMode = 0o644
	DefaultDirMode  os.FileMode = 0o755
)

// readFile is replaced in tests.
var readFile = ini.ReadFile

// Options holds optional parameters for Open.
type Options struct {
	// MatchTimeout bounds the time spent matching any single line while
	// loading. If zero, ini.DefaultMatchTimeout is used.
	MatchTimeout time.Duration

	// FileMode is the permission used when Save creates the file.
	// If zero, DefaultFileMode is used.
	FileMode os.FileMode

	// DirMode is the permission used when Save creates parent directories.
	// If zero, DefaultDirMode is used.
	DirMode os.FileMode
}

// A Store is an in-memory INI configuration associated with a file path.
// Section names and keys are case-insensitive; the empty section name refers
// to the global section, which always exists.
//
// A Store is not safe for concurrent use by multiple goroutines without
// external synchronization.
type Store struct {
	path     string
	file     *ini.File
	fileMode os.FileMode
	dirMode  os.FileMode
}

// Open loads the configuration at the given path. If the file does not exist,
// Open returns an empty store; the file is created on the first Save.
// Nil options are treated identically as passing the zero value.
//
// Open returns an error matching ErrInvalidArgument if path is empty, or a
// *LoadError if the file exists but cannot be read.
func Open(ctx context.Context, path string, opts *Options) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("open config: empty path: %w", ErrInvalidArgument)
	}
	s := &Store{
		path:     path,
		fileMode: DefaultFileMode,
		dirMode:  DefaultDirMode,
	}
	parseOpts := &ini.ParseOptions{
		Skipped: func(lineno int, line string) {
			log.Debugf(ctx, "%s:%d: skipping malformed line %q", path, lineno, line)
		},
	}
	if opts != nil {
		parseOpts.MatchTimeout = opts.MatchTimeout
		if opts.FileMode != 0 {
			s.fileMode = opts.FileMode
		}
		if opts.DirMode != 0 {
			s.dirMode = opts.DirMode
		}
	}

	f, err := readFile(path, parseOpts)
	if errors.Is(err, os.ErrNotExist) {
		log.Debugf(ctx, "Config %s does not exist; starting empty", path)
		s.file = new(ini.File)
		return s, nil
	}
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	s.file = f
	return s, nil
}

// Path returns the file path the store was opened with.
func (s *Store) Path() string {
	return s.path
}

// GetValue returns the value for key in section, or defaultValue if there is
// no such key.
func (s *Store) GetValue(section, key, defaultValue string) string {
	if v, ok := s.file.Lookup(section, key); ok {
		return v
	}
	return defaultValue
}

// SetValue sets key in section to value, creating the section if necessary.
func (s *Store) SetValue(section, key, value string) {
	s.file.Set(section, key, value)
}

// GetSection returns a copy of the keys and values in section. If the section
// does not exist, GetSection returns an empty map.
func (s *Store) GetSection(section string) ini.Section {
	return s.file.Section(section)
}

// Sections returns the section names in the store, global section first.
func (s *Store) Sections() []string {
	return s.file.Sections()
}

// HasSection reports whether section exists.
func (s *Store) HasSection(section string) bool {
	return s.file.HasSection(section)
}

// HasKey reports whether key exists in section.
func (s *Store) HasKey(section, key string) bool {
	return s.file.HasKey(section, key)
}

// DeleteKey removes key from section and reports whether it was present.
func (s *Store) DeleteKey(section, key string) bool {
	return s.file.Delete(section, key)
}

// DeleteSection removes section and reports whether it existed. The global
// section is never removed: DeleteSection("") clears its keys and reports true.
func (s *Store) DeleteSection(section string) bool {
	return s.file.DeleteSection(section)
}

// Save writes the store to its path, replacing any existing content and
// creating parent directories as needed. Any failure is reported as a
// *SaveError.
func (s *Store) Save(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &SaveError{Path: s.path, Err: fmt.Errorf("panic: %v", r)}
		}
	}()
	text, err := s.file.MarshalText()
	if err != nil {
		return &SaveError{Path: s.path, Err: err}
	}
	if err := os.MkdirAll(filepath.Dir(s.path), s.dirMode); err != nil {
		return &SaveError{Path: s.path, Err: err}
	}
	if err := os.WriteFile(s.path, text, s.fileMode); err != nil {
		return &SaveError{Path: s.path, Err: err}
	}
	log.Debugf(ctx, "Wrote config %s (%d bytes)", s.path, len(text))
	return nil
}
