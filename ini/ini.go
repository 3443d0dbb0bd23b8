// Copyright 2020 YourBase Inc.
// SPDX-License-Identifier: BSD-3-Clause

package ini

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dlclark/regexp2"
)

// A File is an ordered collection of sections. The zero value is an empty file
// containing only the global section.
//
// Files are not safe for concurrent mutation. Read-only methods may be called
// from multiple goroutines as long as no goroutine modifies the file.
type File struct {
	sections []*section          // sections[0] is the global section
	byName   map[string]*section // keyed by fold(name)
}

type section struct {
	name  string
	keys  []string // folded keys in insertion order
	props map[string]*property
}

type property struct {
	key   string
	value string
}

func newSection(name string) *section {
	return &section{
		name:  name,
		props: make(map[string]*property),
	}
}

// fold returns the lookup form of a section name or key.
func fold(s string) string {
	return strings.ToLower(s)
}

// DefaultMatchTimeout is the time allowed for matching a single line when
// ParseOptions.MatchTimeout is zero.
const DefaultMatchTimeout = 1 * time.Second

const (
	sectionPattern  = `^\s*\[(.+)\]\s*$`
	propertyPattern = `^([^=]*)=(.*)$`
)

// defaultPatterns is shared by concurrent Parse calls. regexp2 match methods
// are safe for concurrent use.
var defaultPatterns = newPatterns(DefaultMatchTimeout)

type patterns struct {
	section  *regexp2.Regexp
	property *regexp2.Regexp
}

func newPatterns(timeout time.Duration) *patterns {
	return compilePatterns(sectionPattern, propertyPattern, timeout)
}

func compilePatterns(section, property string, timeout time.Duration) *patterns {
	p := &patterns{
		section:  regexp2.MustCompile(section, regexp2.None),
		property: regexp2.MustCompile(property, regexp2.None),
	}
	p.section.MatchTimeout = timeout
	p.property.MatchTimeout = timeout
	return p
}

// ParseOptions holds optional parameters for Parse.
type ParseOptions struct {
	// MatchTimeout bounds the time spent matching any single line.
	// If zero, DefaultMatchTimeout is used.
	MatchTimeout time.Duration

	// Skipped is called for each line that is neither blank, a comment,
	// a section name, nor a property. lineno is 1-based.
	// If nil, malformed lines are skipped silently.
	Skipped func(lineno int, line string)
}

func (opts *ParseOptions) patterns() *patterns {
	if opts == nil || opts.MatchTimeout <= 0 || opts.MatchTimeout == DefaultMatchTimeout {
		return defaultPatterns
	}
	return newPatterns(opts.MatchTimeout)
}

func (opts *ParseOptions) skipped(lineno int, line string) {
	if opts != nil && opts.Skipped != nil {
		opts.Skipped(lineno, line)
	}
}

const byteOrderMark = "\ufeff"

// ErrMatchTimeout is wrapped by the error Parse returns when matching a line
// takes longer than the configured match timeout.
var ErrMatchTimeout = errors.New("line match timed out")

// Parse parses an INI file. Nil options are treated identically as passing the
// zero value.
//
// See the Syntax section in the package documentation for the format recognized
// by Parse. Lines may be of any length. Parse only returns an error if reading
// from r fails or a line exceeds the match timeout.
func Parse(r io.Reader, opts *ParseOptions) (*File, error) {
	return parse(r, opts, opts.patterns())
}

func parse(r io.Reader, opts *ParseOptions, pats *patterns) (*File, error) {
	br := bufio.NewReader(r)
	f := new(File)
	f.init()
	curr := f.sections[0]
	for lineno := 1; ; lineno++ {
		line, err := br.ReadString('\n')
		if err == io.EOF && line == "" {
			break
		}
		if err != nil && err != io.EOF {
			return f, fmt.Errorf("parse ini file: line %d: %w", lineno, err)
		}
		line = strings.TrimSuffix(line, "\n")
		line = strings.TrimSuffix(line, "\r")
		if lineno == 1 {
			line = strings.TrimPrefix(line, byteOrderMark)
		}
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || trimmed[0] == ';' || trimmed[0] == '#' {
			continue
		}

		m, err := pats.section.FindStringMatch(line)
		if err != nil {
			return f, fmt.Errorf("parse ini file: line %d: %w: %v", lineno, ErrMatchTimeout, err)
		}
		if m != nil {
			name := strings.TrimSpace(m.GroupByNumber(1).String())
			if name == "" {
				opts.skipped(lineno, line)
				continue
			}
			curr = f.ensureSection(name)
			continue
		}

		m, err = pats.property.FindStringMatch(line)
		if err != nil {
			return f, fmt.Errorf("parse ini file: line %d: %w: %v", lineno, ErrMatchTimeout, err)
		}
		if m == nil {
			opts.skipped(lineno, line)
			continue
		}
		key := strings.TrimSpace(m.GroupByNumber(1).String())
		value := strings.TrimSpace(m.GroupByNumber(2).String())
		curr.set(key, value)
	}
	return f, nil
}

func (f *File) init() {
	if f.byName != nil {
		return
	}
	global := newSection("")
	f.sections = []*section{global}
	f.byName = map[string]*section{"": global}
}

func (f *File) section(name string) *section {
	if f == nil {
		return nil
	}
	return f.byName[fold(name)]
}

// ensureSection returns the section with the given name, appending a new one
// to the end of the file if necessary.
func (f *File) ensureSection(name string) *section {
	f.init()
	k := fold(name)
	if s := f.byName[k]; s != nil {
		return s
	}
	s := newSection(name)
	f.sections = append(f.sections, s)
	f.byName[k] = s
	return s
}

func (s *section) get(key string) (_ string, ok bool) {
	if s == nil {
		return "", false
	}
	p := s.props[fold(key)]
	if p == nil {
		return "", false
	}
	return p.value, true
}

func (s *section) set(key, value string) {
	k := fold(key)
	if p := s.props[k]; p != nil {
		p.value = value
		return
	}
	s.keys = append(s.keys, k)
	s.props[k] = &property{key: key, value: value}
}

func (s *section) delete(key string) bool {
	k := fold(key)
	if s.props[k] == nil {
		return false
	}
	delete(s.props, k)
	for i, sk := range s.keys {
		if sk == k {
			s.keys = append(s.keys[:i], s.keys[i+1:]...)
			break
		}
	}
	return true
}

func (s *section) clear() {
	s.keys = nil
	s.props = make(map[string]*property)
}

// Get returns the value associated with the given key in the given section.
// Passing an empty section name searches for properties outside any section.
// If there is no such property, Get returns the empty string.
func (f *File) Get(section, key string) string {
	v, _ := f.Lookup(section, key)
	return v
}

// Lookup returns the value associated with the given key in the given section
// and reports whether the property exists.
func (f *File) Lookup(section, key string) (_ string, ok bool) {
	return f.section(section).get(key)
}

// Set sets the property to the given value, overwriting any previous value.
// If the section name is empty, the property is set outside any section.
// If there is no section with the given name, one is appended to the end of
// the file. Existing section names and keys keep their original spelling.
func (f *File) Set(sectionName, key, value string) {
	f.ensureSection(sectionName).set(key, value)
}

// Delete deletes the property with the given key in the given section.
// It reports whether a property was removed.
func (f *File) Delete(sectionName, key string) bool {
	s := f.section(sectionName)
	if s == nil {
		return false
	}
	return s.delete(key)
}

// DeleteSection removes the named section and all of its properties, reporting
// whether the section existed. The global section cannot be removed:
// DeleteSection("") deletes all of its properties and reports true.
func (f *File) DeleteSection(name string) bool {
	if f == nil {
		return false
	}
	if name == "" {
		f.init()
		f.sections[0].clear()
		return true
	}
	k := fold(name)
	if f.byName[k] == nil {
		return false
	}
	delete(f.byName, k)
	for i, s := range f.sections {
		if fold(s.name) == k {
			copy(f.sections[i:], f.sections[i+1:])
			// Zero out truncated element for garbage collection.
			f.sections[len(f.sections)-1] = nil
			f.sections = f.sections[:len(f.sections)-1]
			break
		}
	}
	return true
}

// HasSection reports whether a section with the given name exists. The global
// section always exists in a non-nil File.
func (f *File) HasSection(name string) bool {
	if f == nil {
		return false
	}
	if name == "" {
		return true
	}
	return f.section(name) != nil
}

// HasKey reports whether the given section has a property with the given key.
func (f *File) HasKey(section, key string) bool {
	_, ok := f.Lookup(section, key)
	return ok
}

// Len returns the number of properties in the named section.
func (f *File) Len(section string) int {
	s := f.section(section)
	if s == nil {
		return 0
	}
	return len(s.keys)
}

// Sections returns the names of the sections in the file in order, using the
// first spelling seen for each. The global section ("") is always first.
func (f *File) Sections() []string {
	if f == nil {
		return nil
	}
	if len(f.sections) == 0 {
		return []string{""}
	}
	names := make([]string, 0, len(f.sections))
	for _, s := range f.sections {
		names = append(names, s.name)
	}
	return names
}

// Section returns a copy of the properties in the named section, keyed by
// their original spelling. Section("") returns the global section: the
// properties set outside any section. The result is never nil, and modifying
// it does not affect f.
func (f *File) Section(name string) Section {
	s := f.section(name)
	if s == nil {
		return make(Section)
	}
	result := make(Section, len(s.keys))
	for _, k := range s.keys {
		p := s.props[k]
		result[p.key] = p.value
	}
	return result
}

// MarshalText serializes the file in INI format. The global section's
// properties come first, followed by each named section in order. Every named
// section is followed by a blank line. Properties with an empty key are
// omitted. Values are written verbatim.
func (f *File) MarshalText() ([]byte, error) {
	if f == nil || len(f.sections) == 0 {
		return nil, nil
	}
	buf, n := appendProperties(nil, f.sections[0])
	if n > 0 && len(f.sections) > 1 {
		buf = append(buf, '\n')
	}
	for _, s := range f.sections[1:] {
		buf = append(buf, '[')
		buf = append(buf, s.name...)
		buf = append(buf, "]\n"...)
		buf, _ = appendProperties(buf, s)
		buf = append(buf, '\n')
	}
	return buf, nil
}

// appendProperties appends the key=value lines of s to dst and returns the
// extended buffer along with the number of lines written.
func appendProperties(dst []byte, s *section) ([]byte, int) {
	n := 0
	for _, k := range s.keys {
		p := s.props[k]
		if p.key == "" {
			continue
		}
		dst = append(dst, p.key...)
		dst = append(dst, '=')
		dst = append(dst, p.value...)
		dst = append(dst, '\n')
		n++
	}
	return dst, n
}

// WriteTo writes the serialized form of f to w. It implements io.WriterTo.
func (f *File) WriteTo(w io.Writer) (int64, error) {
	text, err := f.MarshalText()
	if err != nil {
		return 0, err
	}
	n, err := w.Write(text)
	return int64(n), err
}

// UnmarshalText parses the INI data with default options, replacing any
// properties or sections in f.
func (f *File) UnmarshalText(data []byte) error {
	parsed, err := Parse(strings.NewReader(string(data)), nil)
	if err != nil {
		return err
	}
	*f = *parsed
	return nil
}

// A Section is a snapshot of a section's properties, mapping keys to values.
type Section map[string]string

// Get returns the value associated with the given key, comparing keys without
// regard to case. If there is no such key, Get returns the empty string.
func (sect Section) Get(key string) string {
	if v, ok := sect[key]; ok {
		return v
	}
	for k, v := range sect {
		if strings.EqualFold(k, key) {
			return v
		}
	}
	return ""
}
