// Copyright 2020 YourBase Inc.
// SPDX-License-Identifier: BSD-3-Clause

/*
Package ini provides a lenient parser and serializer for the INI file format.
See https://en.wikipedia.org/wiki/INI_file.

This package is designed for load-modify-save scenarios where the values
matter and the layout does not: comments and blank lines are discarded on
read, and serialization writes a canonical form.

Syntax

An INI file is Unicode text encoded in UTF-8. A leading byte-order mark is
ignored.

An INI file consists of zero or more properties. A property is a key and
value written on a single line, separated by the first equals sign ('='):

	key=value

Whitespace around the key and around the value is ignored. Values are taken
verbatim: there is no quoting, no escaping and no line continuation. A key
may be empty (a line like "=value"); such properties are kept in memory but
are not written back out.

Properties may be grouped into sections. A section is started by writing its
name in square brackets ('[' and ']') on its own line and ends at the next
section name or the end of file:

	[section]
	key1=value1
	key2=value2

Properties encountered before a section name are permitted. They are considered
part of the global section, identified by the empty string (""). The global
section always exists, even when it holds no properties.

If the first non-whitespace character in a line is a semicolon (';') or a
hash ('#'), then the line is treated as a comment. Inline comments are not
supported. Any other line that is neither a section name nor a property is
skipped; Parse never fails because of a single malformed line.

Names

Section names and property keys are case-insensitive. The spelling seen first
is kept and used when the file is serialized.

Repeated names

When a key appears more than once in the same section, the last value wins.
Multiple sections may have the same name. These are treated as if their
properties were presented contiguously in the first section with that name.

Time bounds

Each line is matched with a pattern engine that enforces a per-match timeout
(see DefaultMatchTimeout and ParseOptions.MatchTimeout). A timeout aborts
Parse with an error.
*/
package ini
