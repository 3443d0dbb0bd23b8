// Copyright 2020 YourBase Inc.
// SPDX-License-Identifier: BSD-3-Clause

package ini

import (
	"fmt"
	"os"
)

// ReadFile parses the file at the given path as INI. The file is closed before
// ReadFile returns. If the file does not exist, the returned error satisfies
// errors.Is(err, os.ErrNotExist).
func ReadFile(path string, opts *ParseOptions) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("read ini file: %w", err)
	}
	parsed, err := Parse(f, opts)
	f.Close() // Close errors irrelevant.
	if err != nil {
		return nil, fmt.Errorf("read ini file: %s: %w", path, err)
	}
	return parsed, nil
}
