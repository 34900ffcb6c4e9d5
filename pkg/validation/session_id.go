// Copyright (C) 2026 Tanager ML (oss@tanagerml.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package validation provides input validation for values that end up in
// URL paths or file names. Validating user-provided identifiers up front
// prevents path traversal and keeps malformed ids from reaching the server
// as confusing 404s.
package validation

import (
	"fmt"
	"regexp"
	"strings"
)

// sessionIDPattern matches valid session identifiers: lowercase
// alphanumerics with hyphen or underscore separators, 1-64 characters,
// starting with an alphanumeric.
var sessionIDPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_\-]{0,63}$`)

// ValidateSessionID validates a session identifier before it is
// interpolated into a request path.
//
// Valid ids:
//   - 1-64 characters
//   - lowercase letters a-z and digits 0-9
//   - hyphens and underscores as separators (not leading)
//
// Returns an error if the id is invalid.
func ValidateSessionID(id string) error {
	if id == "" {
		return fmt.Errorf("session id cannot be empty")
	}
	if !sessionIDPattern.MatchString(id) {
		return fmt.Errorf("invalid session id: %q (must be 1-64 lowercase alphanumeric chars, hyphens, or underscores)", id)
	}
	return nil
}

// SanitizeSessionID normalizes and validates a session identifier.
// Returns the lowercase id if valid, or an error if invalid.
func SanitizeSessionID(id string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(id))
	if err := ValidateSessionID(normalized); err != nil {
		return "", err
	}
	return normalized, nil
}
