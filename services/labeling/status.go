// Copyright (C) 2026 Tanager ML (oss@tanagerml.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package labeling

// LabelStatus is the single derived display status of a result.
//
// The wire shape allows a result to carry both tag assignments and special
// flags at once. The UI never branches on the raw booleans; it derives one
// status through DeriveStatus and branches on that.
type LabelStatus int

const (
	// StatusUnlabeled means the result carries no label information.
	StatusUnlabeled LabelStatus = iota

	// StatusTagged means at least one tag id is assigned (plural set or
	// legacy singular field).
	StatusTagged

	// StatusNegative means the result was marked as not containing any
	// target sound.
	StatusNegative

	// StatusUncertain means the user could not decide.
	StatusUncertain

	// StatusSkipped means the user deferred the result.
	StatusSkipped
)

// String returns the lowercase status name.
func (s LabelStatus) String() string {
	switch s {
	case StatusTagged:
		return "tagged"
	case StatusNegative:
		return "negative"
	case StatusUncertain:
		return "uncertain"
	case StatusSkipped:
		return "skipped"
	default:
		return "unlabeled"
	}
}

// DeriveStatus maps a result to exactly one display status.
//
// Priority: tagged > negative > uncertain > skipped > unlabeled. Tagged wins
// whenever any tag id is present, including through the legacy singular
// field. An empty tag set left behind by toggling every tag off counts as
// unlabeled. Total: every result maps to one of the five statuses.
func DeriveStatus(r Result) LabelStatus {
	if len(r.AssignedTagIDs) > 0 || r.AssignedTagID != nil {
		return StatusTagged
	}
	if r.Negative {
		return StatusNegative
	}
	if r.Uncertain {
		return StatusUncertain
	}
	if r.Skipped {
		return StatusSkipped
	}
	return StatusUnlabeled
}
