// Copyright (C) 2026 Tanager ML (oss@tanagerml.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package labeling

import (
	"fmt"
	"sort"
)

// ActionKind discriminates the four label instruction shapes.
type ActionKind int

const (
	// ActionTags replaces the result's assigned tag set.
	ActionTags ActionKind = iota

	// ActionNegative marks the result as containing no target sound.
	ActionNegative

	// ActionUncertain marks the result as undecidable.
	ActionUncertain

	// ActionSkipped defers the result.
	ActionSkipped
)

// String returns the kind name used in logs and metrics labels.
func (k ActionKind) String() string {
	switch k {
	case ActionTags:
		return "tags"
	case ActionNegative:
		return "negative"
	case ActionUncertain:
		return "uncertain"
	case ActionSkipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// LabelAction is one label instruction sent to the server: exactly one of a
// tag-set replacement or a single special status. The type is opaque so an
// action can only be built through the constructors below, which makes a
// multi-flag action unrepresentable.
type LabelAction struct {
	kind   ActionKind
	tagIDs []int64
}

// TagAction builds a tag-set replacement. The set is copied and sorted so
// actions compare and serialize deterministically. An empty set is valid: it
// is how toggling the last tag off is expressed.
func TagAction(tagIDs []int64) LabelAction {
	ids := make([]int64, len(tagIDs))
	copy(ids, tagIDs)
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return LabelAction{kind: ActionTags, tagIDs: ids}
}

// NegativeAction builds the is_negative instruction.
func NegativeAction() LabelAction { return LabelAction{kind: ActionNegative} }

// UncertainAction builds the is_uncertain instruction.
func UncertainAction() LabelAction { return LabelAction{kind: ActionUncertain} }

// SkipAction builds the is_skipped instruction.
func SkipAction() LabelAction { return LabelAction{kind: ActionSkipped} }

// Kind returns the action's discriminator.
func (a LabelAction) Kind() ActionKind { return a.kind }

// TagIDs returns a copy of the tag set for an ActionTags action, nil
// otherwise.
func (a LabelAction) TagIDs() []int64 {
	if a.kind != ActionTags {
		return nil
	}
	out := make([]int64, len(a.tagIDs))
	copy(out, a.tagIDs)
	return out
}

// IsStatus reports whether the action is one of the three special statuses.
// Only status actions auto-advance the selection: tag toggling is expected
// to be followed by more toggles on the same item.
func (a LabelAction) IsStatus() bool {
	return a.kind == ActionNegative || a.kind == ActionUncertain || a.kind == ActionSkipped
}

// String renders the action for logs.
func (a LabelAction) String() string {
	if a.kind == ActionTags {
		return fmt.Sprintf("tags%v", a.tagIDs)
	}
	return a.kind.String()
}

// labelPayload is the wire shape of a label instruction. The plural set is
// canonical; the singular field is populated only when the set has exactly
// one member, for servers that predate multi-tag assignment.
type labelPayload struct {
	AssignedTagIDs []int64 `json:"assigned_tag_ids,omitempty"`
	AssignedTagID  *int64  `json:"assigned_tag_id"`
	Negative       bool    `json:"is_negative,omitempty"`
	Uncertain      bool    `json:"is_uncertain,omitempty"`
	Skipped        bool    `json:"is_skipped,omitempty"`
}

// payload converts the action to its wire shape.
func (a LabelAction) payload() labelPayload {
	switch a.kind {
	case ActionNegative:
		return labelPayload{Negative: true}
	case ActionUncertain:
		return labelPayload{Uncertain: true}
	case ActionSkipped:
		return labelPayload{Skipped: true}
	default:
		p := labelPayload{AssignedTagIDs: a.tagIDs}
		if len(a.tagIDs) == 1 {
			id := a.tagIDs[0]
			p.AssignedTagID = &id
		}
		return p
	}
}

// applyTo rewrites a cached result to reflect the action, mirroring the
// server's authoritative transition: assigning a status clears tags and the
// other statuses, and assigning tags clears the statuses. The plural set
// becomes canonical after any tag action; the legacy singular field is
// dropped once upgraded.
func (a LabelAction) applyTo(r *Result) {
	r.Negative = false
	r.Uncertain = false
	r.Skipped = false
	switch a.kind {
	case ActionNegative:
		r.AssignedTagIDs = nil
		r.AssignedTagID = nil
		r.Negative = true
	case ActionUncertain:
		r.AssignedTagIDs = nil
		r.AssignedTagID = nil
		r.Uncertain = true
	case ActionSkipped:
		r.AssignedTagIDs = nil
		r.AssignedTagID = nil
		r.Skipped = true
	case ActionTags:
		ids := make([]int64, len(a.tagIDs))
		copy(ids, a.tagIDs)
		r.AssignedTagIDs = ids
		r.AssignedTagID = nil
	}
}

// ToggledTagSet computes the tag set that results from toggling tagID on r:
//
//  1. A non-empty set removes tagID when present, else appends it.
//  2. A legacy singular assignment is first upgraded into a one-element set,
//     then toggled as in (1): toggling the same tag clears the set, a
//     different tag yields a two-element set.
//  3. No assignment at all yields {tagID}.
//
// r is not modified; the returned set feeds TagAction.
func ToggledTagSet(r Result, tagID int64) []int64 {
	current := r.TagSet()
	out := make([]int64, 0, len(current)+1)
	found := false
	for _, id := range current {
		if id == tagID {
			found = true
			continue
		}
		out = append(out, id)
	}
	if !found {
		out = append(out, tagID)
	}
	return out
}
