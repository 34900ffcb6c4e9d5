// Copyright (C) 2026 Tanager ML (oss@tanagerml.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package labeling

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestToggledTagSet(t *testing.T) {
	cases := []struct {
		name   string
		r      Result
		toggle int64
		want   []int64
	}{
		{"unlabeled gains tag", Result{}, 11, []int64{11}},
		{"present tag removed", Result{AssignedTagIDs: []int64{11, 22}}, 11, []int64{22}},
		{"absent tag added", Result{AssignedTagIDs: []int64{11}}, 22, []int64{11, 22}},
		{"last tag cleared", Result{AssignedTagIDs: []int64{11}}, 11, []int64{}},
		{"legacy same tag cleared", Result{AssignedTagID: int64Ptr(11)}, 11, []int64{}},
		{"legacy different tag grows set", Result{AssignedTagID: int64Ptr(11)}, 22, []int64{11, 22}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ToggledTagSet(tc.r, tc.toggle)
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("ToggledTagSet mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestToggledTagSetDoesNotMutate(t *testing.T) {
	r := Result{AssignedTagIDs: []int64{11, 22}}
	_ = ToggledTagSet(r, 11)
	if diff := cmp.Diff([]int64{11, 22}, r.AssignedTagIDs); diff != "" {
		t.Errorf("input mutated (-want +got):\n%s", diff)
	}
}

// Double-toggling the same tag must return to the starting set.
func TestToggleIdempotence(t *testing.T) {
	r := Result{AssignedTagIDs: []int64{22}}
	once := ToggledTagSet(r, 11)
	r2 := r
	r2.AssignedTagIDs = once
	twice := ToggledTagSet(r2, 11)
	if diff := cmp.Diff([]int64{22}, twice); diff != "" {
		t.Errorf("double toggle drifted (-want +got):\n%s", diff)
	}
}

func TestTagActionCopiesAndSorts(t *testing.T) {
	src := []int64{22, 11}
	a := TagAction(src)
	src[0] = 99
	if diff := cmp.Diff([]int64{11, 22}, a.TagIDs()); diff != "" {
		t.Errorf("TagAction set (-want +got):\n%s", diff)
	}
}

func TestActionIsStatus(t *testing.T) {
	if TagAction([]int64{11}).IsStatus() {
		t.Error("tag action must not auto-advance")
	}
	for _, a := range []LabelAction{NegativeAction(), UncertainAction(), SkipAction()} {
		if !a.IsStatus() {
			t.Errorf("%s should be a status action", a)
		}
	}
}

func TestPayloadSingularOnlyForOneTag(t *testing.T) {
	p := TagAction([]int64{11}).payload()
	if p.AssignedTagID == nil || *p.AssignedTagID != 11 {
		t.Error("one-tag set should populate the legacy singular field")
	}

	p = TagAction([]int64{11, 22}).payload()
	if p.AssignedTagID != nil {
		t.Error("multi-tag set must leave the singular field nil")
	}
	if diff := cmp.Diff([]int64{11, 22}, p.AssignedTagIDs); diff != "" {
		t.Errorf("plural set (-want +got):\n%s", diff)
	}

	p = TagAction(nil).payload()
	if p.AssignedTagID != nil || len(p.AssignedTagIDs) != 0 {
		t.Error("empty set should clear both fields")
	}
}

func TestPayloadStatusFlags(t *testing.T) {
	if p := NegativeAction().payload(); !p.Negative || p.Uncertain || p.Skipped {
		t.Errorf("negative payload = %+v", p)
	}
	if p := UncertainAction().payload(); !p.Uncertain || p.Negative || p.Skipped {
		t.Errorf("uncertain payload = %+v", p)
	}
	if p := SkipAction().payload(); !p.Skipped || p.Negative || p.Uncertain {
		t.Errorf("skip payload = %+v", p)
	}
}

func TestApplyToStatusClearsTags(t *testing.T) {
	r := Result{AssignedTagIDs: []int64{11}, AssignedTagID: int64Ptr(11), Uncertain: true}
	NegativeAction().applyTo(&r)
	if DeriveStatus(r) != StatusNegative {
		t.Errorf("status = %v, want negative", DeriveStatus(r))
	}
	if r.AssignedTagIDs != nil || r.AssignedTagID != nil || r.Uncertain {
		t.Errorf("stale label fields survived: %+v", r)
	}
}

func TestApplyToTagsClearsFlagsAndLegacyField(t *testing.T) {
	r := Result{AssignedTagID: int64Ptr(11), Negative: true, Skipped: true}
	TagAction([]int64{11, 22}).applyTo(&r)
	if DeriveStatus(r) != StatusTagged {
		t.Errorf("status = %v, want tagged", DeriveStatus(r))
	}
	if r.AssignedTagID != nil {
		t.Error("legacy singular field should be dropped once upgraded")
	}
	if r.Negative || r.Skipped {
		t.Error("status flags should be cleared by a tag action")
	}
}

// The documented two-tag shortcut walk: with tags A=11 and B=22 assigned to
// keys 1 and 2, pressing 1 then 2 then 1 yields {A}, {A,B}, {B}.
func TestShortcutToggleWalk(t *testing.T) {
	s := testSession()
	r := Result{ID: 1}

	press := func(digit int) {
		tag, ok := s.TagByShortcut(digit)
		if !ok {
			t.Fatalf("no tag on shortcut %d", digit)
		}
		TagAction(ToggledTagSet(r, tag.ID)).applyTo(&r)
	}

	press(1)
	if diff := cmp.Diff([]int64{11}, r.TagSet()); diff != "" {
		t.Fatalf("after pressing 1 (-want +got):\n%s", diff)
	}
	press(2)
	if diff := cmp.Diff([]int64{11, 22}, r.TagSet()); diff != "" {
		t.Fatalf("after pressing 2 (-want +got):\n%s", diff)
	}
	press(1)
	if diff := cmp.Diff([]int64{22}, r.TagSet()); diff != "" {
		t.Fatalf("after pressing 1 again (-want +got):\n%s", diff)
	}
}
