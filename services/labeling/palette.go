// Copyright (C) 2026 Tanager ML (oss@tanagerml.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package labeling

// tagPalette is the fixed tag color palette. Colors are assigned by id
// modulo the palette length, so two tags can share a color once a campaign
// carries more than len(tagPalette) tags. Campaigns of that size are outside
// the intended scale; the collision is tolerated, not defended against.
var tagPalette = []string{
	"#e6194b", // red
	"#3cb44b", // green
	"#4363d8", // blue
	"#f58231", // orange
	"#911eb4", // purple
	"#42d4f4", // cyan
	"#f032e6", // magenta
	"#bfef45", // lime
	"#fabed4", // pink
	"#469990", // teal
}

// iterationPalette colors one histogram series per iteration, cycled by
// iteration modulo the palette length.
var iterationPalette = []string{
	"#1f77b4",
	"#ff7f0e",
	"#2ca02c",
	"#d62728",
	"#9467bd",
	"#8c564b",
	"#e377c2",
	"#7f7f7f",
}

// TagColor returns the stable display color for a tag id.
func TagColor(tagID int64) string {
	idx := tagID % int64(len(tagPalette))
	if idx < 0 {
		idx += int64(len(tagPalette))
	}
	return tagPalette[idx]
}

// IterationColor returns the series color for an iteration number.
func IterationColor(iteration int) string {
	idx := iteration % len(iterationPalette)
	if idx < 0 {
		idx += len(iterationPalette)
	}
	return iterationPalette[idx]
}
