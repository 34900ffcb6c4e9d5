// Copyright (C) 2026 Tanager ML (oss@tanagerml.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package charts renders score distribution histograms for a labeling
// session as a self-contained HTML page.
//
// # Description
//
// One faceted chart per target tag, with one histogram series per iteration
// so the score distribution's drift across training rounds stays visible.
// Counts are plotted on a log axis because the interesting movement happens
// in thin uncertainty-region bins that a linear axis flattens. Raw training
// point scores, when the server provides them, are overlaid as constant-
// height markers.
package charts

import (
	"bytes"
	"fmt"
	"io"
	"sort"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"gonum.org/v1/gonum/stat"

	"github.com/tanagerml/tanager/services/labeling"
)

// WriteHTML renders the full distribution page for one session.
func WriteHTML(w io.Writer, session *labeling.Session, dists []labeling.ScoreDistribution) error {
	page := BuildPage(session, dists)
	var buf bytes.Buffer
	if err := page.Render(&buf); err != nil {
		return fmt.Errorf("render distribution page: %w", err)
	}
	_, err := w.Write(buf.Bytes())
	return err
}

// BuildPage assembles one chart per tag, in the session's tag order. Tags
// without any distribution yet get a placeholder chart, so the page layout
// is stable across a session's whole life.
func BuildPage(session *labeling.Session, dists []labeling.ScoreDistribution) *components.Page {
	byTag := make(map[int64][]labeling.ScoreDistribution)
	for _, d := range dists {
		byTag[d.TagID] = append(byTag[d.TagID], d)
	}

	page := components.NewPage()
	page.PageTitle = fmt.Sprintf("%s score distributions", session.Name)
	for _, tag := range session.Tags {
		page.AddCharts(tagChart(tag, byTag[tag.ID]))
	}
	return page
}

// tagChart builds the per-tag histogram with one series per iteration.
func tagChart(tag labeling.Tag, dists []labeling.ScoreDistribution) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "100%", Height: "420px"}),
		charts.WithTitleOpts(opts.Title{
			Title:    tag.Name,
			Subtitle: subtitle(dists),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "score"}),
		// Log axis: the informative movement is in thin uncertainty bins.
		charts.WithYAxisOpts(opts.YAxis{Type: "log", Name: "count"}),
	)

	if len(dists) == 0 {
		bar.SetXAxis([]string{}).AddSeries("no data yet", []opts.BarData{})
		return bar
	}

	sort.Slice(dists, func(i, j int) bool { return dists[i].Iteration < dists[j].Iteration })

	// Category axis over bin midpoints. The server's bin edges span the
	// full [0, 1] score range, and the category form lets the training
	// overlays share the axis by bin index.
	bar.SetXAxis(binLabels(dists[0].BinEdges))
	maxCount := 0
	for _, d := range dists {
		for _, c := range d.Counts {
			if c > maxCount {
				maxCount = c
			}
		}
	}
	for _, d := range dists {
		bar.AddSeries(
			fmt.Sprintf("iteration %d", d.Iteration),
			barData(d.Counts),
			charts.WithItemStyleOpts(opts.ItemStyle{Color: labeling.IterationColor(d.Iteration)}),
		)
	}

	// Overlay raw training scores from the latest round, at constant
	// heights above the tallest bin.
	latest := dists[len(dists)-1]
	if len(latest.TrainPositive) > 0 || len(latest.TrainNegative) > 0 {
		bar.Overlap(trainOverlay(latest, maxCount))
	}
	return bar
}

// barData converts bin counts, dropping zeros: on a log axis a zero bin has
// no finite position, so it renders as a gap instead of a lie.
func barData(counts []int) []opts.BarData {
	out := make([]opts.BarData, len(counts))
	for i, c := range counts {
		if c == 0 {
			out[i] = opts.BarData{Value: nil}
			continue
		}
		out[i] = opts.BarData{Value: c}
	}
	return out
}

// binLabels renders one category label per bin, at the bin center.
func binLabels(edges []float64) []string {
	if len(edges) < 2 {
		return nil
	}
	out := make([]string, len(edges)-1)
	for i := 0; i < len(edges)-1; i++ {
		out[i] = fmt.Sprintf("%.2f", (edges[i]+edges[i+1])/2)
	}
	return out
}

// trainOverlay places the round's raw training scores as markers: positives
// above negatives, both at fixed heights so they read as rug marks rather
// than counts.
func trainOverlay(d labeling.ScoreDistribution, maxCount int) *charts.Scatter {
	posHeight := float64(maxCount) * 1.35
	negHeight := float64(maxCount) * 1.15
	if maxCount == 0 {
		posHeight, negHeight = 2, 1.5
	}

	scatter := charts.NewScatter()
	scatter.SetXAxis(binLabels(d.BinEdges))
	if len(d.TrainPositive) > 0 {
		scatter.AddSeries("train positive", scatterData(d.TrainPositive, d.BinEdges, posHeight),
			charts.WithItemStyleOpts(opts.ItemStyle{Color: "#2ca02c"}),
			charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 6}))
	}
	if len(d.TrainNegative) > 0 {
		scatter.AddSeries("train negative", scatterData(d.TrainNegative, d.BinEdges, negHeight),
			charts.WithItemStyleOpts(opts.ItemStyle{Color: "#d62728"}),
			charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 6}))
	}
	return scatter
}

// scatterData maps raw scores onto the histogram's category axis by bin
// index, all at one height.
func scatterData(scores, edges []float64, height float64) []opts.ScatterData {
	out := make([]opts.ScatterData, 0, len(scores))
	for _, s := range scores {
		idx := binIndex(s, edges)
		if idx < 0 {
			continue
		}
		out = append(out, opts.ScatterData{Value: []interface{}{idx, height}})
	}
	return out
}

// binIndex locates the bin containing score, or -1 when it falls outside
// the edges. The final edge is inclusive so a score of exactly 1.0 lands in
// the last bin.
func binIndex(score float64, edges []float64) int {
	for i := 0; i < len(edges)-1; i++ {
		if score >= edges[i] && (score < edges[i+1] || (i == len(edges)-2 && score == edges[i+1])) {
			return i
		}
	}
	return -1
}

// subtitle summarizes the latest round's training scores: count, median and
// quartiles of the positive training points.
func subtitle(dists []labeling.ScoreDistribution) string {
	if len(dists) == 0 {
		return "no data yet"
	}
	latest := dists[0]
	for _, d := range dists {
		if d.Iteration > latest.Iteration {
			latest = d
		}
	}
	if len(latest.TrainPositive) == 0 {
		return fmt.Sprintf("%d iterations", len(dists))
	}

	scores := make([]float64, len(latest.TrainPositive))
	copy(scores, latest.TrainPositive)
	sort.Float64s(scores)
	q1 := stat.Quantile(0.25, stat.Empirical, scores, nil)
	median := stat.Quantile(0.5, stat.Empirical, scores, nil)
	q3 := stat.Quantile(0.75, stat.Empirical, scores, nil)
	return fmt.Sprintf("%d iterations, train pos n=%d median=%.3f q1=%.3f q3=%.3f",
		len(dists), len(scores), median, q1, q3)
}
