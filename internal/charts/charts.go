// Package charts renders deck statistics as interactive HTML charts.
package charts

import (
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/ramonehamilton/commander-forge/internal/deckbuilder"
)

// CurveCap is the mana value at which the curve groups into a single "N+" bar.
const CurveCap = 7

// ChartConfig holds configuration for charts.
type ChartConfig struct {
	Title      string // Chart title
	Subtitle   string // Chart subtitle
	YAxisLabel string
	XAxisLabel string
	Width      string // Chart width (e.g., "900px")
	Height     string // Chart height (e.g., "500px")
	Theme      string
	Color      string
}

// DefaultChartConfig returns default chart configuration.
func DefaultChartConfig() ChartConfig {
	return ChartConfig{
		YAxisLabel: "Cards",
		XAxisLabel: "Mana Value",
		Width:      "900px",
		Height:     "500px",
		Theme:      "light",
		Color:      "#5470C6",
	}
}

// DataPoint represents a single bar.
type DataPoint struct {
	Label string
	Value int
}

// CurvePoints turns a mana curve into ordered bars from 0 to CurveCap+,
// filling gaps with zero so the x axis is continuous.
func CurvePoints(curve map[int]int) []DataPoint {
	highest := 0
	for cmc := range curve {
		if cmc > highest {
			highest = cmc
		}
	}
	if highest > CurveCap {
		highest = CurveCap
	}

	points := make([]DataPoint, highest+1)
	for i := range points {
		points[i].Label = strconv.Itoa(i)
	}
	points[len(points)-1].Label = labelFor(highest)

	keys := make([]int, 0, len(curve))
	for cmc := range curve {
		keys = append(keys, cmc)
	}
	sort.Ints(keys)

	for _, cmc := range keys {
		bucket := cmc
		if bucket > CurveCap {
			bucket = CurveCap
		}
		if bucket < 0 {
			bucket = 0
		}
		points[bucket].Value += curve[cmc]
	}
	return points
}

func labelFor(cmc int) string {
	if cmc == CurveCap {
		return strconv.Itoa(CurveCap) + "+"
	}
	return strconv.Itoa(cmc)
}

// RenderManaCurve writes an HTML bar chart of the deck's non-land mana curve.
// An empty title is derived from the commander and archetype.
func RenderManaCurve(w io.Writer, option deckbuilder.DeckOption, config ChartConfig) error {
	if config.Title == "" {
		config.Title = fmt.Sprintf("%s - %s", option.Commander.Name, option.ArchetypeName)
	}
	if config.Subtitle == "" {
		config.Subtitle = fmt.Sprintf("Average mana value %.2f, %d lands", option.AverageCMC, option.LandCount)
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			Width:  config.Width,
			Height: config.Height,
			Theme:  config.Theme,
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    config.Title,
			Subtitle: config.Subtitle,
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show:    opts.Bool(true),
			Trigger: "axis",
		}),
		charts.WithXAxisOpts(opts.XAxis{
			Name: config.XAxisLabel,
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Name: config.YAxisLabel,
		}),
		charts.WithColorsOpts(opts.Colors{config.Color}),
	)

	points := CurvePoints(option.ManaCurve)
	xLabels := make([]string, len(points))
	yData := make([]opts.BarData, len(points))
	for i, point := range points {
		xLabels[i] = point.Label
		yData[i] = opts.BarData{Value: point.Value}
	}

	bar.SetXAxis(xLabels).
		AddSeries("Cards", yData).
		SetSeriesOptions(
			charts.WithLabelOpts(opts.Label{
				Show:     opts.Bool(true),
				Position: "top",
			}),
		)

	if err := bar.Render(w); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	return nil
}
