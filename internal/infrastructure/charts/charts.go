// Package charts renders analytics results as standalone HTML pages.
package charts

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/HimeshBhattacharjee/vsl-qa-dashboard/internal/core/domain"
	"github.com/HimeshBhattacharjee/vsl-qa-dashboard/internal/core/ports"
)

const (
	width  = "1000px"
	height = "520px"
)

func initOpts(title string) charts.GlobalOpts {
	return charts.WithInitializationOpts(opts.Initialization{PageTitle: title, Width: width, Height: height})
}

func rangeSubtitle(from, to string) string {
	if from == "" && to == "" {
		return ""
	}
	return fmt.Sprintf("%s to %s", from, to)
}

// GradePie renders the grade distribution of a B-grade analysis.
func GradePie(w io.Writer, ga *domain.GradeAnalysis) error {
	pie := charts.NewPie()
	pie.SetGlobalOptions(
		initOpts("Grade distribution"),
		charts.WithTitleOpts(opts.Title{
			Title:    fmt.Sprintf("Grade distribution (B-grade rate %.2f%%)", ga.DefectRate),
			Subtitle: rangeSubtitle(ga.StartDate, ga.EndDate),
		}),
	)
	data := make([]opts.PieData, 0, len(domain.Grades))
	for _, g := range domain.Grades {
		data = append(data, opts.PieData{Name: g, Value: ga.GradeCounts[g]})
	}
	pie.AddSeries("grades", data)
	return pie.Render(w)
}

// ReasonBar renders the leading B-grade reasons in descending order.
func ReasonBar(w io.Writer, ra *domain.ReasonAnalysis) error {
	names := make([]string, len(ra.DefectReasons))
	data := make([]opts.BarData, len(ra.DefectReasons))
	for i, rc := range ra.DefectReasons {
		names[i] = rc.Reason
		data[i] = opts.BarData{Value: rc.Count}
	}
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		initOpts("B-grade reasons"),
		charts.WithTitleOpts(opts.Title{
			Title:    fmt.Sprintf("B-grade reasons (%d of %d)", ra.TotalBGrade, ra.TotalProduction),
			Subtitle: rangeSubtitle(ra.StartDate, ra.EndDate),
		}),
	)
	bar.SetXAxis(names).AddSeries("count", data)
	return bar.Render(w)
}

// DefectBar renders an inspection defect rollup.
func DefectBar(w io.Writer, da *ports.DefectAnalysis) error {
	names := make([]string, len(da.Defects))
	data := make([]opts.BarData, len(da.Defects))
	for i, d := range da.Defects {
		names[i] = d.Name
		data[i] = opts.BarData{Value: d.Count}
	}
	scope := "all lines"
	if da.LineNumber != nil {
		scope = fmt.Sprintf("line %d", *da.LineNumber)
	}
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		initOpts(da.InspectionType+" defects"),
		charts.WithTitleOpts(opts.Title{
			Title:    fmt.Sprintf("%s defects, %s", da.InspectionType, scope),
			Subtitle: fmt.Sprintf("total %.0f", da.TotalDefects),
		}),
	)
	bar.SetXAxis(names).AddSeries("count", data)
	return bar.Render(w)
}

// PeelLine renders the per-day average, max and min peel strength. Days
// without data are left as gaps.
func PeelLine(w io.Writer, title string, points []domain.GraphPoint) error {
	days := make([]string, len(points))
	avg := make([]opts.LineData, len(points))
	hi := make([]opts.LineData, len(points))
	lo := make([]opts.LineData, len(points))
	for i, p := range points {
		days[i] = p.Date
		avg[i] = lineValue(p.AverageValue)
		hi[i] = lineValue(p.MaxValue)
		lo[i] = lineValue(p.MinValue)
	}
	line := charts.NewLine()
	line.SetGlobalOptions(
		initOpts(title),
		charts.WithTitleOpts(opts.Title{Title: title}),
	)
	line.SetXAxis(days).
		AddSeries("Average", avg).
		AddSeries("Max", hi).
		AddSeries("Min", lo)
	return line.Render(w)
}

func lineValue(v *float64) opts.LineData {
	if v == nil {
		return opts.LineData{Value: "-"}
	}
	return opts.LineData{Value: *v}
}
