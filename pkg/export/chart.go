package export

import (
	"io"

	"github.com/wcharczuk/go-chart/v2"

	"github.com/voidshard/budget/pkg/domain"
	"github.com/voidshard/budget/pkg/report"
)

const (
	chartWidth  = 800
	chartHeight = 600
)

// PieChart renders totals as a PNG pie chart, largest slice first. Labels
// with nothing spent are left out; ErrNothingToChart is returned if that
// leaves nothing.
func PieChart(w io.Writer, title string, totals map[string]domain.Money) error {
	var values []chart.Value
	for _, label := range report.SortedLabels(totals) {
		amount := totals[label]
		if amount.Cents <= 0 {
			continue
		}
		values = append(values, chart.Value{
			Label: label + " " + amount.Dollars(),
			Value: amount.Float64(),
		})
	}
	if len(values) == 0 {
		return ErrNothingToChart
	}

	pie := chart.PieChart{
		Title:  title,
		Width:  chartWidth,
		Height: chartHeight,
		Background: chart.Style{
			Padding: chart.Box{
				Top:    40,
				Left:   20,
				Right:  20,
				Bottom: 20,
			},
		},
		Values: values,
	}
	return pie.Render(chart.PNG, w)
}
