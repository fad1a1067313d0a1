// Package report renders a standalone HTML chart of the sweep results for
// quick visual inspection, one efficiency series per diffraction order.
package report

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/beamline-tools/greff/internal/sweep"
)

// WriteHTML renders the efficiency chart for the finished run to path.
func WriteHTML(path, title string, results []sweep.StepResult) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("could not create report file %s: %w", path, err)
	}
	defer f.Close()
	return Render(f, title, results)
}

// Render writes the chart HTML to w. Failed steps appear as gaps in every
// series so partial runs still render.
func Render(w io.Writer, title string, results []sweep.StepResult) error {
	orders := presentOrders(results)
	if len(orders) == 0 {
		return fmt.Errorf("no successful steps to chart")
	}

	xAxis := make([]string, len(results))
	for i, r := range results {
		xAxis[i] = strconv.FormatFloat(r.Coordinate, 'g', -1, 64)
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: title, Width: "1100px", Height: "640px"}),
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: fmt.Sprintf("%d steps, %d orders", len(results), len(orders))}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "sweep coordinate"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "efficiency"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
	)
	line.SetXAxis(xAxis)

	for _, m := range orders {
		data := make([]opts.LineData, len(results))
		for i, r := range results {
			if v, ok := efficiencyFor(&r, m); ok {
				data[i] = opts.LineData{Value: v}
			} else {
				data[i] = opts.LineData{Value: nil}
			}
		}
		line.AddSeries(fmt.Sprintf("order %d", m), data)
	}

	return line.Render(w)
}

// presentOrders collects every order index that carries a nonzero efficiency
// in at least one successful step, in ascending order.
func presentOrders(results []sweep.StepResult) []int {
	seen := map[int]bool{}
	for _, r := range results {
		if !r.OK {
			continue
		}
		for i, m := range r.Orders {
			if r.Efficiencies[i] > 0 {
				seen[m] = true
			}
		}
	}
	var min, max int
	first := true
	for m := range seen {
		if first || m < min {
			min = m
		}
		if first || m > max {
			max = m
		}
		first = false
	}
	if first {
		return nil
	}
	orders := make([]int, 0, len(seen))
	for m := min; m <= max; m++ {
		if seen[m] {
			orders = append(orders, m)
		}
	}
	return orders
}

func efficiencyFor(r *sweep.StepResult, order int) (float64, bool) {
	if !r.OK {
		return 0, false
	}
	for i, m := range r.Orders {
		if m == order {
			return r.Efficiencies[i], true
		}
	}
	return 0, false
}
