package report

import (
	"strconv"
	"time"

	"github.com/just-nibble/service-miner/internal/core/domain/entities"
	"github.com/just-nibble/service-miner/internal/core/service"
)

// Column is one named per-bin series.
type Column struct {
	Name   string
	Cells  []string
	Values []any
}

func IntColumn(name string, values []int) Column {
	c := Column{Name: name}
	for _, v := range values {
		c.Cells = append(c.Cells, strconv.Itoa(v))
		c.Values = append(c.Values, v)
	}
	return c
}

func FloatColumn(name string, values []float64) Column {
	c := Column{Name: name}
	for _, v := range values {
		c.Cells = append(c.Cells, FormatFloat(v))
		c.Values = append(c.Values, JSONFloat(v))
	}
	return c
}

// SeriesTable lays out per-bin series with one row per bin, keyed by the
// bin's end date.
func SeriesTable(title string, bins []time.Time, columns ...Column) *Table {
	t := &Table{Title: title, Headers: []string{"date"}}
	for _, c := range columns {
		t.Headers = append(t.Headers, c.Name)
	}

	var data []map[string]any
	for i := 1; i < len(bins); i++ {
		end := bins[i].Format(time.DateOnly)
		row := []string{end}
		rec := map[string]any{"date": end}
		for _, c := range columns {
			if i-1 < len(c.Cells) {
				row = append(row, c.Cells[i-1])
				rec[c.Name] = c.Values[i-1]
			} else {
				row = append(row, "")
			}
		}
		t.Rows = append(t.Rows, row)
		data = append(data, rec)
	}
	t.Data = data
	return t
}

func CommitLOCTable(title string, series []entities.CommitLOC) *Table {
	t := &Table{Title: title, Headers: []string{"sha", "loc", "date"}, Data: series}
	for _, s := range series {
		t.Rows = append(t.Rows, []string{s.SHA, strconv.Itoa(s.LOC), s.Date})
	}
	return t
}

func BugBinsTable(rows []entities.BugBin) *Table {
	t := &Table{Title: "Bugs per bin", Headers: []string{"service", "date", "bugs", "loc"}, Data: rows}
	for _, r := range rows {
		t.Rows = append(t.Rows, []string{r.Service, r.Date.Format(time.DateOnly), strconv.Itoa(r.Bugs), strconv.Itoa(r.LOC)})
	}
	return t
}

func DefectDensityTable(years []entities.DefectDensity) *Table {
	t := &Table{Title: "Defect density", Headers: []string{"year", "bugs", "loc", "defect_density"}, Data: years}
	for _, y := range years {
		t.Rows = append(t.Rows, []string{
			strconv.Itoa(y.Year), strconv.Itoa(y.Bugs), strconv.Itoa(y.LOC), FormatFloat(y.DefectDensity),
		})
	}
	return t
}

func RepairTimesTable(times []entities.RepairTime) *Table {
	t := &Table{Title: "Time to repair", Headers: []string{"year", "issues", "median_days"}, Data: times}
	for _, r := range times {
		t.Rows = append(t.Rows, []string{strconv.Itoa(r.Year), strconv.Itoa(r.Issues), FormatFloat(r.MedianDays)})
	}
	return t
}

// ChangeDefectTable lists the yearly pairs followed by the fitted line.
func ChangeDefectTable(st service.ChangeDefectStats) *Table {
	t := &Table{Title: "Changes vs defect density", Headers: []string{"year", "changes", "defect_density"}}
	for i, y := range st.Years {
		t.Rows = append(t.Rows, []string{strconv.Itoa(y), FormatFloat(st.Changes[i]), FormatFloat(st.Density[i])})
	}
	t.Rows = append(t.Rows,
		[]string{"slope", FormatFloat(st.Slope), ""},
		[]string{"intercept", FormatFloat(st.Intercept), ""},
		[]string{"r_squared", FormatFloat(st.RSquared), ""},
		[]string{"correlation", FormatFloat(st.Correlation), ""},
	)
	t.Data = map[string]any{
		"years":       st.Years,
		"changes":     st.Changes,
		"density":     st.Density,
		"slope":       JSONFloat(st.Slope),
		"intercept":   JSONFloat(st.Intercept),
		"r_squared":   JSONFloat(st.RSquared),
		"correlation": JSONFloat(st.Correlation),
	}
	return t
}

func NamesTable(title string, names []string) *Table {
	t := &Table{Title: title, Headers: []string{"name"}, Data: names}
	for _, n := range names {
		t.Rows = append(t.Rows, []string{n})
	}
	return t
}
