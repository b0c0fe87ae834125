package dtos

import (
	"time"

	"github.com/just-nibble/service-miner/internal/adapters/report"
	"github.com/just-nibble/service-miner/internal/core/service"
)

// Point is one bin of a series; Value is null where the ratio is undefined.
type Point struct {
	Date  string   `json:"date"`
	Value *float64 `json:"value"`
}

type ServiceSeries struct {
	Service string  `json:"service"`
	Points  []Point `json:"points"`
}

type Series struct {
	Kind     string          `json:"kind"`
	Services []ServiceSeries `json:"services"`
}

func NewSeries(res *service.SeriesResult) Series {
	out := Series{Kind: string(res.Kind)}
	for _, s := range res.Series {
		ss := ServiceSeries{Service: s.Service}
		for i := 1; i < len(res.Bins); i++ {
			var v float64
			if s.Values != nil {
				v = s.Values[i-1]
			} else {
				v = float64(s.Counts[i-1])
			}
			ss.Points = append(ss.Points, Point{
				Date:  res.Bins[i].Format(time.DateOnly),
				Value: report.JSONFloat(v),
			})
		}
		out.Services = append(out.Services, ss)
	}
	return out
}

type ChangeDefectStats struct {
	Years       []int     `json:"years"`
	Changes     []float64 `json:"changes"`
	Density     []float64 `json:"defect_density"`
	Slope       *float64  `json:"slope"`
	Intercept   *float64  `json:"intercept"`
	RSquared    *float64  `json:"r_squared"`
	Correlation *float64  `json:"correlation"`
}

func NewChangeDefectStats(st service.ChangeDefectStats) ChangeDefectStats {
	return ChangeDefectStats{
		Years:       st.Years,
		Changes:     st.Changes,
		Density:     st.Density,
		Slope:       report.JSONFloat(st.Slope),
		Intercept:   report.JSONFloat(st.Intercept),
		RSquared:    report.JSONFloat(st.RSquared),
		Correlation: report.JSONFloat(st.Correlation),
	}
}
