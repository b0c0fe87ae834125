package main

import (
	"math"
	"testing"
	"time"

	"github.com/just-nibble/service-miner/internal/core/service"
	"github.com/stretchr/testify/assert"
)

func TestSeriesTableOneColumnPerService(t *testing.T) {
	bins := []time.Time{
		time.Date(2019, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2019, 2, 1, 0, 0, 0, 0, time.UTC),
	}
	res := &service.SeriesResult{
		Kind: service.SeriesChangesPerLoc,
		Bins: bins,
		Series: []service.ServiceSeries{
			{Service: "api", Values: []float64{math.NaN()}},
			{Service: "web", Values: []float64{0.25}},
		},
	}

	table := seriesTable(res)
	assert.Equal(t, []string{"date", "api", "web"}, table.Headers)
	assert.Equal(t, [][]string{{"2019-02-01", "NaN", "0.2500"}}, table.Rows)
}

func TestOutputName(t *testing.T) {
	seriesServices, seriesRepo = "api, web", ""
	t.Cleanup(func() { seriesServices, seriesRepo = "", "" })
	assert.Equal(t, "loc_api_web", outputName("loc"))

	seriesServices, seriesRepo = "", "acme/api"
	assert.Equal(t, "repo-loc_acme_api", outputName("repo-loc"))
}
