package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/just-nibble/service-miner/internal/adapters/http/dtos"
	"github.com/just-nibble/service-miner/internal/adapters/validators"
	"github.com/just-nibble/service-miner/internal/core/domain/entities"
	"github.com/just-nibble/service-miner/internal/core/service"
	"github.com/just-nibble/service-miner/pkg/response"
)

const defaultBinDays = 30

type Analysis interface {
	Series(ctx context.Context, kind service.SeriesKind, names []string, binDays int, until time.Time) (*service.SeriesResult, error)
	DefectDensity(ctx context.Context, names []string, binDays int, until time.Time) (*service.DefectDensityReport, error)
	RepairTimes(ctx context.Context, names []string) ([]entities.RepairTime, error)
	ChangesVsDefects(ctx context.Context, names []string, binDays int, until time.Time) (service.ChangeDefectStats, error)
	RepositoryLoc(ctx context.Context, owner, name string) ([]entities.CommitLOC, error)
}

type AnalysisHandler struct {
	analysis Analysis
	now      func() time.Time
}

func NewAnalysisHandler(analysis Analysis) *AnalysisHandler {
	return &AnalysisHandler{analysis: analysis, now: time.Now}
}

type binQuery struct {
	names   []string
	binDays int
	until   time.Time
}

// parseBinQuery reads services, bin_days and until from the query string.
func (h *AnalysisHandler) parseBinQuery(w http.ResponseWriter, r *http.Request) (binQuery, bool) {
	q := r.URL.Query()
	names := validators.ServiceNames(q.Get("services"))
	if err := names.Validate(); err != nil {
		response.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return binQuery{}, false
	}

	binDays := defaultBinDays
	if raw := q.Get("bin_days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			response.ErrorResponse(w, http.StatusBadRequest, "bin_days must be an integer")
			return binQuery{}, false
		}
		binDays = n
	}
	if err := validators.BinDays(binDays).Validate(); err != nil {
		response.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return binQuery{}, false
	}

	until := h.now().UTC()
	if raw := q.Get("until"); raw != "" {
		t, err := service.ParseDate(raw)
		if err != nil {
			response.ErrorResponse(w, http.StatusBadRequest, err.Error())
			return binQuery{}, false
		}
		until = *t
	}

	return binQuery{names: names.List(), binDays: binDays, until: until}, true
}

func (h *AnalysisHandler) GetSeries(w http.ResponseWriter, r *http.Request) {
	kind, err := service.ParseSeriesKind(r.PathValue("kind"))
	if err != nil {
		response.ErrorResponse(w, http.StatusNotFound, err.Error())
		return
	}
	q, ok := h.parseBinQuery(w, r)
	if !ok {
		return
	}

	res, err := h.analysis.Series(r.Context(), kind, q.names, q.binDays, q.until)
	if err != nil {
		writeError(w, err)
		return
	}
	response.SuccessResponse(w, http.StatusOK, dtos.NewSeries(res))
}

func (h *AnalysisHandler) GetDefectDensity(w http.ResponseWriter, r *http.Request) {
	q, ok := h.parseBinQuery(w, r)
	if !ok {
		return
	}

	rep, err := h.analysis.DefectDensity(r.Context(), q.names, q.binDays, q.until)
	if err != nil {
		writeError(w, err)
		return
	}
	response.SuccessResponse(w, http.StatusOK, rep)
}

func (h *AnalysisHandler) GetChangesVsDefects(w http.ResponseWriter, r *http.Request) {
	q, ok := h.parseBinQuery(w, r)
	if !ok {
		return
	}

	st, err := h.analysis.ChangesVsDefects(r.Context(), q.names, q.binDays, q.until)
	if err != nil {
		writeError(w, err)
		return
	}
	response.SuccessResponse(w, http.StatusOK, dtos.NewChangeDefectStats(st))
}

func (h *AnalysisHandler) GetRepairTimes(w http.ResponseWriter, r *http.Request) {
	names := validators.ServiceNames(r.URL.Query().Get("services"))
	if err := names.Validate(); err != nil {
		response.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	times, err := h.analysis.RepairTimes(r.Context(), names.List())
	if err != nil {
		writeError(w, err)
		return
	}
	response.SuccessResponse(w, http.StatusOK, times)
}

func (h *AnalysisHandler) GetRepositoryLoc(w http.ResponseWriter, r *http.Request) {
	repo := validators.Repo(r.PathValue("owner") + "/" + r.PathValue("name"))
	if err := repo.Validate(); err != nil {
		response.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	owner, name := repo.Split()
	series, err := h.analysis.RepositoryLoc(r.Context(), owner, name)
	if err != nil {
		writeError(w, err)
		return
	}
	response.SuccessResponse(w, http.StatusOK, series)
}
