package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/just-nibble/service-miner/internal/adapters/http/dtos"
	"github.com/just-nibble/service-miner/internal/core/service"
	"github.com/just-nibble/service-miner/pkg/errcodes"
	"github.com/just-nibble/service-miner/pkg/response"
	"github.com/sirupsen/logrus"
)

type ServiceCatalog interface {
	ListServiceNames(ctx context.Context) ([]string, error)
	UpdateDates(ctx context.Context, name string, start, end *time.Time) (bool, error)
	DeleteService(ctx context.Context, name string) (bool, error)
}

type Miner interface {
	MineService(ctx context.Context, target service.ServiceTarget) error
}

type ServiceHandler struct {
	catalog ServiceCatalog
	miner   Miner
	log     logrus.FieldLogger

	// mining outlives the request that started it
	background context.Context
}

func NewServiceHandler(ctx context.Context, catalog ServiceCatalog, miner Miner, log logrus.FieldLogger) *ServiceHandler {
	return &ServiceHandler{catalog: catalog, miner: miner, log: log, background: ctx}
}

func (h *ServiceHandler) ListServices(w http.ResponseWriter, r *http.Request) {
	names, err := h.catalog.ListServiceNames(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if names == nil {
		names = []string{}
	}
	response.SuccessResponse(w, http.StatusOK, names)
}

// AddService validates the target and mines it in the background.
func (h *ServiceHandler) AddService(w http.ResponseWriter, r *http.Request) {
	var target service.ServiceTarget
	if err := json.NewDecoder(r.Body).Decode(&target); err != nil {
		response.ErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := target.Validate(); err != nil {
		response.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	go func() {
		if err := h.miner.MineService(h.background, target); err != nil {
			h.log.WithError(err).WithField("service", target.Name).Error("mining failed")
		}
	}()

	response.SuccessResponse(w, http.StatusAccepted, dtos.MiningAccepted{
		Service:      target.Name,
		Repositories: len(target.Repositories),
	})
}

func (h *ServiceHandler) UpdateDates(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")

	var req dtos.ServiceDates
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.ErrorResponse(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	start, err := service.ParseDate(req.Start)
	if err != nil {
		response.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	end, err := service.ParseDate(req.End)
	if err != nil {
		response.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	updated, err := h.catalog.UpdateDates(r.Context(), name, start, end)
	if err != nil {
		writeError(w, err)
		return
	}
	if !updated {
		writeError(w, fmt.Errorf("service %q has no commits: %w", name, errcodes.ErrEmptyHistory))
		return
	}
	response.SuccessResponse(w, http.StatusOK, "Service dates updated")
}

func (h *ServiceHandler) DeleteService(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")

	deleted, err := h.catalog.DeleteService(r.Context(), name)
	if err != nil {
		writeError(w, err)
		return
	}
	if !deleted {
		response.ErrorResponse(w, http.StatusNotFound, fmt.Sprintf("service %q not found", name))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
