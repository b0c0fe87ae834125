package handlers

import (
	"errors"
	"net/http"

	"github.com/just-nibble/service-miner/pkg/errcodes"
	"github.com/just-nibble/service-miner/pkg/response"
)

func statusFor(err error) int {
	switch {
	case errors.Is(err, errcodes.ErrNoRecordFound):
		return http.StatusNotFound
	case errors.Is(err, errcodes.ErrInvalidTimeBins),
		errors.Is(err, errcodes.ErrEmptyHistory),
		errors.Is(err, errcodes.ErrInvalidRepositoryName),
		errors.Is(err, errcodes.ErrDataIntegrity):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	response.ErrorResponse(w, statusFor(err), err.Error())
}
