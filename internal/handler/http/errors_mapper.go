package http

import (
	"errors"
	"net/http"

	"github.com/mkhalin/family-expenses/internal/service"
	"github.com/mkhalin/family-expenses/internal/store"
)

var errorStatusMap = map[error]int{
	service.ErrInvalidDataProvided:    http.StatusBadRequest,
	service.ErrValidationNoFamilyName: http.StatusBadRequest,
	service.ErrValidationNoName:       http.StatusBadRequest,
	service.ErrFamilyNotFound:         http.StatusNotFound,
	service.ErrRecordNotFound:         http.StatusNotFound,
	service.ErrFamilyHasDependents:    http.StatusConflict,

	store.ErrNotFound: http.StatusNotFound,

	store.ErrBuildingSQLQuery:   http.StatusInternalServerError,
	store.ErrExecutingQuery:     http.StatusInternalServerError,
	store.ErrExecutingStatement: http.StatusInternalServerError,
	store.ErrScanningRow:        http.StatusInternalServerError,
}

func statusFromError(err error) int {
	for target, status := range errorStatusMap {
		if errors.Is(err, target) {
			return status
		}
	}
	return http.StatusInternalServerError
}
