package httperrors

import (
	"errors"
	"net/http"

	"github.com/sir_venger/rangeserve/internal/models"
)

// Status сопоставляет ошибку со статусом ответа и коротким текстом для клиента.
// Внутренние пути и сырые тексты ошибок наружу не попадают.
func Status(err error) (int, string) {
	switch {
	case errors.Is(err, models.ErrNotFound),
		errors.Is(err, models.ErrPathTraversal),
		errors.Is(err, models.ErrIsDirectory):
		return http.StatusNotFound, "file not found"
	case errors.Is(err, models.ErrMalformedRange):
		return http.StatusBadRequest, "malformed range"
	case errors.Is(err, models.ErrUnsatisfiableRange):
		return http.StatusRequestedRangeNotSatisfiable, "range not satisfiable"
	case errors.Is(err, models.ErrInvalidName):
		return http.StatusBadRequest, "invalid file name"
	case errors.Is(err, models.ErrTooLarge):
		return http.StatusRequestEntityTooLarge, "upload too large"
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

// Write пишет ошибку как text/plain с подходящим статусом.
func Write(w http.ResponseWriter, err error) {
	code, msg := Status(err)
	http.Error(w, msg, code)
}
