package httperrors

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sir_venger/rangeserve/internal/models"
)

func TestWrite(t *testing.T) {
	tests := []struct {
		err  error
		code int
	}{
		{models.ErrNotFound, http.StatusNotFound},
		{fmt.Errorf("open /srv/media/x: %w", models.ErrPathTraversal), http.StatusNotFound},
		{models.ErrIsDirectory, http.StatusNotFound},
		{models.ErrMalformedRange, http.StatusBadRequest},
		{models.ErrUnsatisfiableRange, http.StatusRequestedRangeNotSatisfiable},
		{models.ErrInvalidName, http.StatusBadRequest},
		{fmt.Errorf("%w: 2 GiB > 1 GiB", models.ErrTooLarge), http.StatusRequestEntityTooLarge},
		{errors.New("open /secret/internal/path: permission denied"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		rec := httptest.NewRecorder()
		Write(rec, tt.err)
		assert.Equal(t, tt.code, rec.Code, tt.err.Error())
		assert.NotContains(t, rec.Body.String(), "/srv")
		assert.NotContains(t, rec.Body.String(), "/secret")
		assert.Contains(t, rec.Header().Get("Content-Type"), "text/plain")
	}
}
