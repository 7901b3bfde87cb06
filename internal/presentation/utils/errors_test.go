package utils

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hilthontt/doctrack/internal/domain"
	"github.com/hilthontt/doctrack/internal/infrastructure/logging"
	"github.com/stretchr/testify/assert"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("%w: name", domain.ErrInvalidInput), http.StatusBadRequest},
		{fmt.Errorf("%w: \"x\"", domain.ErrInvalidDepartment), http.StatusBadRequest},
		{domain.ErrInvalidAction, http.StatusBadRequest},
		{fmt.Errorf("%w: a@b.co", domain.ErrEmailTaken), http.StatusConflict},
		{domain.ErrInvalidCredentials, http.StatusUnauthorized},
		{fmt.Errorf("%w: DOC-1", domain.ErrDocumentNotFound), http.StatusNotFound},
		{domain.ErrCodeNotFound, http.StatusNotFound},
		{errors.New("disk on fire"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			got, _ := StatusFor(tt.err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWriteTextError_HidesInternalDetail(t *testing.T) {
	logger := logging.NewLogger(&logging.LoggerConfig{Writer: io.Discard, Level: "error"})
	rec := httptest.NewRecorder()

	WriteTextError(rec, httptest.NewRequest(http.MethodGet, "/", nil), logger, errors.New("open /secret/path: permission denied"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "/secret/path")
}
