package httpx

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/serverkit-go/apperror"
)

type signup struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

func TestDecodeJSON_ValidationDetails(t *testing.T) {
	body := `{"name":"","email":"not-an-email","password":"123"}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	rec := httptest.NewRecorder()

	var dst signup
	err := DecodeJSON(rec, req, &dst)
	require.Error(t, err)

	var appErr *apperror.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, apperror.CodeInvalidInput, appErr.Code)

	fields := map[string]string{}
	for _, d := range appErr.Details {
		fields[d.Field] = d.Message
	}
	assert.Equal(t, "is required", fields["name"])
	assert.Equal(t, "must be a valid email address", fields["email"])
	assert.Equal(t, "must be at least 6 characters", fields["password"])
}

func TestDecodeJSON_Malformed(t *testing.T) {
	for _, body := range []string{"", "{not json"} {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
		var dst signup
		err := DecodeJSON(httptest.NewRecorder(), req, &dst)
		require.Error(t, err)
		assert.Equal(t, http.StatusBadRequest, apperror.FromError(err).StatusCode())
	}
}

func TestWriteError_Envelope(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	rec := httptest.NewRecorder()
	WriteError(rec, req, apperror.NewForbidden("not allowed to delete this file"))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "not allowed to delete this file", body["message"])

	rec = httptest.NewRecorder()
	WriteError(rec, req, errors.New("open /srv/uploads/x: permission denied"))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "/srv/uploads")
	assert.Contains(t, rec.Body.String(), "internal server error")
}
