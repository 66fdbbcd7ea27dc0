package apperrors

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConstructors(t *testing.T) {
	cases := []struct {
		err    *APIError
		status int
		code   string
		msg    string
	}{
		{Internal(""), http.StatusInternalServerError, "internal_error", "internal server error"},
		{Unauthorized(""), http.StatusUnauthorized, "unauthorized", "unauthorized"},
		{Forbidden("not yours"), http.StatusForbidden, "forbidden", "not yours"},
		{BadRequest("invalid_json", "bad body"), http.StatusBadRequest, "invalid_json", "bad body"},
		{NotFound("document_not_found", "no document"), http.StatusNotFound, "document_not_found", "no document"},
		{TooLarge("too big"), http.StatusRequestEntityTooLarge, "document_too_large", "too big"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.status, tc.err.Status, tc.code)
		assert.Equal(t, tc.code, tc.err.Code)
		assert.Equal(t, tc.msg, tc.err.Error())
	}
}

func TestConflictCarriesDetails(t *testing.T) {
	err := Conflict("email_exists", "email already registered", map[string]string{"email": "a@b.c"})
	assert.Equal(t, http.StatusConflict, err.Status)
	assert.Equal(t, map[string]string{"email": "a@b.c"}, err.Details)
}
