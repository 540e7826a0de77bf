package common

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	licensing "licensedesk.com/licensedesk/licensing/core"
)

func TestStatusCode(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("%w: SER-1", licensing.ErrNotFound), http.StatusNotFound},
		{fmt.Errorf("%w: SER-1", licensing.ErrConflict), http.StatusConflict},
		{licensing.ErrAlreadyBound, http.StatusConflict},
		{fmt.Errorf("%w: bad status", licensing.ErrInvalidInput), http.StatusBadRequest},
		{licensing.ErrNotActivatable, http.StatusForbidden},
		{licensing.ErrInvalidCredentials, http.StatusUnauthorized},
		{errors.New("connection refused"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.want, StatusCode(tt.err))
		})
	}
}

func TestAbortWithErrorHidesInternalDetail(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		err         error
		wantStatus  int
		wantMessage string
	}{
		{fmt.Errorf("%w: SER-9", licensing.ErrNotFound), http.StatusNotFound, "license not found: SER-9"},
		{errors.New("dial tcp: refused"), http.StatusInternalServerError, "Internal Server Error"},
	}
	for _, tt := range tests {
		t.Run(tt.wantMessage, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
			AbortWithError(c, zap.NewNop(), tt.err)

			assert.Equal(t, tt.wantStatus, w.Code)
			var body ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.wantMessage, body.Message)
		})
	}
}

type loginBody struct {
	Username string `json:"username" binding:"required"`
	Age      int    `json:"age" binding:"omitempty,min=18"`
}

func TestFormatBindingError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	bind := func(body string) error {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
		c.Request.Header.Set("Content-Type", "application/json")
		var out loginBody
		return c.ShouldBindJSON(&out)
	}

	tests := []struct {
		name string
		body string
		want string
	}{
		{"missing field", `{}`, "Field 'username' is required"},
		{"min", `{"username":"a","age":3}`, "Field 'age' must be at least 18"},
		{"wrong type", `{"username":1}`, "Field 'username' should be of type string"},
		{"syntax", `{"username":`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := FormatBindingError(bind(tt.body))
			if tt.want == "" {
				assert.NotEmpty(t, msg)
				return
			}
			assert.Equal(t, tt.want, msg)
		})
	}

	assert.Equal(t, "Request body is empty", FormatBindingError(io.EOF))
	assert.Equal(t, "", FormatBindingError(nil))
}
