package utils

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestSendJSONError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("client error keeps message and details", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/x", nil)

		SendJSONError(c, http.StatusBadRequest, "bad input", nil, "value out of range")

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.JSONEq(t, `{"error":"bad input","details":"value out of range"}`, w.Body.String())
		assert.True(t, c.IsAborted())
	})

	t.Run("server error hides internal message", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/x", nil)

		err := errors.New("db exploded")
		SendJSONError(c, http.StatusInternalServerError, err.Error(), err)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.NotContains(t, w.Body.String(), "db exploded")
	})
}

func TestGuestIDs(t *testing.T) {
	id := GenerateGuestID()
	assert.True(t, strings.HasPrefix(id, GuestPrefix))
	assert.True(t, IsGuest(id))
	assert.True(t, IsGuest(""))
	assert.False(t, IsGuest("user_42"))
	assert.NotEqual(t, GenerateID(), GenerateID())
}
