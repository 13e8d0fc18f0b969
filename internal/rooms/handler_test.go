package rooms

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openroom/backend/config"
)

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(config.LiveKitConfig{
		URL:       "http://localhost:7880",
		APIKey:    "devkey",
		APISecret: "devsecret-devsecret-devsecret-32",
	}, nil)
	router := gin.New()
	router.POST("/token", h.CreateToken)
	return router
}

func post(router *gin.Engine, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/token", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestCreateToken(t *testing.T) {
	router := newTestRouter()

	w := post(router, `{"roomName":"room1","participantName":"alice"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		ServerURL string `json:"serverUrl"`
		Token     string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "http://localhost:7880", body.ServerURL)
	assert.NotEmpty(t, body.Token)
}

func TestCreateTokenMissingFields(t *testing.T) {
	router := newTestRouter()

	for _, body := range []string{`{}`, `{"roomName":"room1"}`, `{"participantName":"alice"}`} {
		w := post(router, body)
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
	}
}
