package mux_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jcpaschoal/lido/app/sdk/mux"
	"github.com/jcpaschoal/lido/foundation/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Liveness(t *testing.T) {
	h := mux.Debug(mux.Config{Build: "test", Log: logger.Discard()})

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/debug/liveness", nil))

	require.Equal(t, http.StatusOK, w.Code)

	var got map[string]string
	require.NoError(t, json.NewDecoder(w.Body).Decode(&got))
	assert.Equal(t, "up", got["status"])
	assert.Equal(t, "test", got["build"])
}

func Test_Metrics(t *testing.T) {
	h := mux.Debug(mux.Config{Build: "test", Log: logger.Discard()})

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "go_goroutines")
}
