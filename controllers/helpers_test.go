package controllers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/soilq/soilq-api/config"
	"github.com/soilq/soilq-api/models"
	"github.com/soilq/soilq-api/tests/testutil"
)

const (
	farmerID = "auth0|farmer"
	otherID  = "auth0|neighbour"
)

// setupTestDB installs a fresh database as the process-wide handle
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db := testutil.NewTestDB(t)
	original := config.GetDB()
	config.SetDB(db)
	t.Cleanup(func() { config.SetDB(original) })
	return db
}

func setupTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

// useConfig installs cfg for the duration of the test
func useConfig(t *testing.T, cfg *config.Config) {
	t.Helper()

	config.SetConfig(cfg)
	t.Cleanup(func() { config.SetConfig(nil) })
}

func seedProducts(t *testing.T, db *gorm.DB) {
	t.Helper()

	products := []models.Product{
		{SKU: "AMD-LIME", Name: "Agricultural Lime", Price: 15.99, Category: "amendment", InStock: true, Rating: 4.5},
		{SKU: "FRT-AN-34", Name: "Ammonium Nitrate 34-0-0", Price: 22.50, Category: "fertilizer", InStock: true, Rating: 4.2},
		{SKU: "SED-TOM", Name: "Tomato Seeds", Price: 3.25, Category: "seeds", InStock: false, Rating: 4.8},
	}
	require.NoError(t, db.Create(&products).Error)
}

func doRequest(router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Details string `json:"details"`
	} `json:"error"`
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), "body: %s", w.Body.String())
	return env
}

// decodeData unmarshals the envelope's data into out
func decodeData(t *testing.T, w *httptest.ResponseRecorder, out any) {
	t.Helper()

	env := decodeEnvelope(t, w)
	require.True(t, env.Success, "body: %s", w.Body.String())
	require.NoError(t, json.Unmarshal(env.Data, out))
}

func requireErrorCode(t *testing.T, w *httptest.ResponseRecorder, status int, code string) {
	t.Helper()

	require.Equal(t, status, w.Code, "body: %s", w.Body.String())
	env := decodeEnvelope(t, w)
	require.False(t, env.Success)
	require.Equal(t, code, env.Error.Code)
}

func decodeJSON(t *testing.T, w *httptest.ResponseRecorder, out any) {
	t.Helper()

	require.NoError(t, json.Unmarshal(w.Body.Bytes(), out), "body: %s", w.Body.String())
}
