package controllers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/allocat-dev/allocat/modules/planning"
	"github.com/allocat-dev/allocat/pkg/application"
	"github.com/allocat-dev/allocat/pkg/eventbus"
)

func setupRouter(t *testing.T) *mux.Router {
	t.Helper()

	logger := logrus.New()
	logger.SetOutput(io.Discard)
	app := application.New(&application.ApplicationOptions{
		EventBus: eventbus.NewEventPublisher(logger),
		Logger:   logger,
	})
	require.NoError(t, planning.NewModule().Register(app))

	router := mux.NewRouter()
	for _, controller := range app.Controllers() {
		controller.Register(router)
	}
	return router
}

func doJSON(t *testing.T, router *mux.Router, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	return recorder
}

func decode[T any](t *testing.T, recorder *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &out))
	return out
}

func TestHealth(t *testing.T) {
	t.Parallel()
	router := setupRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[map[string]string](t, rec)
	assert.Equal(t, "ok", body["status"])
}

func TestDatasets_ReplaceAndRead(t *testing.T) {
	t.Parallel()
	router := setupRouter(t)

	rec := doJSON(t, router, http.MethodPut, "/planning/api/datasets/clients", map[string]any{
		"records": []map[string]any{
			{"ClientID": "C1", "ClientName": "Acme"},
			{"ClientID": "C2", "ClientName": "Globex"},
		},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/planning/api/datasets/clients", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[map[string]any](t, rec)
	assert.EqualValues(t, 2, body["count"])

	rec = doJSON(t, router, http.MethodGet, "/planning/api/datasets", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	summary := decode[map[string]int](t, rec)
	assert.Equal(t, 2, summary["clients"])
	assert.Equal(t, 0, summary["workers"])
}

func TestDatasets_UnknownKind(t *testing.T) {
	t.Parallel()
	router := setupRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/planning/api/datasets/departments", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decode[map[string]any](t, rec)
	assert.Equal(t, "PLANNING_INVALID_KIND", body["code"])
}

func TestValidate_PostedBatch(t *testing.T) {
	t.Parallel()
	router := setupRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/planning/api/validate/clients", map[string]any{
		"records": []map[string]any{
			{"ClientID": "C1", "ClientName": "Acme"},
			{"ClientName": "No ID"},
		},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Results []struct {
			RecordID string `json:"recordId"`
			IsValid  bool   `json:"isValid"`
			Score    int    `json:"score"`
		} `json:"results"`
		Report struct {
			Summary struct {
				TotalRecords int `json:"totalRecords"`
				ValidRecords int `json:"validRecords"`
			} `json:"summary"`
		} `json:"report"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Results, 2)
	assert.True(t, body.Results[0].IsValid)
	assert.False(t, body.Results[1].IsValid)
	assert.Equal(t, 2, body.Report.Summary.TotalRecords)
	assert.Equal(t, 1, body.Report.Summary.ValidRecords)
}

func TestValidate_EmptyBodyValidatesStoredCollection(t *testing.T) {
	t.Parallel()
	router := setupRouter(t)

	rec := doJSON(t, router, http.MethodPut, "/planning/api/datasets/workers", map[string]any{
		"records": []map[string]any{
			{"WorkerID": "W1", "WorkerName": "Ann", "Skills": "Go"},
		},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/planning/api/validate/workers", nil)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	require.Equal(t, http.StatusOK, recorder.Code)

	var body struct {
		Results []json.RawMessage `json:"results"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	assert.Len(t, body.Results, 1)
}

func TestReports_Latest(t *testing.T) {
	t.Parallel()
	router := setupRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/planning/api/reports/latest", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/planning/api/validate/clients", map[string]any{
		"records": []map[string]any{{"ClientID": "C1", "ClientName": "Acme"}},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/planning/api/reports/latest", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	// Replacing a dataset makes the cached report stale again.
	rec = doJSON(t, router, http.MethodPut, "/planning/api/datasets/clients", map[string]any{
		"records": []map[string]any{{"ClientID": "C2"}},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/planning/api/reports/latest", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRules_CRUD(t *testing.T) {
	t.Parallel()
	router := setupRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/planning/api/rules/clients", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	listed := decode[[]map[string]any](t, rec)
	require.Len(t, listed, 5)

	rec = doJSON(t, router, http.MethodPost, "/planning/api/rules/clients", map[string]any{
		"name":     "Region required",
		"field":    "Region",
		"message":  "Region is required",
		"severity": "warning",
		"predicate": map[string]any{
			"type": "required",
		},
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decode[map[string]any](t, rec)
	id, ok := created["id"].(string)
	require.True(t, ok)
	require.NotEmpty(t, id)

	rec = doJSON(t, router, http.MethodPatch, "/planning/api/rules/clients/"+id, map[string]any{
		"severity": "error",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	updated := decode[map[string]any](t, rec)
	assert.Equal(t, "error", updated["severity"])

	rec = doJSON(t, router, http.MethodDelete, "/planning/api/rules/clients/"+id, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, router, http.MethodDelete, "/planning/api/rules/clients/"+id, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	body := decode[map[string]any](t, rec)
	assert.Equal(t, "PLANNING_RULE_NOT_FOUND", body["code"])
}

func TestRules_InvalidPayloads(t *testing.T) {
	t.Parallel()
	router := setupRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/planning/api/rules/clients", map[string]any{
		"field":    "Region",
		"message":  "bad severity",
		"severity": "catastrophic",
		"predicate": map[string]any{
			"type": "required",
		},
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/planning/api/rules/clients", map[string]any{
		"field":    "Region",
		"message":  "bad predicate",
		"severity": "error",
		"predicate": map[string]any{
			"type": "teleport",
		},
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/planning/api/rules/clients", map[string]any{
		"severity": "error",
		"predicate": map[string]any{
			"type": "required",
		},
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decode[map[string]any](t, rec)
	assert.Equal(t, "PLANNING_INVALID_RULE", body["code"])
}
