package controllers

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/allocat-dev/allocat/modules/planning/presentation/controllers/dtos"
	"github.com/allocat-dev/allocat/modules/planning/services"
	"github.com/allocat-dev/allocat/pkg/application"
	"github.com/allocat-dev/allocat/pkg/configuration"
	"github.com/allocat-dev/allocat/pkg/middleware"
)

// ValidationController runs the engine over posted batches or the stored
// collections and serves the latest aggregated report.
type ValidationController struct {
	app        application.Application
	basePath   string
	datasets   *services.DatasetService
	validation *services.ValidationService
	reports    *services.ReportService
}

func NewValidationController(
	app application.Application,
	datasets *services.DatasetService,
	validation *services.ValidationService,
	reports *services.ReportService,
) application.Controller {
	return &ValidationController{
		app:        app,
		basePath:   "/planning/api",
		datasets:   datasets,
		validation: validation,
		reports:    reports,
	}
}

func (c *ValidationController) Key() string {
	return c.basePath + "/validate"
}

func (c *ValidationController) Register(r *mux.Router) {
	router := r.PathPrefix(c.basePath).Subrouter()
	router.Handle(
		"/validate/{kind}",
		middleware.RateLimit(middleware.RateLimitConfig{
			RequestsPerPeriod: 60,
			Period:            time.Minute,
			KeyFunc:           middleware.EndpointKeyFunc("planning.api.validate"),
		})(http.HandlerFunc(c.validate)),
	).Methods(http.MethodPost)
	router.HandleFunc("/reports/latest", c.latestReport).Methods(http.MethodGet)
}

func (c *ValidationController) validate(w http.ResponseWriter, r *http.Request) {
	kind, ok := kindFromRequest(w, r)
	if !ok {
		return
	}

	// An empty body means "validate what is stored".
	var req dtos.ValidateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		writeJSONError(w, http.StatusBadRequest, "PLANNING_INVALID_BODY", "invalid JSON body")
		return
	}
	records := req.Records
	if records == nil {
		records = c.datasets.Collection(r.Context(), kind)
	}
	if max := configuration.Use().Validation.MaxBatchSize; len(records) > max {
		writeJSONError(w, http.StatusRequestEntityTooLarge, "PLANNING_BATCH_TOO_LARGE", "batch exceeds the maximum size", map[string]string{
			"max": strconv.Itoa(max),
		})
		return
	}

	results := c.validation.ValidateBatch(r.Context(), records, kind)
	report := c.reports.Summarize(results)
	middleware.RequestLogger(r).WithField("kind", kind).Infof(
		"validated %d records, %d valid", report.Summary.TotalRecords, report.Summary.ValidRecords)
	writeJSON(w, http.StatusOK, dtos.ValidateResponse{
		Results: results,
		Report:  report,
	})
}

func (c *ValidationController) latestReport(w http.ResponseWriter, r *http.Request) {
	report, ok := c.reports.Latest()
	if !ok {
		writeJSONError(w, http.StatusNotFound, "PLANNING_NO_REPORT", "no report generated yet")
		return
	}
	writeJSON(w, http.StatusOK, report)
}
