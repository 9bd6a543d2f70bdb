package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/allocat-dev/allocat/modules/planning/domain/entities/record"
	"github.com/allocat-dev/allocat/modules/planning/presentation/controllers/dtos"
	"github.com/allocat-dev/allocat/modules/planning/services"
	"github.com/allocat-dev/allocat/pkg/application"
	"github.com/allocat-dev/allocat/pkg/middleware"
)

// DatasetController exposes the ingestion boundary: wholesale replacement
// and readback of the three entity collections.
type DatasetController struct {
	app      application.Application
	basePath string
	datasets *services.DatasetService
}

func NewDatasetController(app application.Application, datasets *services.DatasetService) application.Controller {
	return &DatasetController{
		app:      app,
		basePath: "/planning/api",
		datasets: datasets,
	}
}

func (c *DatasetController) Key() string {
	return c.basePath + "/datasets"
}

func (c *DatasetController) Register(r *mux.Router) {
	router := r.PathPrefix(c.basePath).Subrouter()
	router.HandleFunc("/datasets", c.listDatasets).Methods(http.MethodGet)
	router.HandleFunc("/datasets/{kind}", c.replaceDataset).Methods(http.MethodPut)
	router.HandleFunc("/datasets/{kind}", c.getDataset).Methods(http.MethodGet)
}

// kindFromRequest parses the {kind} path variable, writing the error
// response itself on failure.
func kindFromRequest(w http.ResponseWriter, r *http.Request) (record.Kind, bool) {
	raw := mux.Vars(r)["kind"]
	kind, err := record.ParseKind(raw)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "PLANNING_INVALID_KIND", "unknown entity kind", map[string]string{
			"kind": raw,
		})
		return "", false
	}
	return kind, true
}

func (c *DatasetController) replaceDataset(w http.ResponseWriter, r *http.Request) {
	kind, ok := kindFromRequest(w, r)
	if !ok {
		return
	}
	var req dtos.DatasetUploadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "PLANNING_INVALID_BODY", "invalid JSON body")
		return
	}
	c.datasets.SetCollection(r.Context(), kind, req.Records)
	middleware.RequestLogger(r).WithField("kind", kind).Infof("replaced collection with %d records", len(req.Records))
	writeJSON(w, http.StatusOK, dtos.DatasetResponse{
		Kind:    kind,
		Count:   len(req.Records),
		Records: req.Records,
	})
}

func (c *DatasetController) getDataset(w http.ResponseWriter, r *http.Request) {
	kind, ok := kindFromRequest(w, r)
	if !ok {
		return
	}
	records := c.datasets.Collection(r.Context(), kind)
	writeJSON(w, http.StatusOK, dtos.DatasetResponse{
		Kind:    kind,
		Count:   len(records),
		Records: records,
	})
}

func (c *DatasetController) listDatasets(w http.ResponseWriter, r *http.Request) {
	snapshot := c.datasets.All(r.Context())
	writeJSON(w, http.StatusOK, dtos.DatasetSummaryResponse{
		Clients: len(snapshot.Clients),
		Workers: len(snapshot.Workers),
		Tasks:   len(snapshot.Tasks),
	})
}
