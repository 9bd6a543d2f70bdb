package controllers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/allocat-dev/allocat/modules/planning/presentation/controllers/dtos"
	"github.com/allocat-dev/allocat/pkg/application"
)

// HealthController serves the liveness probe.
type HealthController struct {
	basePath string
}

func NewHealthController() application.Controller {
	return &HealthController{basePath: "/health"}
}

func (c *HealthController) Key() string {
	return c.basePath
}

func (c *HealthController) Register(r *mux.Router) {
	r.HandleFunc(c.basePath, c.health).Methods(http.MethodGet)
}

func (c *HealthController) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, dtos.HealthResponse{Status: "ok"})
}
