// Package planning is the resource-allocation configurator core: the
// session-scoped dataset registry, the mutable rule catalog, the record and
// cross-record validation engine and its report aggregation, plus the JSON
// API in front of them.
package planning

import (
	"github.com/allocat-dev/allocat/modules/planning/domain/entities/dataset"
	"github.com/allocat-dev/allocat/modules/planning/infrastructure/memory"
	"github.com/allocat-dev/allocat/modules/planning/presentation/controllers"
	"github.com/allocat-dev/allocat/modules/planning/services"
	"github.com/allocat-dev/allocat/pkg/application"
	"github.com/allocat-dev/allocat/pkg/configuration"
)

func NewModule() application.Module {
	return &Module{}
}

type Module struct{}

func (m *Module) Name() string {
	return "planning"
}

func (m *Module) Register(app application.Application) error {
	conf := configuration.Use()

	store := memory.NewDatasetStore()
	ruleService, err := services.NewRuleService(app.EventPublisher(), app.Logger())
	if err != nil {
		return err
	}
	datasetService := services.NewDatasetService(store, app.EventPublisher())
	validationService := services.NewValidationService(ruleService, store, app.Logger(), conf.Validation.Workers)
	reportService := services.NewReportService()

	// A replaced collection makes the cached report stale.
	app.EventPublisher().Subscribe(func(event *dataset.ReplacedEvent) {
		reportService.Invalidate()
	})

	app.RegisterServices(
		ruleService,
		datasetService,
		validationService,
		reportService,
	)
	app.RegisterControllers(
		controllers.NewDatasetController(app, datasetService),
		controllers.NewValidationController(app, datasetService, validationService, reportService),
		controllers.NewRulesController(app, ruleService),
		controllers.NewHealthController(),
	)
	return nil
}
