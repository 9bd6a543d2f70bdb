package services_test

import (
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/allocat-dev/allocat/modules/planning/domain/entities/dataset"
	"github.com/allocat-dev/allocat/modules/planning/infrastructure/memory"
	"github.com/allocat-dev/allocat/modules/planning/services"
	"github.com/allocat-dev/allocat/pkg/eventbus"
)

type engineFixture struct {
	Bus        eventbus.EventBus
	Store      dataset.Store
	Rules      *services.RuleService
	Validation *services.ValidationService
}

func setupEngine(t *testing.T) *engineFixture {
	t.Helper()

	logger := logrus.New()
	logger.SetOutput(io.Discard)
	bus := eventbus.NewEventPublisher(logger)

	rules, err := services.NewRuleService(bus, logger)
	require.NoError(t, err)

	store := memory.NewDatasetStore()
	return &engineFixture{
		Bus:        bus,
		Store:      store,
		Rules:      rules,
		Validation: services.NewValidationService(rules, store, logger, 4),
	}
}
