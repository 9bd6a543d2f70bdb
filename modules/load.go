package modules

import (
	"github.com/allocat-dev/allocat/modules/planning"
	"github.com/allocat-dev/allocat/pkg/application"
)

var BuiltInModules = []application.Module{
	planning.NewModule(),
}

func Load(app application.Application, externalModules ...application.Module) error {
	for _, module := range externalModules {
		if err := module.Register(app); err != nil {
			return err
		}
	}
	return nil
}
