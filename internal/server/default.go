package server

import (
	"strings"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/allocat-dev/allocat/modules/planning/presentation/controllers"
	"github.com/allocat-dev/allocat/pkg/application"
	"github.com/allocat-dev/allocat/pkg/configuration"
	"github.com/allocat-dev/allocat/pkg/middleware"
	"github.com/allocat-dev/allocat/pkg/server"
)

type DefaultOptions struct {
	Logger        *logrus.Logger
	Configuration *configuration.Configuration
	Application   application.Application
}

// Default assembles the standard middleware stack and the HTTP server with
// JSON fallbacks for unmatched routes.
func Default(options *DefaultOptions) (*server.HTTPServer, error) {
	app := options.Application

	middlewares := []mux.MiddlewareFunc{
		middleware.WithLogger(options.Logger),
		middleware.Cors(strings.Split(options.Configuration.AllowedOrigins, ",")...),
	}
	if options.Configuration.RateLimit.Enabled {
		middlewares = append(middlewares, middleware.RateLimit(middleware.RateLimitConfig{
			RequestsPerPeriod: options.Configuration.RateLimit.RequestsPerPeriod,
			Period:            options.Configuration.RateLimit.Period,
		}))
	}
	app.RegisterMiddleware(middlewares...)

	return server.NewHTTPServer(
		app,
		controllers.NotFound(),
		controllers.MethodNotAllowed(),
	), nil
}
