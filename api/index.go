// Package handler exposes the HTTP API as a single net/http function for
// serverless hosts.
package handler

import (
	"log/slog"
	"net/http"
	"sync"

	"github.com/amirasaad/mobank/infra/initializer"
	"github.com/amirasaad/mobank/pkg/app"
	"github.com/amirasaad/mobank/pkg/config"
	"github.com/amirasaad/mobank/webapi"
	"github.com/amirasaad/mobank/webapi/common"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
)

var entry = newHandler(func() (*config.App, error) { return config.Load(".env") })

// Handler is the main entry point of the application.
// Think of it like the main() method
func Handler(w http.ResponseWriter, r *http.Request) {
	// This is needed to set the proper request path in `*fiber.Ctx`
	r.RequestURI = r.URL.String()

	entry(w, r)
}

// newHandler builds the fiber application on the first request and reuses
// it for the lifetime of the instance. A failed build answers 503.
func newHandler(load func() (*config.App, error)) http.HandlerFunc {
	var (
		once sync.Once
		h    http.Handler
		err  error
	)
	return func(w http.ResponseWriter, r *http.Request) {
		once.Do(func() {
			var cfg *config.App
			if cfg, err = load(); err != nil {
				slog.Error("Failed to load application configuration", "error", err)
				return
			}
			var deps *app.Deps
			// Serverless instances are frozen, not stopped, so the handles stay open.
			if deps, _, err = initializer.InitializeDependencies(cfg); err != nil {
				slog.Error("Failed to initialize dependencies", "error", err)
				return
			}
			h = adaptor.FiberApp(webapi.SetupApp(app.New(deps, cfg)))
		})
		if err != nil {
			w.Header().Set("Content-Type", common.MIMEProblemJSON)
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"type":"about:blank","title":"Service unavailable","status":503,"code":"STORAGE_UNAVAILABLE"}`))
			return
		}
		h.ServeHTTP(w, r)
	}
}
