package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/DoyleJ11/kat-overlay/internal/hub"
	"github.com/DoyleJ11/kat-overlay/internal/ws"
)

func SetupRoutes(h *hub.Hub, o Overlay, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", Healthz)
	r.Get("/state", GetState(o))
	r.Put("/text", PutText(o))
	r.Post("/start", Action(o, o.Start))
	r.Post("/stop", Action(o, o.Stop))
	r.Post("/show", Action(o, o.Show))
	r.Post("/hide", Action(o, o.Hide))
	r.Get("/ws", ws.Handler(h, o, logger))
	r.Handle("/metrics", promhttp.Handler())
	return r
}
