package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
)

func setupServer(cfg *Config, services *Services) *http.Server {
	return &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Port),
		Handler:           setupHandler(services),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}

func setupHandler(services *Services) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	c := cors.New(cors.Options{
		AllowedMethods: []string{
			http.MethodHead,
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodPatch,
			http.MethodDelete,
		},
		AllowedOrigins: []string{"*"},
		AllowedHeaders: []string{"*"},
	})

	registerServices(r, services)
	r.Method(http.MethodGet, "/health", services.Health)

	// WebSocket upgrades need the raw HTTP/1.1 connection; h2c passes them through untouched.
	return h2c.NewHandler(c.Handler(r), &http2.Server{})
}

func registerServices(r chi.Router, services *Services) {
	services.Roster.RegisterRoutes(r)
	services.Drafts.RegisterRoutes(r)
	services.Gateway.RegisterRoutes(r)
	if services.Archive != nil {
		services.Archive.RegisterRoutes(r)
	}
}
