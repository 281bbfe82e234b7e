package main

import (
	"errors"
	"net/http"
	"time"

	"github.com/mbolis/branch-portal/app"
	"github.com/mbolis/branch-portal/config"
	"github.com/mbolis/branch-portal/database"
	"github.com/mbolis/branch-portal/httpx"
	"github.com/mbolis/branch-portal/log"
	"github.com/mbolis/branch-portal/routes"
)

func main() {
	cfg, err := config.ParseFlags()
	if err != nil {
		log.Fatal("main.config:", err)
	}
	if cfg.Debug {
		log.SetLevel(log.DebugLevel)
	}
	log.UseJSON(cfg.LogJSON)

	db, err := database.Open(cfg.DBUrl)
	if err != nil {
		log.Fatal("main.db.open:", err)
	}
	defer db.Close()

	sweeper, err := httpx.ScheduleTokenSweep(db, cfg.TokenSweep)
	if err != nil {
		log.Fatal("main.token_sweep:", err)
	}
	defer sweeper.Stop()

	app, err := app.New(db, httpx.NewBearerServer(db, cfg), cfg)
	if err != nil {
		log.Fatal("main.app:", err)
	}
	log.Infof("Backend transport: %s", cfg.Transport)

	handler := routes.Wire(app)

	err = runServer(cfg, handler)
	if !errors.Is(err, http.ErrServerClosed) {
		log.Fatal("main.server:", err)
	}
}

func runServer(cfg config.Config, handler http.Handler) error {
	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      handler,
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.HTTPTimeout + 10*time.Second,
	}

	log.Info("Listening on " + cfg.Url())
	return srv.ListenAndServe()
}
