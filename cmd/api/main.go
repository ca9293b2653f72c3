package main

import (
	"github.com/sirupsen/logrus"

	"go-pdm-fleet-dashboard/internal/config"
	httpapi "go-pdm-fleet-dashboard/internal/http"
)

var version = "dev"

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg := config.FromEnv()
	srv, err := httpapi.NewServer(cfg, log)
	if err != nil {
		log.WithError(err).Fatal("failed to initialize server")
	}

	log.WithFields(logrus.Fields{
		"version": version,
		"addr":    cfg.ListenAddr,
	}).Info("starting dashboard server")
	if err := srv.ListenAndServe(); err != nil {
		log.Fatal(err)
	}
}
