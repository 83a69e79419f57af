// Copyright (C) 2026 BioGuard contributors.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package app assembles a BioGuard server process: logging,
// configuration, the secret-guarded keystore, the file-backed stores, the
// domain services, the router, and the TLS transport, in that order.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/donpedromz/bioguard/internal/config"
	"github.com/donpedromz/bioguard/internal/controllers"
	"github.com/donpedromz/bioguard/internal/errs"
	"github.com/donpedromz/bioguard/internal/logging"
	"github.com/donpedromz/bioguard/internal/metrics"
	"github.com/donpedromz/bioguard/internal/router"
	"github.com/donpedromz/bioguard/internal/secrets"
	"github.com/donpedromz/bioguard/internal/services/diagnosesvc"
	"github.com/donpedromz/bioguard/internal/services/diseasesvc"
	"github.com/donpedromz/bioguard/internal/services/patientsvc"
	"github.com/donpedromz/bioguard/internal/stores/diagnosisstore"
	"github.com/donpedromz/bioguard/internal/stores/diseasestore"
	"github.com/donpedromz/bioguard/internal/stores/historystore"
	"github.com/donpedromz/bioguard/internal/stores/patientstore"
	"github.com/donpedromz/bioguard/internal/stores/reportstore"
	"github.com/donpedromz/bioguard/internal/transport"
)

// summaryInterval is how often RunSummaryLoop logs a metrics snapshot.
const summaryInterval = 5 * time.Minute

// Options controls how a process is assembled on top of a loaded Config.
type Options struct {
	ConfigPath       string
	Addr             string
	EnablePrometheus bool
	LogDir           string
	Quiet            bool
}

// App owns every long-lived component of a running BioGuard server.
type App struct {
	Log      *logging.Logger
	Metrics  metrics.Collector
	Keystore *secrets.Keystore
	Server   *transport.Server
}

// New loads configuration, opens the keystore, opens every store, wires
// the services and router, and binds the TLS listener. The returned App
// is ready for Run but has not yet started accepting connections.
func New(opts Options) (*App, error) {
	log := logging.New(logging.Config{
		Service: "bioguard",
		LogDir:  opts.LogDir,
		Quiet:   opts.Quiet,
	})

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}

	keystorePath, err := cfg.Require(config.KeyKeystorePath)
	if err != nil {
		return nil, err
	}
	keystorePassword, err := cfg.Require(config.KeyKeystorePassword)
	if err != nil {
		return nil, err
	}
	keystore, err := secrets.Open(keystorePath, keystorePassword)
	if err != nil {
		return nil, err
	}

	patientsPath, err := cfg.Require(config.KeyPatientsCSVPath)
	if err != nil {
		keystore.Close()
		return nil, err
	}
	diseasesDir, err := cfg.Require(config.KeyDiseasesDirectory)
	if err != nil {
		keystore.Close()
		return nil, err
	}
	diagnosticsDir, err := cfg.Require(config.KeyDiagnosticsDirectory)
	if err != nil {
		keystore.Close()
		return nil, err
	}
	reportsDir, err := cfg.Require(config.KeyHighInfectiousnessDirectory)
	if err != nil {
		keystore.Close()
		return nil, err
	}

	patients, err := patientstore.New(patientsPath, log.Slog())
	if err != nil {
		keystore.Close()
		return nil, err
	}
	diseases, err := diseasestore.New(diseasesDir, log.Slog())
	if err != nil {
		keystore.Close()
		return nil, err
	}
	diagnoses, err := diagnosisstore.New(diagnosticsDir, log.Slog())
	if err != nil {
		keystore.Close()
		return nil, err
	}
	reports, err := reportstore.New(reportsDir + "/high_infectiousness_report.csv")
	if err != nil {
		keystore.Close()
		return nil, err
	}
	history, err := historystore.New(diagnosticsDir)
	if err != nil {
		keystore.Close()
		return nil, err
	}

	patientSvc := patientsvc.New(patients)
	diseaseSvc := diseasesvc.New(diseases)
	diagnoseSvc := diagnosesvc.New(patients, diseases, diagnoses, reports, history, log.Slog())

	r := router.New()
	r.Handle("POST", "patient", controllers.Patient(patientSvc))
	r.Handle("POST", "disease", controllers.Disease(diseaseSvc))
	r.Handle("POST", "diagnose", controllers.Diagnose(diagnoseSvc))

	var collector metrics.Collector
	if opts.EnablePrometheus {
		collector = metrics.NewPrometheus()
	} else {
		collector = metrics.NewNoop()
	}
	if err := collector.Register(); err != nil {
		keystore.Close()
		return nil, errs.Wrap(errs.Persistence, "app: register metrics", err)
	}

	addr := opts.Addr
	if addr == "" {
		port, err := cfg.Require(config.KeyServerPort)
		if err != nil {
			keystore.Close()
			return nil, err
		}
		addr = fmt.Sprintf(":%s", port)
	}

	srv, err := transport.New(transport.Config{
		Addr:        addr,
		Certificate: keystore.Certificate(),
		Dispatch:    r,
		Log:         log,
		Metrics:     collector,
	})
	if err != nil {
		keystore.Close()
		return nil, err
	}

	return &App{Log: log, Metrics: collector, Keystore: keystore, Server: srv}, nil
}

// Run accepts connections until ctx is cancelled, then releases the
// keystore and flushes the log.
func (a *App) Run(ctx context.Context) error {
	defer a.Keystore.Close()
	defer a.Log.Close()

	stop := make(chan struct{})
	go metrics.RunSummaryLoop(a.Log, a.Metrics, summaryInterval, stop)
	defer close(stop)

	a.Log.Info("bioguard listening", "addr", a.Server.Addr().String())
	return a.Server.Run(ctx)
}
