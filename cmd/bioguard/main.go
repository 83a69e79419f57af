// Copyright (C) 2026 BioGuard contributors.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Command bioguard starts the BioGuard diagnostic server.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/donpedromz/bioguard/internal/app"
)

var (
	configPath       string
	addr             string
	logDir           string
	quiet            bool
	enablePrometheus bool

	rootCmd = &cobra.Command{
		Use:   "bioguard",
		Short: "BioGuard diagnostic server",
		Long: `BioGuard is a TLS-secured TCP service for registering patients and
diseases and running genetic-sample diagnoses against a content-addressed
file store.`,
	}

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Start the BioGuard server and block until shutdown",
		RunE:  runServe,
	}
)

func init() {
	serveCmd.Flags().StringVar(&configPath, "config", "bioguard.properties", "path to the .properties configuration file")
	serveCmd.Flags().StringVar(&addr, "addr", "", "listen address, overrides server.port from the config file")
	serveCmd.Flags().StringVar(&logDir, "log-dir", "", "directory for JSON log files, stderr-only if empty")
	serveCmd.Flags().BoolVar(&quiet, "quiet", false, "suppress the stderr log sink")
	serveCmd.Flags().BoolVar(&enablePrometheus, "prometheus", false, "register Prometheus collectors instead of the in-memory counters")

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := app.New(app.Options{
		ConfigPath:       configPath,
		Addr:             addr,
		LogDir:           logDir,
		Quiet:            quiet,
		EnablePrometheus: enablePrometheus,
	})
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	return a.Run(ctx)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
