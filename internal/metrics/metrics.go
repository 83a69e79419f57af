// Copyright (C) 2026 BioGuard contributors.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package metrics records in-process counters for connections, routed
// requests, and store operations.
//
// # Open Core Architecture
//
// Collector is the public interface; Noop records in memory with no
// export, Prometheus registers real collectors. Neither is served over a
// listening port, since the wire protocol exposes no HTTP surface for
// scraping; RunSummaryLoop periodically logs the Noop counters and does
// nothing for a Prometheus collector.
package metrics

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/donpedromz/bioguard/internal/logging"
)

const (
	namespace = "bioguard"
)

// Collector records the events a running server cares about.
type Collector interface {
	ConnectionOpened()
	ConnectionClosed()
	RequestHandled(route, status string)
	StoreOperation(store, result string)
	Register() error
}

// Noop is the FOSS-tier Collector: counters held in memory, no export.
type Noop struct {
	connectionsOpen  atomic.Int64
	connectionsTotal atomic.Int64
	requestsTotal    atomic.Int64
	storeOpsTotal    atomic.Int64
}

// NewNoop returns a Collector that tracks counts in memory only.
func NewNoop() *Noop { return &Noop{} }

func (n *Noop) ConnectionOpened() {
	n.connectionsOpen.Add(1)
	n.connectionsTotal.Add(1)
}

func (n *Noop) ConnectionClosed() { n.connectionsOpen.Add(-1) }

func (n *Noop) RequestHandled(route, status string) { n.requestsTotal.Add(1) }

func (n *Noop) StoreOperation(store, result string) { n.storeOpsTotal.Add(1) }

func (n *Noop) Register() error { return nil }

// snapshot returns the current counter values for a log summary.
func (n *Noop) snapshot() (connectionsOpen, connectionsTotal, requestsTotal, storeOpsTotal int64) {
	return n.connectionsOpen.Load(), n.connectionsTotal.Load(), n.requestsTotal.Load(), n.storeOpsTotal.Load()
}

// Prometheus is the enterprise-tier Collector: labeled Prometheus
// collectors registered with the default registry.
type Prometheus struct {
	connectionsOpen  prometheus.Gauge
	connectionsTotal prometheus.Counter
	requestsTotal    *prometheus.CounterVec
	storeOpsTotal    *prometheus.CounterVec

	mu         sync.Mutex
	registered bool
}

// NewPrometheus builds (but does not yet register) a Prometheus Collector.
func NewPrometheus() *Prometheus {
	return &Prometheus{
		connectionsOpen: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "transport",
			Name:      "connections_open",
			Help:      "Number of live TLS connections.",
		}),
		connectionsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "transport",
			Name:      "connections_total",
			Help:      "Total accepted TLS connections.",
		}),
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "router",
			Name:      "requests_total",
			Help:      "Total routed requests by route and response status.",
		}, []string{"route", "status"}),
		storeOpsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "operations_total",
			Help:      "Total store operations by store name and result.",
		}, []string{"store", "result"}),
	}
}

func (p *Prometheus) ConnectionOpened() {
	p.connectionsOpen.Inc()
	p.connectionsTotal.Inc()
}

func (p *Prometheus) ConnectionClosed() { p.connectionsOpen.Dec() }

func (p *Prometheus) RequestHandled(route, status string) {
	p.requestsTotal.WithLabelValues(route, status).Inc()
}

func (p *Prometheus) StoreOperation(store, result string) {
	p.storeOpsTotal.WithLabelValues(store, result).Inc()
}

// Register registers all collectors with the default Prometheus registry.
// Safe to call more than once.
func (p *Prometheus) Register() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.registered {
		return nil
	}
	collectors := []prometheus.Collector{p.connectionsOpen, p.connectionsTotal, p.requestsTotal, p.storeOpsTotal}
	for _, c := range collectors {
		if err := prometheus.Register(c); err != nil {
			return err
		}
	}
	p.registered = true
	return nil
}

// RunSummaryLoop logs a periodic counter summary every interval until
// stop is closed. Only Noop exposes a meaningful in-memory snapshot;
// a Prometheus-backed collector is summarized via its own scrape path
// in deployments that add one, so RunSummaryLoop is a no-op for it.
func RunSummaryLoop(log *logging.Logger, collector Collector, interval time.Duration, stop <-chan struct{}) {
	noop, ok := collector.(*Noop)
	if !ok {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			open, total, requests, storeOps := noop.snapshot()
			log.Info("metrics summary",
				"connections_open", open,
				"connections_total", total,
				"requests_total", requests,
				"store_operations_total", storeOps,
			)
		}
	}
}

var (
	_ Collector = (*Noop)(nil)
	_ Collector = (*Prometheus)(nil)
)
