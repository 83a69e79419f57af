// Copyright (C) 2026 BioGuard contributors.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package transport

import (
	"context"
	"crypto/tls"
	"net"
	"strings"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/donpedromz/bioguard/internal/errs"
	"github.com/donpedromz/bioguard/internal/logging"
	"github.com/donpedromz/bioguard/internal/metrics"
	"github.com/donpedromz/bioguard/internal/response"
)

// Dispatcher routes one decoded request frame to a controller and
// returns the formatted wire response. Satisfied by *router.Router.
type Dispatcher interface {
	Dispatch(frame string) string
}

// Server accepts TLS connections and services one request/response
// frame per connection per the wire protocol.
type Server struct {
	listener net.Listener
	dispatch Dispatcher
	log      *logging.Logger
	metrics  metrics.Collector
	limiter  *rate.Limiter
}

// Config configures a Server.
type Config struct {
	Addr        string
	Certificate tls.Certificate
	Dispatch    Dispatcher
	Log         *logging.Logger
	Metrics     metrics.Collector
	AcceptRate  rate.Limit
	AcceptBurst int
}

// New binds a TLS listener at cfg.Addr and returns a Server ready to Run.
func New(cfg Config) (*Server, error) {
	tlsConfig := &tls.Config{
		Certificates: []tls.Certificate{cfg.Certificate},
		MinVersion:   tls.VersionTLS12,
	}

	ln, err := tls.Listen("tcp", cfg.Addr, tlsConfig)
	if err != nil {
		return nil, errs.Wrap(errs.Persistence, "transport: listen on "+cfg.Addr, err)
	}

	acceptRate := cfg.AcceptRate
	if acceptRate == 0 {
		acceptRate = 50
	}
	burst := cfg.AcceptBurst
	if burst == 0 {
		burst = 10
	}

	return &Server{
		listener: ln,
		dispatch: cfg.Dispatch,
		log:      cfg.Log,
		metrics:  cfg.Metrics,
		limiter:  rate.NewLimiter(acceptRate, burst),
	}, nil
}

// Addr reports the bound network address.
func (s *Server) Addr() net.Addr { return s.listener.Addr() }

// Run accepts connections until ctx is cancelled or the listener is
// closed, running each connection's handler in the same errgroup as the
// accept loop. A panicking controller is recovered by safeDispatch; the
// errgroup itself does not recover panics.
func (s *Server) Run(ctx context.Context) error {
	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		<-groupCtx.Done()
		return s.listener.Close()
	})

	group.Go(func() error {
		for {
			if err := s.limiter.Wait(groupCtx); err != nil {
				return nil
			}

			conn, err := s.listener.Accept()
			if err != nil {
				select {
				case <-groupCtx.Done():
					return nil
				default:
					return errs.Wrap(errs.Persistence, "transport: accept", err)
				}
			}

			group.Go(func() error {
				s.handle(conn)
				return nil
			})
		}
	})

	return group.Wait()
}

// handle services exactly one request/response frame per connection
// per the wire protocol, then closes the connection.
func (s *Server) handle(conn net.Conn) {
	defer conn.Close()

	if s.metrics != nil {
		s.metrics.ConnectionOpened()
		defer s.metrics.ConnectionClosed()
	}

	frame, err := ReadFrame(conn)
	if err != nil {
		s.reply(conn, response.Error(err))
		return
	}

	reply := s.safeDispatch(frame)
	s.reply(conn, reply)

	if s.metrics != nil {
		s.metrics.RequestHandled(routeOf(frame), statusOf(reply))
	}
}

// routeOf returns the "METHOD ACTION" first line of frame for metric
// labeling, or "unknown" when the frame has no first line to read.
func routeOf(frame string) string {
	line, _, _ := strings.Cut(frame, "\n")
	line = strings.TrimSpace(line)
	if line == "" {
		return "unknown"
	}
	return line
}

// statusOf extracts the numeric status code from a "[TCP][<code>][...]"
// response line, or "unknown" if the prefix is not in that shape.
func statusOf(reply string) string {
	if !strings.HasPrefix(reply, "[TCP][") {
		return "unknown"
	}
	rest := reply[len("[TCP]["):]
	code, _, ok := strings.Cut(rest, "]")
	if !ok {
		return "unknown"
	}
	return code
}

// safeDispatch recovers from a panicking controller so one malformed
// request cannot crash the accept loop's goroutine group, returning
// the generic internal-error response instead.
func (s *Server) safeDispatch(frame string) (reply string) {
	defer func() {
		if r := recover(); r != nil {
			if s.log != nil {
				s.log.Error("panic while dispatching request", "recovered", r)
			}
			reply = response.Error(errs.New(errs.Unexpected, "panic recovered"))
		}
	}()
	return s.dispatch.Dispatch(frame)
}

func (s *Server) reply(conn net.Conn, message string) {
	if err := WriteFrame(conn, message); err != nil && s.log != nil {
		s.log.Warn("failed to write response frame", "error", err)
	}
}

// Close closes the underlying listener immediately.
func (s *Server) Close() error {
	return s.listener.Close()
}
