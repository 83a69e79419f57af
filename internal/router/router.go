// Copyright (C) 2026 BioGuard contributors.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package router splits an inbound frame into a Request and dispatches
// it to the controller registered for its METHOD:ACTION route key.
package router

import (
	"strings"

	"github.com/donpedromz/bioguard/internal/errs"
	"github.com/donpedromz/bioguard/internal/response"
)

// Request is the parsed form of a frame's three parts.
type Request struct {
	Method      string
	Action      string
	ContentType string
	Body        string
}

// Controller handles a parsed Request and returns the full response
// payload, including its "[TCP][<code>][<category>] " status prefix.
type Controller func(req Request) string

// Router dispatches frames to the controller registered for their
// METHOD:ACTION route key.
type Router struct {
	routes map[string]Controller
}

// New returns an empty Router.
func New() *Router {
	return &Router{routes: make(map[string]Controller)}
}

// Handle registers controller for method:action, e.g. Handle("POST",
// "patient", patientController).
func (r *Router) Handle(method, action string, controller Controller) {
	r.routes[routeKey(method, action)] = controller
}

func routeKey(method, action string) string {
	return strings.TrimSpace(method) + ":" + strings.TrimSpace(action)
}

// Dispatch splits frame on "\n" into at most 3 parts, resolves the route,
// and invokes its controller. Malformed frames and unknown routes never
// reach a controller; they are mapped directly to their response string.
func (r *Router) Dispatch(frame string) string {
	req, err := parseRequest(frame)
	if err != nil {
		return response.Error(err)
	}

	controller, ok := r.routes[routeKey(req.Method, req.Action)]
	if !ok {
		return response.Error(errs.New(errs.RouteNotFound, "no route for "+routeKey(req.Method, req.Action)))
	}

	return controller(req)
}

func parseRequest(frame string) (Request, error) {
	if strings.TrimSpace(frame) == "" {
		return Request{}, errs.New(errs.MalformedRequest, "empty frame")
	}

	parts := strings.SplitN(frame, "\n", 3)
	if len(parts) < 3 {
		return Request{}, errs.New(errs.MalformedRequest, "frame has fewer than 3 parts")
	}

	methodAction := strings.Fields(parts[0])
	if len(methodAction) < 2 {
		return Request{}, errs.New(errs.MalformedRequest, "missing method or action")
	}

	return Request{
		Method:      strings.TrimSpace(methodAction[0]),
		Action:      strings.TrimSpace(methodAction[1]),
		ContentType: strings.TrimSpace(parts[1]),
		Body:        parts[2],
	}, nil
}

