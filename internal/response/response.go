// Copyright (C) 2026 BioGuard contributors.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package response formats the "[TCP][<code>][<category>] <message>"
// status lines shared by the router and every controller.
package response

import (
	"strconv"

	"github.com/donpedromz/bioguard/internal/errs"
)

// Success formats a success status line, appending any non-empty
// operation messages joined by " | " (diagnosis success only).
func Success(code int, category, message string, operationMessages ...string) string {
	line := prefix(code, category) + message
	for _, m := range operationMessages {
		if m == "" {
			continue
		}
		line += " | " + m
	}
	return line
}

// Error maps err to its status line using errs.Kind's status/category.
// CorruptedData, Persistence, and Unexpected never leak their underlying detail.
func Error(err error) string {
	kind := errs.KindOf(err)
	message := err.Error()
	if kind == errs.CorruptedData || kind == errs.Persistence || kind == errs.Unexpected {
		message = "Error interno del servidor"
	}
	return prefix(kind.Status(), kind.String()) + message
}

func prefix(code int, category string) string {
	return "[TCP][" + strconv.Itoa(code) + "][" + category + "] "
}
