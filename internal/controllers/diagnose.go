// Copyright (C) 2026 BioGuard contributors.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package controllers

import (
	"github.com/donpedromz/bioguard/internal/domain"
	"github.com/donpedromz/bioguard/internal/errs"
	"github.com/donpedromz/bioguard/internal/parsers"
	"github.com/donpedromz/bioguard/internal/response"
	"github.com/donpedromz/bioguard/internal/router"
	"github.com/donpedromz/bioguard/internal/services/diagnosesvc"
)

// Diagnoser runs the diagnosis pipeline for a parsed request.
type Diagnoser interface {
	Diagnose(req domain.DiagnoseRequest) (diagnosesvc.Result, error)
}

// Diagnose builds the POST:diagnose controller.
func Diagnose(svc Diagnoser) router.Controller {
	return func(req router.Request) string {
		if req.ContentType != parsers.ContentTypeFasta {
			return response.Error(errs.InvalidFormatf("unsupported content-type %q", req.ContentType))
		}

		diagReq, err := parsers.ParseDiagnose(req.Body)
		if err != nil {
			return response.Error(err)
		}

		result, err := svc.Diagnose(diagReq)
		if err != nil {
			return response.Error(err)
		}

		return response.Success(200, "Success", "diagnostico generado exitosamente", result.OperationMessages...)
	}
}
