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
)

// DiseaseRegistrar registers a parsed disease.
type DiseaseRegistrar interface {
	Register(disease domain.Disease) (domain.Disease, error)
}

// Disease builds the POST:disease controller.
func Disease(svc DiseaseRegistrar) router.Controller {
	return func(req router.Request) string {
		if req.ContentType != parsers.ContentTypeFasta {
			return response.Error(errs.InvalidFormatf("unsupported content-type %q", req.ContentType))
		}

		disease, err := parsers.ParseDisease(req.Body)
		if err != nil {
			return response.Error(err)
		}

		saved, err := svc.Register(disease)
		if err != nil {
			return response.Error(err)
		}

		return response.Success(201, "Created", "enfermedad registrada exitosamente: "+saved.ID)
	}
}
