// Copyright (C) 2026 BioGuard contributors.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package domain

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/donpedromz/bioguard/internal/errs"
)

// toValidationError adapts a validator.ValidationErrors into the shared
// errs.Error taxonomy, collecting every offending field into one failure
// rather than reporting only the first.
func toValidationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return errs.Wrap(errs.Validation, "validation failed", err)
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fe.Field())
	}
	return errs.Validationf(fields, "invalid fields: %s", strings.Join(fields, ", "))
}
