// Copyright (C) 2026 BioGuard contributors.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package domain

import "fmt"

// DiagnoseRequest is the parsed, not-yet-validated-against-the-domain
// input to the diagnosis pipeline: a document, an ISO sample date, and a
// genetic sample sequence. It is a distinct type from Diagnostic because
// it exists before the patient lookup and disease scan that produce one.
type DiagnoseRequest struct {
	Document       string `validate:"required,max=20,number"`
	SampleDate     string `validate:"required,isodate"`
	SampleSequence string `validate:"required,min=7,max=5000,fastaseq"`
}

// Diagnostic is a materialized diagnosis: a patient, a sample, and the
// ordered, nonempty list of diseases the sample matched.
type Diagnostic struct {
	ID             string
	SampleDate     string
	SampleSequence string
	Patient        Patient
	Matches        []Disease
}

// SampleCanonical returns the canonical sample content
// ">document|date\nSEQUENCE" that is both the sample file's content and
// the input to its content hash.
func SampleCanonical(document, date, sequence string) string {
	return fmt.Sprintf(">%s|%s\n%s", document, date, sequence)
}
