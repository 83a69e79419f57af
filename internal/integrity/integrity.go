// Copyright (C) 2026 BioGuard contributors.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package integrity binds file identity to file content. Every
// content-addressed store (diseases, samples) names a file after the
// SHA-256 digest of its canonical text, and verifies that digest again on
// every read so a corrupted or hand-edited file is treated as absent
// rather than silently trusted.
package integrity

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"

	"github.com/donpedromz/bioguard/internal/errs"
)

// Hash returns the lowercase hex-encoded SHA-256 digest of text.
func Hash(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// VerifyFile reads path as UTF-8 text and confirms that Hash(content)
// equals the filename with ext stripped. Callers treat a failure here as
// "file does not exist": the error kind is always CorruptedData.
func VerifyFile(path, ext string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errs.Wrap(errs.CorruptedData, "read "+filepath.Base(path), err)
	}
	if len(data) == 0 {
		return errs.CorruptedDataf("file %s is empty", filepath.Base(path))
	}
	content := string(data)
	wantName := strings.TrimSuffix(filepath.Base(path), ext)
	got := Hash(content)
	if got != wantName {
		return errs.CorruptedDataf("hash mismatch for %s: computed %s", filepath.Base(path), got)
	}
	return nil
}

// ReadVerified reads and verifies path in one step, returning the file's
// text content on success.
func ReadVerified(path, ext string) (string, error) {
	if err := VerifyFile(path, ext); err != nil {
		return "", err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", errs.Wrap(errs.CorruptedData, "read "+filepath.Base(path), err)
	}
	return string(data), nil
}
