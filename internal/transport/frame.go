// Copyright (C) 2026 BioGuard contributors.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package transport implements the TLS-wrapped, length-prefixed framing
// protocol BioGuard speaks with its clients.
package transport

import (
	"encoding/binary"
	"io"
	"math"

	"github.com/donpedromz/bioguard/internal/errs"
)

// maxFrameBytes is the largest payload the 16-bit big-endian length
// prefix can express (math.MaxUint16). ReadFrame's length is already
// bounded to this by its uint16 type; the constant matters for
// WriteFrame, which must reject a payload too large to encode instead of
// silently truncating it through the uint16(len(payload)) cast.
const maxFrameBytes = math.MaxUint16

// ReadFrame reads one length-prefixed UTF-8 frame: a 16-bit big-endian
// byte count followed by that many bytes.
func ReadFrame(r io.Reader) (string, error) {
	var length uint16
	if err := binary.Read(r, binary.BigEndian, &length); err != nil {
		return "", errs.Wrap(errs.Persistence, "transport: read frame length", err)
	}
	buf := make([]byte, length)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", errs.Wrap(errs.Persistence, "transport: read frame payload", err)
	}
	return string(buf), nil
}

// WriteFrame writes payload as one length-prefixed UTF-8 frame, failing
// rather than truncating if payload is too large for the 16-bit length
// prefix to encode.
func WriteFrame(w io.Writer, payload string) error {
	if len(payload) > maxFrameBytes {
		return errs.New(errs.Unexpected, "transport: response frame exceeds maximum size")
	}
	length := uint16(len(payload))
	if err := binary.Write(w, binary.BigEndian, length); err != nil {
		return errs.Wrap(errs.Persistence, "transport: write frame length", err)
	}
	if _, err := w.Write([]byte(payload)); err != nil {
		return errs.Wrap(errs.Persistence, "transport: write frame payload", err)
	}
	return nil
}
