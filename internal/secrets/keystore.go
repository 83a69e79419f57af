// Copyright (C) 2026 BioGuard contributors.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package secrets guards the PKCS#12 keystore password in mlocked memory
// so it never lands in a core dump or gets paged to disk.
package secrets

import (
	"crypto/tls"
	"os"
	"sync"

	"github.com/awnumar/memguard"
	"golang.org/x/crypto/pkcs12"

	"github.com/donpedromz/bioguard/internal/errs"
)

var catchInterruptOnce sync.Once

// Keystore owns the decoded TLS certificate and guards the password used
// to decrypt it. The password is kept in a memguard.LockedBuffer; Close
// must be called once the keystore is no longer needed.
type Keystore struct {
	password    *memguard.LockedBuffer
	certificate tls.Certificate
}

// Open reads the PKCS#12 file at path, decrypts it with password, and
// guards password in locked memory for the lifetime of the returned
// Keystore. The caller's password string is not retained beyond this call.
func Open(path, password string) (*Keystore, error) {
	catchInterruptOnce.Do(memguard.CatchInterrupt)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errs.Wrap(errs.Persistence, "secrets: read keystore "+path, err)
	}

	privateKey, cert, err := pkcs12.Decode(data, password)
	if err != nil {
		return nil, errs.Wrap(errs.Persistence, "secrets: decode keystore "+path, err)
	}

	return &Keystore{
		password: memguard.NewBufferFromBytes([]byte(password)),
		certificate: tls.Certificate{
			Certificate: [][]byte{cert.Raw},
			PrivateKey:  privateKey,
			Leaf:        cert,
		},
	}, nil
}

// Password returns a view into the guarded password bytes. The caller
// must not retain or mutate the returned slice beyond immediate use.
func (k *Keystore) Password() []byte {
	return k.password.Bytes()
}

// Certificate returns the decoded TLS certificate for use in a
// tls.Config's Certificates slice.
func (k *Keystore) Certificate() tls.Certificate {
	return k.certificate
}

// Close destroys the guarded password buffer. Safe to call once;
// subsequent calls are no-ops via memguard's own idempotent Destroy.
func (k *Keystore) Close() {
	k.password.Destroy()
}
