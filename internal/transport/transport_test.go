package transport

import (
	"bytes"
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"math/big"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/donpedromz/bioguard/internal/logging"
	"github.com/donpedromz/bioguard/internal/metrics"
)

func TestFrameRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteFrame(&buf, "POST patient\napplication/fasta\n>body"))

	got, err := ReadFrame(&buf)
	require.NoError(t, err)
	require.Equal(t, "POST patient\napplication/fasta\n>body", got)
}

func TestReadFrameRejectsMaxLengthWithoutPayload(t *testing.T) {
	var buf bytes.Buffer
	buf.Write([]byte{0xff, 0xff}) // 0xffff == maxFrameBytes, the largest length the prefix can encode
	_, err := ReadFrame(&buf)
	require.Error(t, err) // no payload bytes follow, so the read fails rather than allocating unbounded memory
}

func TestWriteFrameRejectsPayloadLargerThanLengthPrefixCanEncode(t *testing.T) {
	var buf bytes.Buffer
	oversized := strings.Repeat("a", maxFrameBytes+1)
	err := WriteFrame(&buf, oversized)
	require.Error(t, err)
}

func TestReadFrameFailsOnTruncatedPayload(t *testing.T) {
	var buf bytes.Buffer
	buf.Write([]byte{0x00, 0x05})
	buf.WriteString("ab")
	_, err := ReadFrame(&buf)
	require.Error(t, err)
}

type echoDispatcher struct{}

func (echoDispatcher) Dispatch(frame string) string {
	return "[TCP][200][Success] echo: " + frame
}

func TestServerServicesOneFramePerConnection(t *testing.T) {
	cert := selfSignedCert(t)
	log := logging.New(logging.Config{Quiet: true})

	srv, err := New(Config{
		Addr:        "127.0.0.1:0",
		Certificate: cert,
		Dispatch:    echoDispatcher{},
		Log:         log,
		Metrics:     metrics.NewNoop(),
		AcceptRate:  1000,
		AcceptBurst: 10,
	})
	require.NoError(t, err)
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		srv.Run(ctx)
		close(done)
	}()

	conn, err := tls.Dial("tcp", srv.Addr().String(), &tls.Config{InsecureSkipVerify: true})
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, WriteFrame(conn, "POST patient\napplication/fasta\n>body"))

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	reply, err := ReadFrame(conn)
	require.NoError(t, err)
	require.Contains(t, reply, "echo: POST patient")

	cancel()
	<-done
}

func selfSignedCert(t *testing.T) tls.Certificate {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	template := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: "bioguard-test"},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(time.Hour),
		KeyUsage:     x509.KeyUsageKeyEncipherment | x509.KeyUsageDigitalSignature,
		ExtKeyUsage:  []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
	}

	der, err := x509.CreateCertificate(rand.Reader, template, template, &key.PublicKey, key)
	require.NoError(t, err)

	leaf, err := x509.ParseCertificate(der)
	require.NoError(t, err)

	return tls.Certificate{
		Certificate: [][]byte{der},
		PrivateKey:  key,
		Leaf:        leaf,
	}
}
