package router

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatchEmptyFrameIsMalformed(t *testing.T) {
	r := New()
	resp := r.Dispatch("")
	assert.Contains(t, resp, "[TCP][400][MalformedRequest]")
}

func TestDispatchFewerThanThreePartsIsMalformed(t *testing.T) {
	r := New()
	resp := r.Dispatch("POST patient\napplication/fasta")
	assert.Contains(t, resp, "[TCP][400][MalformedRequest]")
}

func TestDispatchUnknownRouteIs404(t *testing.T) {
	r := New()
	resp := r.Dispatch("POST unknown\napplication/fasta\nbody")
	assert.Contains(t, resp, "[TCP][404][RouteNotFound]")
}

func TestDispatchInvokesRegisteredController(t *testing.T) {
	r := New()
	var captured Request
	r.Handle("POST", "patient", func(req Request) string {
		captured = req
		return "[TCP][201][Created] ok"
	})

	resp := r.Dispatch("POST patient\napplication/fasta\n>123|Doe|Jane|...")
	require.Equal(t, "[TCP][201][Created] ok", resp)
	assert.Equal(t, "POST", captured.Method)
	assert.Equal(t, "patient", captured.Action)
	assert.Equal(t, "application/fasta", captured.ContentType)
	assert.Equal(t, ">123|Doe|Jane|...", captured.Body)
}

func TestDispatchBodyMayContainNewlines(t *testing.T) {
	r := New()
	r.Handle("POST", "disease", func(req Request) string {
		return req.Body
	})
	resp := r.Dispatch("POST disease\napplication/fasta\n>ebola|ALTA\nGAGTATGTGAA")
	assert.Equal(t, ">ebola|ALTA\nGAGTATGTGAA", resp)
}
