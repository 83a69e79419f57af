package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/donpedromz/bioguard/internal/logging"
)

func TestNoopTracksConnectionsAndRequests(t *testing.T) {
	n := NewNoop()
	n.ConnectionOpened()
	n.ConnectionOpened()
	n.ConnectionClosed()
	n.RequestHandled("POST:patient", "201")
	n.StoreOperation("patientstore", "ok")

	open, total, requests, storeOps := n.snapshot()
	assert.Equal(t, int64(1), open)
	assert.Equal(t, int64(2), total)
	assert.Equal(t, int64(1), requests)
	assert.Equal(t, int64(1), storeOps)
}

func TestNoopRegisterIsNoop(t *testing.T) {
	n := NewNoop()
	assert.NoError(t, n.Register())
}

func TestRunSummaryLoopStopsOnSignal(t *testing.T) {
	n := NewNoop()
	n.ConnectionOpened()
	log := logging.New(logging.Config{Quiet: true})
	stop := make(chan struct{})

	done := make(chan struct{})
	go func() {
		RunSummaryLoop(log, n, 5*time.Millisecond, stop)
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	close(stop)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("RunSummaryLoop did not stop after signal")
	}
}
