package bootstrap

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeAddr(t *testing.T) {
	assert.Equal(t, ":8080", normalizeAddr(""))
	assert.Equal(t, ":9000", normalizeAddr("9000"))
	assert.Equal(t, ":9000", normalizeAddr(" :9000 "))
}

func TestBuildWorkerRejectsMemoryStorage(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "memory")

	_, err := BuildWorker(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "STORAGE_DRIVER=postgres")
}

// BuildAPI registers collectors on the default registry, so only this test
// may call it.
func TestMemoryAPIRunsUntilCancelled(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "memory")
	t.Setenv("HTTP_PORT", "0")
	t.Setenv("KAFKA_BROKERS", "")
	t.Setenv("OUTBOX_POLL_INTERVAL", "10ms")

	app, err := BuildAPI(context.Background())
	require.NoError(t, err)
	require.NotNil(t, app.workers)
	defer func() {
		assert.NoError(t, app.Close())
	}()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- app.Run(ctx)
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("api did not stop after cancel")
	}
}
