package natsbus

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/nats-io/nats-server/v2/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/kostelemetry/internal/transport"
)

// runJetStream starts an in-process broker with JetStream enabled and no streams.
func runJetStream(t *testing.T) (host string, port int) {
	t.Helper()
	s, err := server.NewServer(&server.Options{
		Host:      "127.0.0.1",
		Port:      server.RANDOM_PORT,
		JetStream: true,
		StoreDir:  t.TempDir(),
		NoLog:     true,
		NoSigs:    true,
	})
	require.NoError(t, err)
	go s.Start()
	if !s.ReadyForConnections(5 * time.Second) {
		t.Fatal("nats server did not become ready")
	}
	t.Cleanup(s.Shutdown)

	addr := s.Addr().(*net.TCPAddr)
	return addr.IP.String(), addr.Port
}

func dialTest(t *testing.T, host string, port int, provision bool) *Client {
	t.Helper()
	c, err := Dial(transport.Options{
		Host:            host,
		Port:            port,
		ClientID:        "kos-test",
		Stream:          "KOS_TELEMETRY_TEST",
		ProvisionStream: provision,
		RetainBucket:    "kos-test-retained",
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func flushCtx(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestFlushReportsUnacknowledgedPublish(t *testing.T) {
	host, port := runJetStream(t)
	c := dialTest(t, host, port, false)

	// No stream captures robots.>, so the broker has nobody to ack.
	require.NoError(t, c.Publish(context.Background(), "robots/r1/joints", []byte(`{}`), transport.AtLeastOnce, false))

	err := c.Flush(flushCtx(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "robots.r1.joints")

	// The rejection is reported once.
	require.NoError(t, c.Flush(flushCtx(t)))
}

func TestFlushReportsFirstRejectionAfterSweep(t *testing.T) {
	host, port := runJetStream(t)
	c := dialTest(t, host, port, false)

	require.NoError(t, c.Publish(context.Background(), "robots/r1/imu", []byte(`{}`), transport.ExactlyOnce, false))
	require.Eventually(t, func() bool {
		// Each JetStream publish sweeps resolved futures first; a rejection
		// found there must still reach Flush.
		c.acks.mu.Lock()
		defer c.acks.mu.Unlock()
		c.acks.sweep()
		return c.acks.err != nil
	}, 5*time.Second, 20*time.Millisecond)

	require.Error(t, c.Flush(flushCtx(t)))
}

func TestFlushSucceedsWithProvisionedStream(t *testing.T) {
	host, port := runJetStream(t)
	c := dialTest(t, host, port, true)

	for _, qos := range []transport.QoS{transport.AtMostOnce, transport.AtLeastOnce, transport.ExactlyOnce} {
		require.NoError(t, c.Publish(context.Background(), "robots/r1/joints", []byte(`{"q":1}`), qos, false), qos.String())
	}
	require.NoError(t, c.Flush(flushCtx(t)))

	stream, err := c.js.Stream(flushCtx(t), "KOS_TELEMETRY_TEST")
	require.NoError(t, err)
	// The stream captures the core publish as well as the acknowledged ones.
	require.Eventually(t, func() bool {
		info, err := stream.Info(context.Background())
		return err == nil && info.State.Msgs == 3
	}, 5*time.Second, 20*time.Millisecond)
}

func TestRetainStoresLatestPayload(t *testing.T) {
	host, port := runJetStream(t)
	c := dialTest(t, host, port, true)

	require.NoError(t, c.Publish(flushCtx(t), "robots/r1/heartbeat", []byte(`{"seq":1}`), transport.AtLeastOnce, true))
	require.NoError(t, c.Publish(flushCtx(t), "robots/r1/heartbeat", []byte(`{"seq":2}`), transport.AtLeastOnce, true))
	require.NoError(t, c.Flush(flushCtx(t)))

	kv, err := c.js.KeyValue(flushCtx(t), "kos-test-retained")
	require.NoError(t, err)
	entry, err := kv.Get(flushCtx(t), "robots.r1.heartbeat")
	require.NoError(t, err)
	assert.JSONEq(t, `{"seq":2}`, string(entry.Value()))
}
