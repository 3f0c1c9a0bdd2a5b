package natsbus

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/kostelemetry/internal/transport"
)

func TestSubjectFor(t *testing.T) {
	cases := map[string]string{
		"robots/r1/joints":      "robots.r1.joints",
		"robots/r1/imu/raw":     "robots.r1.imu.raw",
		"robots.already.dotted": "robots.already.dotted",
	}
	for in, want := range cases {
		assert.Equal(t, want, SubjectFor(in))
	}
}

func TestDialRejectsMalformedHost(t *testing.T) {
	_, err := Dial(transport.Options{Host: "not a host", Port: 4222, ClientID: "kos-r1"})
	require.Error(t, err)
	assert.ErrorIs(t, err, transport.ErrInvalidOptions)

	c, err := Dialer(transport.Options{Host: "", Port: 4222, ClientID: "kos-r1"})
	require.Error(t, err)
	assert.Nil(t, c, "Dialer must return a nil interface on failure")
}

// unusedPort returns a loopback port with nothing listening on it.
func unusedPort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := l.Addr().(*net.TCPAddr).Port
	require.NoError(t, l.Close())
	return port
}

func TestDialWithoutBrokerKeepsRetrying(t *testing.T) {
	c, err := Dial(transport.Options{
		Host:           "127.0.0.1",
		Port:           unusedPort(t),
		ClientID:       "kos-test",
		ReconnectDelay: func(int) time.Duration { return 10 * time.Millisecond },
	})
	require.NoError(t, err, "construction must not require a live broker")
	require.NotNil(t, c)

	require.NoError(t, c.Close())

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	for {
		_, err := c.Poll(ctx)
		if err != nil {
			assert.True(t, errors.Is(err, transport.ErrClosed), "got %v", err)
			return
		}
	}
}

func TestPublishHonorsCanceledContext(t *testing.T) {
	c, err := Dial(transport.Options{Host: "127.0.0.1", Port: unusedPort(t), ClientID: "kos-test"})
	require.NoError(t, err)
	defer c.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = c.Publish(ctx, "robots/test/imu", []byte(`{}`), transport.AtLeastOnce, false)
	assert.ErrorIs(t, err, context.Canceled)
}
