package transport

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidOptions is returned (wrapped) when a client cannot be built from Options.
var ErrInvalidOptions = errors.New("transport: invalid options")

const (
	DefaultKeepAlive = 5 * time.Second
	DefaultQueueSize = 10
)

// Options are the connection parameters for a transport client.
type Options struct {
	Host      string
	Port      int
	ClientID  string
	KeepAlive time.Duration

	// QueueSize bounds publishes awaiting broker acknowledgement.
	QueueSize int

	// Stream and ProvisionStream configure the durable stream capturing robots.>.
	Stream          string
	ProvisionStream bool

	// RetainBucket holds the latest payload of retained publishes.
	RetainBucket string

	// ReconnectDelay returns the wait before reconnect attempt n (1-based). Nil uses the client default.
	ReconnectDelay func(attempt int) time.Duration
}

// WithDefaults returns a copy with zero-valued keep-alive and queue size defaulted.
func (o Options) WithDefaults() Options {
	if o.KeepAlive <= 0 {
		o.KeepAlive = DefaultKeepAlive
	}
	if o.QueueSize <= 0 {
		o.QueueSize = DefaultQueueSize
	}
	return o
}

// Validate rejects hosts and ports that cannot form a broker address.
func (o Options) Validate() error {
	host := strings.TrimSpace(o.Host)
	switch {
	case host == "":
		return fmt.Errorf("%w: host is empty", ErrInvalidOptions)
	case host != o.Host || strings.ContainsAny(host, " \t\r\n/?#@"):
		return fmt.Errorf("%w: malformed host %q", ErrInvalidOptions, o.Host)
	case o.Port <= 0 || o.Port > 65535:
		return fmt.Errorf("%w: port %d out of range", ErrInvalidOptions, o.Port)
	case o.ClientID == "":
		return fmt.Errorf("%w: client id is empty", ErrInvalidOptions)
	}
	if _, err := url.Parse(o.URL("nats")); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidOptions, err)
	}
	return nil
}

// Address returns host:port, bracketing IPv6 literals.
func (o Options) Address() string {
	return net.JoinHostPort(o.Host, strconv.Itoa(o.Port))
}

// URL returns scheme://host:port.
func (o Options) URL(scheme string) string {
	return scheme + "://" + o.Address()
}
