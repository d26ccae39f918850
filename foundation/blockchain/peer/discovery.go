package peer

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"
)

// ErrNoPeers is returned when discovery could not connect to any peer.
var ErrNoPeers = errors.New("no reachable peers")

// DiscoverConfig represents the settings for the initial peer discovery.
type DiscoverConfig struct {
	Self        string        // Host of this node, skipped when listed.
	KnownPeers  []string      // Hosts to connect to.
	DialTimeout time.Duration // Bound for each connect attempt.
	DialRetries int           // Attempts per host before giving up on it.
	RetryDelay  time.Duration // Pause between attempts.
	EvHandler   func(v string, args ...any)
}

// Dial establishes a connection to the peer within the timeout.
func Dial(ctx context.Context, host string, timeout time.Duration) (*Conn, error) {
	d := net.Dialer{Timeout: timeout}

	conn, err := d.DialContext(ctx, "tcp", host)
	if err != nil {
		return nil, err
	}

	return NewConn(New(host), conn), nil
}

// Discover connects to every known peer. It runs once at startup. Not being
// able to reach any peer is reported as ErrNoPeers. A network of a single
// peer is allowed but reported.
func Discover(ctx context.Context, cfg DiscoverConfig) ([]*Conn, error) {
	ev := cfg.EvHandler
	if ev == nil {
		ev = func(v string, args ...any) {}
	}

	retries := max(cfg.DialRetries, 1)

	ev("peer: Discover: started: peers[%d]", len(cfg.KnownPeers))
	defer ev("peer: Discover: completed")

	var conns []*Conn
	for _, host := range cfg.KnownPeers {
		if New(host).Match(cfg.Self) {
			continue
		}

		conn, err := dialRetry(ctx, host, cfg.DialTimeout, retries, cfg.RetryDelay, ev)
		if err != nil {
			ev("peer: Discover: %s: ERROR: %s", host, err)
			continue
		}

		ev("peer: Discover: connected to peer[%s]", host)
		conns = append(conns, conn)
	}

	switch len(conns) {
	case 0:
		return nil, fmt.Errorf("tried %d hosts: %w", len(cfg.KnownPeers), ErrNoPeers)
	case 1:
		ev("peer: Discover: WARNING: only one peer[%s] in the network", conns[0].Peer())
	}

	return conns, nil
}

// dialRetry attempts to connect to the host up to the number of retries.
func dialRetry(ctx context.Context, host string, timeout time.Duration, retries int, delay time.Duration, ev func(v string, args ...any)) (*Conn, error) {
	var err error
	for attempt := 1; attempt <= retries; attempt++ {
		var conn *Conn
		conn, err = Dial(ctx, host, timeout)
		if err == nil {
			return conn, nil
		}

		ev("peer: Discover: %s: attempt[%d] of [%d]: %s", host, attempt, retries, err)

		if attempt == retries {
			break
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}

	return nil, err
}
