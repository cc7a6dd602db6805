package proxy

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"sync"
	"time"

	netproxy "golang.org/x/net/proxy"
)

// proxyConn wraps net.Conn so the semaphore token is released exactly
// once when the SMTP client closes the connection.
type proxyConn struct {
	net.Conn
	releaseOnce sync.Once
}

func (pc *proxyConn) Close() error {
	pc.releaseOnce.Do(func() {
		<-Semaphore
	})
	return pc.Conn.Close()
}

// DialContext dials through pURL when proxying is enabled, falling back
// to a direct connection otherwise.
func DialContext(ctx context.Context, network, addr string, timeout time.Duration, pURL *url.URL) (net.Conn, error) {
	directDialer := &net.Dialer{Timeout: timeout}

	if !Enabled() || pURL == nil {
		return directDialer.DialContext(ctx, network, addr)
	}

	select {
	case Semaphore <- struct{}{}:
	case <-ctx.Done():
		return nil, fmt.Errorf("timeout waiting for proxy slot: %w", ctx.Err())
	}

	pdialer, err := netproxy.FromURL(pURL, directDialer)
	if err != nil {
		<-Semaphore
		return nil, fmt.Errorf("proxy %s unusable: %w", pURL.Host, err)
	}

	var conn net.Conn
	if cdialer, ok := pdialer.(netproxy.ContextDialer); ok {
		conn, err = cdialer.DialContext(ctx, network, addr)
	} else {
		conn, err = pdialer.Dial(network, addr)
	}
	if err != nil {
		<-Semaphore
		return nil, err
	}

	return &proxyConn{Conn: conn}, nil
}
