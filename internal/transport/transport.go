// Package transport provides the HTTP transport used to reach the
// storefront API.
//
// Go's standard TLS client has a distinctive fingerprint, and the
// storefront sits behind a CDN that scores JA3 fingerprints for bot
// detection; headless clients get rate limited aggressively. This
// transport uses uTLS to present a Chrome-like fingerprint:
//
//  1. uTLS with HelloChrome_Auto for the ClientHello
//  2. ALPN negotiates naturally (h2, http/1.1)
//  3. Go's http2.Transport does the HTTP/2 framing when negotiated
package transport

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/http"
	"time"

	utls "github.com/refraction-networking/utls"
	"golang.org/x/net/http2"
)

// NewBrowserTransport creates an http.RoundTripper presenting Chrome's
// TLS fingerprint. Supports HTTP/2 and HTTP/1.1 per ALPN negotiation.
func NewBrowserTransport(timeout time.Duration) http.RoundTripper {
	dialer := &net.Dialer{Timeout: timeout}

	h2 := &http2.Transport{
		DialTLSContext: func(ctx context.Context, network, addr string, _ *tls.Config) (net.Conn, error) {
			return dialBrowserTLS(ctx, dialer, network, addr)
		},
	}

	h1 := &http.Transport{
		DialTLSContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
			return dialBrowserTLS(ctx, dialer, network, addr)
		},
		ForceAttemptHTTP2: false,
	}

	return &browserTransport{h2: h2, h1: h1}
}

// browserTransport tries HTTP/2 first and falls back to HTTP/1.1 for
// servers that never negotiated h2.
type browserTransport struct {
	h2 *http2.Transport
	h1 *http.Transport
}

// RoundTrip implements http.RoundTripper.
func (t *browserTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.h2.RoundTrip(req)
	if err == nil {
		return resp, nil
	}
	return t.h1.RoundTrip(req)
}

// dialBrowserTLS establishes a TLS connection with Chrome's fingerprint.
func dialBrowserTLS(ctx context.Context, dialer *net.Dialer, network, addr string) (net.Conn, error) {
	// Hostname for SNI
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		host = addr
	}

	conn, err := dialer.DialContext(ctx, network, addr)
	if err != nil {
		return nil, fmt.Errorf("dial: %w", err)
	}

	tlsConn := utls.UClient(conn, &utls.Config{ServerName: host}, utls.HelloChrome_Auto)
	if err := tlsConn.Handshake(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("tls handshake: %w", err)
	}

	return tlsConn, nil
}
