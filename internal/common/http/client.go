// internal/common/http/client.go
package http

import (
	"net"
	"net/http"
	"time"
)

// PoolConfig tunes the outbound connection pool.
type PoolConfig struct {
	MaxIdleConns        int
	MaxIdleConnsPerHost int
	IdleConnTimeout     time.Duration
	TLSHandshakeTimeout time.Duration
}

func defaultPool() PoolConfig {
	return PoolConfig{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 20,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}
}

type Client struct {
	httpClient *http.Client
}

// NewClient builds a client with a pooled transport. A zero timeout leaves
// deadlines to the request context.
func NewClient(timeout time.Duration) *Client {
	return NewPooledClient(timeout, defaultPool())
}

func NewPooledClient(timeout time.Duration, pool PoolConfig) *Client {
	def := defaultPool()
	if pool.MaxIdleConns <= 0 {
		pool.MaxIdleConns = def.MaxIdleConns
	}
	if pool.MaxIdleConnsPerHost <= 0 {
		pool.MaxIdleConnsPerHost = def.MaxIdleConnsPerHost
	}
	if pool.IdleConnTimeout <= 0 {
		pool.IdleConnTimeout = def.IdleConnTimeout
	}
	if pool.TLSHandshakeTimeout <= 0 {
		pool.TLSHandshakeTimeout = def.TLSHandshakeTimeout
	}

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:   true,
		MaxIdleConns:        pool.MaxIdleConns,
		MaxIdleConnsPerHost: pool.MaxIdleConnsPerHost,
		IdleConnTimeout:     pool.IdleConnTimeout,
		TLSHandshakeTimeout: pool.TLSHandshakeTimeout,
	}

	return &Client{
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
	}
}

// Standard exposes the underlying client for SDKs that take an *http.Client.
func (c *Client) Standard() *http.Client {
	return c.httpClient
}

// CloseIdle drops pooled connections.
func (c *Client) CloseIdle() {
	c.httpClient.CloseIdleConnections()
}
