// ABOUTME: Optional SSH+SOCKS5 tunnel for reaching the API through a jumpbox
// ABOUTME: Parses ssh+socks5://user@host:port?private-key=/path proxy URLs

package client

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	proxy "github.com/cloudfoundry/socks5-proxy"
	"go.uber.org/zap"
)

// ProxyTransport returns an http.Transport that dials through the SSH+SOCKS5
// proxy described by allProxy. An empty allProxy returns (nil, nil) and the
// client keeps its default transport.
func ProxyTransport(allProxy string, log *zap.Logger) (http.RoundTripper, error) {
	if allProxy == "" {
		return nil, nil
	}
	if log == nil {
		log = zap.NewNop()
	}

	dial, err := socks5DialContext(allProxy, log)
	if err != nil {
		return nil, err
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.Proxy = nil
	transport.DialContext = dial
	return transport, nil
}

// socks5DialContext builds a dial function for SSH+SOCKS5 proxy connections.
// The SSH session is established on first use and then shared.
func socks5DialContext(allProxy string, log *zap.Logger) (func(ctx context.Context, network, address string) (net.Conn, error), error) {
	allProxy = strings.TrimPrefix(allProxy, "ssh+")

	proxyURL, err := url.Parse(allProxy)
	if err != nil {
		return nil, fmt.Errorf("parse AIRPORT_OPS_ALL_PROXY: %w", err)
	}
	if proxyURL.Host == "" {
		return nil, errors.New("AIRPORT_OPS_ALL_PROXY missing proxy host")
	}

	username := ""
	if proxyURL.User != nil {
		username = proxyURL.User.Username()
	}

	keyPath := proxyURL.Query().Get("private-key")
	if keyPath == "" {
		return nil, errors.New("AIRPORT_OPS_ALL_PROXY missing required 'private-key' query param")
	}

	key, err := os.ReadFile(keyPath)
	if err != nil {
		return nil, fmt.Errorf("read SSH private key %s: %w", keyPath, err)
	}

	socks5Proxy := proxy.NewSocks5Proxy(proxy.NewHostKey(), zap.NewStdLog(log), 1*time.Minute)

	var (
		dialer proxy.DialFunc
		mut    sync.RWMutex
	)

	return func(ctx context.Context, network, address string) (net.Conn, error) {
		mut.RLock()
		d := dialer
		mut.RUnlock()

		if d != nil {
			return d(network, address)
		}

		mut.Lock()
		defer mut.Unlock()
		if dialer == nil {
			log.Debug("opening SOCKS5 tunnel", zap.String("jumpbox", proxyURL.Host), zap.String("user", username))
			proxyDialer, err := socks5Proxy.Dialer(username, string(key), proxyURL.Host)
			if err != nil {
				return nil, fmt.Errorf("error creating SOCKS5 dialer: %w", err)
			}
			dialer = proxyDialer
		}
		return dialer(network, address)
	}, nil
}
