package resolver

import (
	"context"
	"fmt"
	"net"
	"os"
	"strings"

	"golang.org/x/net/proxy"
)

// socks5Dialer returns a context dialer for proxyURL, or nil when proxyURL
// (or ALL_PROXY, when proxyURL is empty) is not a socks5:// URL.
func socks5Dialer(proxyURL string) (proxy.ContextDialer, error) {
	if proxyURL == "" {
		proxyURL = os.Getenv("ALL_PROXY")
		if proxyURL == "" {
			proxyURL = os.Getenv("all_proxy")
		}
	}
	if !strings.HasPrefix(proxyURL, "socks5://") {
		return nil, nil
	}

	host := strings.TrimPrefix(proxyURL, "socks5://")
	dialer, err := proxy.SOCKS5("tcp", host, nil, proxy.Direct)
	if err != nil {
		return nil, fmt.Errorf("creating SOCKS5 dialer for DNS: %w", err)
	}
	ctxDialer, ok := dialer.(proxy.ContextDialer)
	if !ok {
		return nil, fmt.Errorf("SOCKS5 dialer does not implement ContextDialer")
	}
	return ctxDialer, nil
}

// NewResolver returns a *net.Resolver for proxyURL.
//
// Without a SOCKS5 proxy the platform resolver is used (nil Dial). With one,
// queries go over DNS-over-TCP through the proxy.
func NewResolver(proxyURL string) (*net.Resolver, error) {
	dialer, err := socks5Dialer(proxyURL)
	if err != nil {
		return nil, err
	}
	if dialer == nil {
		return &net.Resolver{}, nil
	}
	return &net.Resolver{
		PreferGo: true,
		Dial: func(ctx context.Context, _, address string) (net.Conn, error) {
			return dialer.DialContext(ctx, "tcp", address)
		},
	}, nil
}

// Dialer returns the dialer TCP lookups outside DNS (such as WHOIS) should
// use: the SOCKS5 proxy when one is configured, otherwise a direct dialer.
func Dialer(proxyURL string) (proxy.Dialer, error) {
	dialer, err := socks5Dialer(proxyURL)
	if err != nil {
		return nil, err
	}
	if dialer == nil {
		return proxy.Direct, nil
	}
	return dialer.(proxy.Dialer), nil
}
