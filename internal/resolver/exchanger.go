package resolver

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/miekg/dns"
	"golang.org/x/net/proxy"
)

// resolvConfPath is the system resolver configuration consulted for a default nameserver.
const resolvConfPath = "/etc/resolv.conf"

// FallbackNameserver is used when no nameserver is configured and
// resolv.conf cannot be read.
const FallbackNameserver = "9.9.9.9:53"

// Exchanger sends wire-format DNS messages with github.com/miekg/dns.
// UDP answers that come back truncated are retried over TCP.
type Exchanger struct {
	udp    *dns.Client
	tcp    *dns.Client
	socks5 proxy.ContextDialer
}

// NewExchanger builds an Exchanger. timeout bounds each individual exchange.
// A socks5:// proxyURL forces TCP through the proxy.
func NewExchanger(proxyURL string, timeout time.Duration) (*Exchanger, error) {
	dialer, err := socks5Dialer(proxyURL)
	if err != nil {
		return nil, err
	}
	return &Exchanger{
		udp:    &dns.Client{Net: "udp", Timeout: timeout},
		tcp:    &dns.Client{Net: "tcp", Timeout: timeout},
		socks5: dialer,
	}, nil
}

// Exchange sends m to server (host:port) and returns the response.
func (e *Exchanger) Exchange(ctx context.Context, m *dns.Msg, server string) (*dns.Msg, error) {
	if e.socks5 != nil {
		return e.exchangeViaProxy(ctx, m, server)
	}
	resp, _, err := e.udp.ExchangeContext(ctx, m, server)
	if err != nil {
		return nil, err
	}
	if resp.Truncated {
		resp, _, err = e.tcp.ExchangeContext(ctx, m, server)
		if err != nil {
			return nil, err
		}
	}
	return resp, nil
}

func (e *Exchanger) exchangeViaProxy(ctx context.Context, m *dns.Msg, server string) (*dns.Msg, error) {
	conn, err := e.socks5.DialContext(ctx, "tcp", server)
	if err != nil {
		return nil, fmt.Errorf("dialing %s via SOCKS5: %w", server, err)
	}
	co := &dns.Conn{Conn: conn}
	defer co.Close()

	resp, _, err := e.tcp.ExchangeWithConnContext(ctx, m, co)
	return resp, err
}

// DefaultNameserver returns the first nameserver listed in the system
// resolv.conf as host:port, or FallbackNameserver when none is available.
func DefaultNameserver() string {
	return nameserverFrom(resolvConfPath)
}

func nameserverFrom(path string) string {
	cc, err := dns.ClientConfigFromFile(path)
	if err != nil || len(cc.Servers) == 0 {
		return FallbackNameserver
	}
	port := cc.Port
	if port == "" {
		port = strconv.Itoa(53)
	}
	return net.JoinHostPort(cc.Servers[0], port)
}
