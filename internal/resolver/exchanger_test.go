package resolver

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/miekg/dns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// startUDPServer runs an in-process DNS server that answers every A query
// with 192.0.2.1 and returns its address.
func startUDPServer(t *testing.T) string {
	t.Helper()
	pc, err := net.ListenPacket("udp", "127.0.0.1:0")
	require.NoError(t, err)

	started := make(chan struct{})
	srv := &dns.Server{
		PacketConn:        pc,
		NotifyStartedFunc: func() { close(started) },
		Handler: dns.HandlerFunc(func(w dns.ResponseWriter, r *dns.Msg) {
			m := new(dns.Msg)
			m.SetReply(r)
			m.Answer = append(m.Answer, &dns.A{
				Hdr: dns.RR_Header{Name: r.Question[0].Name, Rrtype: dns.TypeA, Class: dns.ClassINET, Ttl: 60},
				A:   net.ParseIP("192.0.2.1"),
			})
			_ = w.WriteMsg(m)
		}),
	}
	go func() { _ = srv.ActivateAndServe() }()
	<-started
	t.Cleanup(func() { _ = srv.Shutdown() })
	return pc.LocalAddr().String()
}

func TestExchanger_Exchange(t *testing.T) {
	clearProxyEnv(t)
	addr := startUDPServer(t)

	e, err := NewExchanger("", 2*time.Second)
	require.NoError(t, err)

	m := new(dns.Msg)
	m.SetQuestion("example.com.", dns.TypeA)
	resp, err := e.Exchange(context.Background(), m, addr)
	require.NoError(t, err)
	require.Len(t, resp.Answer, 1)

	a, ok := resp.Answer[0].(*dns.A)
	require.True(t, ok)
	assert.Equal(t, "192.0.2.1", a.A.String())
}

func TestExchanger_Unreachable(t *testing.T) {
	clearProxyEnv(t)
	e, err := NewExchanger("", 200*time.Millisecond)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	m := new(dns.Msg)
	m.SetQuestion("example.com.", dns.TypeA)
	// 192.0.2.0/24 is TEST-NET-1 and never answers.
	_, err = e.Exchange(ctx, m, "192.0.2.1:53")
	assert.Error(t, err)
}
