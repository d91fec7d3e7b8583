package dnsrecords_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/miekg/dns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tbckr/domainintel/internal/apperr"
	"github.com/tbckr/domainintel/internal/services/dnsrecords"
	"github.com/tbckr/domainintel/internal/testutil"
)

func exampleAnswers() map[uint16][]dns.RR {
	return map[uint16][]dns.RR{
		dns.TypeNS: {
			testutil.RR("example.com. 3600 IN NS a.iana-servers.net."),
			testutil.RR("example.com. 3600 IN NS b.iana-servers.net."),
		},
		dns.TypeA:    {testutil.RR("example.com. 300 IN A 93.184.216.34")},
		dns.TypeAAAA: {testutil.RR("example.com. 300 IN AAAA 2606:2800:220:1:248:1893:25c8:1946")},
		dns.TypeMX:   {testutil.RR("example.com. 300 IN MX 10 mail.example.com.")},
		dns.TypeTXT: {
			testutil.RR(`example.com. 300 IN TXT "v=spf1 -all"`),
			testutil.RR(`example.com. 300 IN TXT "part one " "part two"`),
		},
	}
}

func TestCollect_AllTypes(t *testing.T) {
	ex := &testutil.MockExchanger{Answers: exampleAnswers()}
	svc := dnsrecords.NewService(ex, "127.0.0.1:53", testutil.NopLogger())

	rec := svc.Collect(context.Background(), "example.com")
	assert.Equal(t, []string{"a.iana-servers.net", "b.iana-servers.net"}, rec.NS)
	assert.Equal(t, []string{"93.184.216.34"}, rec.A)
	assert.Equal(t, []string{"2606:2800:220:1:248:1893:25c8:1946"}, rec.AAAA)
	assert.Equal(t, []string{"mail.example.com"}, rec.MX)
	assert.Equal(t, []string{"v=spf1 -all", "part one part two"}, rec.TXT)
	assert.Empty(t, rec.Failures)
	assert.NoError(t, rec.Err())
	assert.False(t, rec.IsEmpty())
}

func TestCollect_MXTrailingDot(t *testing.T) {
	ex := &testutil.MockExchanger{Answers: map[uint16][]dns.RR{
		dns.TypeMX: {
			testutil.RR("example.org. 300 IN MX 10 mail.example.org."),
			testutil.RR("example.org. 300 IN MX 20 backup.example.org."),
		},
	}}
	rec := dnsrecords.NewService(ex, "127.0.0.1:53", testutil.NopLogger()).Collect(context.Background(), "example.org")
	assert.Equal(t, []string{"mail.example.org", "backup.example.org"}, rec.MX)
}

func TestCollect_MissingTypesAreEmptyNotFailures(t *testing.T) {
	ex := &testutil.MockExchanger{Answers: map[uint16][]dns.RR{
		dns.TypeA:    {testutil.RR("example.net. 300 IN A 192.0.2.1")},
		dns.TypeAAAA: {},
	}}
	rec := dnsrecords.NewService(ex, "127.0.0.1:53", testutil.NopLogger()).Collect(context.Background(), "example.net")

	assert.Equal(t, []string{"192.0.2.1"}, rec.A)
	assert.NotNil(t, rec.NS)
	assert.Empty(t, rec.NS)
	assert.Empty(t, rec.AAAA)
	assert.Empty(t, rec.MX)
	assert.Empty(t, rec.TXT)
	assert.Empty(t, rec.Failures)
}

func TestCollect_NXDomain(t *testing.T) {
	ex := &testutil.MockExchanger{}
	rec := dnsrecords.NewService(ex, "127.0.0.1:53", testutil.NopLogger()).Collect(context.Background(), "nope.invalid")
	assert.True(t, rec.IsEmpty())
	assert.Empty(t, rec.Failures)
}

func TestCollect_FailuresRecordedPerType(t *testing.T) {
	ex := &testutil.MockExchanger{
		Answers: exampleAnswers(),
		Errors:  map[uint16]error{dns.TypeTXT: errors.New("i/o timeout")},
		Rcodes:  map[uint16]int{dns.TypeNS: dns.RcodeServerFailure},
	}
	rec := dnsrecords.NewService(ex, "127.0.0.1:53", testutil.NopLogger()).Collect(context.Background(), "example.com")

	assert.Equal(t, []string{"93.184.216.34"}, rec.A)
	assert.Empty(t, rec.NS)
	assert.Empty(t, rec.TXT)
	require.Len(t, rec.Failures, 2)
	assert.Equal(t, "NS", rec.Failures[0].Type)
	assert.Contains(t, rec.Failures[0].Error(), "SERVFAIL")
	assert.Equal(t, "TXT", rec.Failures[1].Type)
	assert.ErrorIs(t, rec.Failures[1], apperr.ErrLookupFailed)

	err := rec.Err()
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrLookupFailed)
}

func TestCollect_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	ex := &testutil.MockExchanger{Answers: exampleAnswers()}
	rec := dnsrecords.NewService(ex, "127.0.0.1:53", testutil.NopLogger()).Collect(ctx, "example.com")
	assert.True(t, rec.IsEmpty())
	assert.Len(t, rec.Failures, 5)
	assert.ErrorIs(t, rec.Err(), context.Canceled)
}

type recordingExchanger struct {
	mu   sync.Mutex
	msgs []*dns.Msg
	srv  []string
}

func (r *recordingExchanger) Exchange(_ context.Context, m *dns.Msg, server string) (*dns.Msg, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, m)
	r.srv = append(r.srv, server)
	resp := new(dns.Msg)
	resp.SetReply(m)
	return resp, nil
}

func TestCollect_QueryShape(t *testing.T) {
	ex := &recordingExchanger{}
	dnsrecords.NewService(ex, "10.0.0.53:53", testutil.NopLogger()).Collect(context.Background(), "Example.com")

	require.Len(t, ex.msgs, 5)
	seen := map[uint16]bool{}
	for i, m := range ex.msgs {
		require.Len(t, m.Question, 1)
		assert.Equal(t, "Example.com.", m.Question[0].Name)
		assert.True(t, m.RecursionDesired)
		assert.NotNil(t, m.IsEdns0())
		assert.Equal(t, "10.0.0.53:53", ex.srv[i])
		seen[m.Question[0].Qtype] = true
	}
	for _, q := range []uint16{dns.TypeNS, dns.TypeA, dns.TypeAAAA, dns.TypeMX, dns.TypeTXT} {
		assert.True(t, seen[q], "missing query for %s", dns.TypeToString[q])
	}
}

func TestCollect_SkipsCNAMEChain(t *testing.T) {
	ex := &testutil.MockExchanger{Answers: map[uint16][]dns.RR{
		dns.TypeA: {
			testutil.RR("www.example.com. 300 IN CNAME example.com."),
			testutil.RR("example.com. 300 IN A 93.184.216.34"),
		},
	}}
	rec := dnsrecords.NewService(ex, "127.0.0.1:53", testutil.NopLogger()).Collect(context.Background(), "www.example.com")
	assert.Equal(t, []string{"93.184.216.34"}, rec.A)
}

func TestName(t *testing.T) {
	assert.Equal(t, "dns", dnsrecords.NewService(&testutil.MockExchanger{}, "", testutil.NopLogger()).Name())
}
