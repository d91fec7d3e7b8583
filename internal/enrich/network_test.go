package enrich_test

import (
	"context"
	"net/http"
	"net/netip"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tbckr/domainintel/internal/apperr"
	"github.com/tbckr/domainintel/internal/domain"
	"github.com/tbckr/domainintel/internal/enrich"
	"github.com/tbckr/domainintel/internal/httpclient"
	"github.com/tbckr/domainintel/internal/ratelimit"
	"github.com/tbckr/domainintel/internal/services"
	"github.com/tbckr/domainintel/internal/services/netident"
	"github.com/tbckr/domainintel/internal/services/registration"
	"github.com/tbckr/domainintel/internal/testutil"
)

func TestEnrich_RateLimitedIntelFailsWithinTimeout(t *testing.T) {
	client, err := httpclient.New(httpclient.Options{})
	require.NoError(t, err)
	httpclient.AttachRateLimit(client, ratelimit.New(1000, 1))
	httpmock.ActivateNonDefault(client.GetClient())
	t.Cleanup(httpmock.DeactivateAndReset)

	httpmock.RegisterResponder(http.MethodGet, "https://ipinfo.io/192.0.2.10",
		func(*http.Request) (*http.Response, error) {
			resp := httpmock.NewStringResponse(http.StatusTooManyRequests, "rate limited")
			resp.Header.Set("Retry-After", "3")
			return resp, nil
		})

	network := netident.NewService(&testutil.MockResolver{}, client, testutil.NopLogger())
	known := &domain.NetworkAddress{IP: netip.MustParseAddr("192.0.2.10")}

	start := time.Now()
	d, err := enrich.New(network, &fakeRegistration{info: &registration.Info{}}, &fakeRecords{}, testutil.NopLogger(),
		enrich.WithTimeout(500*time.Millisecond)).
		Enrich(context.Background(), "example.com", known)
	require.NoError(t, err)

	assert.Less(t, time.Since(start), time.Second)
	assert.Equal(t, 1, httpmock.GetTotalCallCount())
	assert.Equal(t, "192.0.2.10", d.ServerAddress.String(), "address kept without intel")
	require.Len(t, d.Failures, 1)
	assert.Equal(t, services.SourceNetwork, d.Failures[0].Source)
	assert.ErrorIs(t, d.Failures[0].Err, apperr.ErrRequestFailed)
}
