package httpclient_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tbckr/domainintel/internal/httpclient"
	"github.com/tbckr/domainintel/internal/ratelimit"
)

func TestAttachRateLimit_TransportError_NotRetried(t *testing.T) {
	client, err := httpclient.New(httpclient.Options{})
	require.NoError(t, err)
	httpclient.AttachRateLimit(client, ratelimit.New(1000, 1000))

	httpmock.ActivateNonDefault(client.GetClient())
	t.Cleanup(httpmock.DeactivateAndReset)

	calls := 0
	httpmock.RegisterResponder(http.MethodGet, "https://example.com/",
		func(*http.Request) (*http.Response, error) {
			calls++
			return nil, errors.New("connection reset by peer")
		})

	_, err = client.R().Get("https://example.com/")
	assert.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestAttachRateLimit_TooManyRequests_ReturnedOnce(t *testing.T) {
	client, err := httpclient.New(httpclient.Options{})
	require.NoError(t, err)
	httpclient.AttachRateLimit(client, nil)

	httpmock.ActivateNonDefault(client.GetClient())
	t.Cleanup(httpmock.DeactivateAndReset)

	calls := 0
	httpmock.RegisterResponder(http.MethodGet, "https://example.com/",
		func(*http.Request) (*http.Response, error) {
			calls++
			resp := httpmock.NewStringResponse(http.StatusTooManyRequests, "slow down")
			resp.Header.Set("Retry-After", "60")
			return resp, nil
		})

	start := time.Now()
	resp, err := client.R().Get("https://example.com/")
	require.NoError(t, err)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, 1, calls)
	assert.Less(t, time.Since(start), time.Second)
}

func TestAttachRateLimit_WaitHonoursContext(t *testing.T) {
	client, err := httpclient.New(httpclient.Options{})
	require.NoError(t, err)
	// One token per minute: the second request has to wait.
	httpclient.AttachRateLimit(client, ratelimit.New(1.0/60, 1))

	httpmock.ActivateNonDefault(client.GetClient())
	t.Cleanup(httpmock.DeactivateAndReset)
	httpmock.RegisterResponder(http.MethodGet, "https://example.com/",
		httpmock.NewStringResponder(http.StatusOK, "ok"))

	_, err = client.R().Get("https://example.com/")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	start := time.Now()
	_, err = client.R().SetContext(ctx).Get("https://example.com/")
	require.Error(t, err)
	assert.Less(t, time.Since(start), time.Second)
	assert.Equal(t, 1, httpmock.GetTotalCallCount())
}
