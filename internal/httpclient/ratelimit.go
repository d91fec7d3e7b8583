package httpclient

import (
	"github.com/imroc/req/v3"

	"github.com/tbckr/domainintel/internal/ratelimit"
)

// AttachRateLimit gates every request on limiter. Requests are sent once:
// a 429 or transport error is returned to the caller as is, and the wait
// for a token ends when the request context is done.
func AttachRateLimit(client *req.Client, limiter *ratelimit.Limiter) {
	client.SetCommonRetryCount(0)
	client.OnBeforeRequest(func(_ *req.Client, r *req.Request) error {
		return limiter.Wait(r.Context())
	})
}
