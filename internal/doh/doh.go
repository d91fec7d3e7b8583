// Package doh sends DNS queries over HTTPS (RFC 8484) so record collection
// works where outbound port 53 is filtered.
package doh

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/imroc/req/v3"
	"github.com/miekg/dns"

	"github.com/tbckr/domainintel/internal/apperr"
)

// DefaultURL is the Quad9 DNS-over-HTTPS endpoint.
const DefaultURL = "https://dns.quad9.net/dns-query"

// mediaType is the RFC 8484 wire-format content type.
const mediaType = "application/dns-message"

// Exchanger implements services.DNSExchanger over HTTPS.
type Exchanger struct {
	client *req.Client
	url    string
}

// NewExchanger returns an Exchanger sending GET queries to url, or
// DefaultURL when url is empty.
func NewExchanger(client *req.Client, url string) *Exchanger {
	if url == "" {
		url = DefaultURL
	}
	return &Exchanger{client: client, url: url}
}

// URL returns the endpoint queries are sent to.
func (e *Exchanger) URL() string { return e.url }

// Exchange sends m as a GET request with the base64url-encoded message in
// the dns query parameter. The server argument is ignored; the endpoint is
// fixed at construction.
func (e *Exchanger) Exchange(ctx context.Context, m *dns.Msg, _ string) (*dns.Msg, error) {
	// A zero ID keeps identical queries cacheable by HTTP intermediaries.
	q := m.Copy()
	q.Id = 0
	wire, err := q.Pack()
	if err != nil {
		return nil, fmt.Errorf("%w: packing DNS query: %w", apperr.ErrRequestFailed, err)
	}

	resp, err := e.client.R().
		SetContext(ctx).
		SetHeader("Accept", mediaType).
		SetQueryParam("dns", base64.RawURLEncoding.EncodeToString(wire)).
		Get(e.url)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: DoH request error: %w", apperr.ErrRequestFailed, err)
	}
	if !resp.IsSuccessState() {
		body := resp.String()
		if len(body) > 200 {
			body = body[:200] + "..."
		}
		return nil, fmt.Errorf("%w: DoH server returned HTTP %d: %q", apperr.ErrRequestFailed, resp.StatusCode, body)
	}

	out := new(dns.Msg)
	if err := out.Unpack(resp.Bytes()); err != nil {
		return nil, fmt.Errorf("%w: failed to parse DNS response: %w", apperr.ErrRequestFailed, err)
	}
	out.Id = m.Id
	return out, nil
}
