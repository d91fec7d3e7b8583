// Package httpclient builds the *req.Client shared by HTTP-based lookups.
package httpclient

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/imroc/req/v3"

	"github.com/tbckr/domainintel/internal/version"
)

// DefaultUserAgent is the User-Agent sent when no explicit value is configured.
// var (not const) because version.Version is a link-time variable.
var DefaultUserAgent = "domainintel/" + version.Version + " (+https://github.com/tbckr/domainintel)"

// maxDebugBody caps the error body snippet logged by the debug hook.
const maxDebugBody = 512

// Options configures New.
type Options struct {
	// Proxy is an http://, https:// or socks5:// URL. Empty falls back to the
	// HTTP_PROXY / HTTPS_PROXY / NO_PROXY environment variables.
	Proxy string
	// UserAgent overrides DefaultUserAgent when non-empty.
	UserAgent string
	// Timeout bounds a single request. Zero leaves req's default.
	Timeout time.Duration
	// Logger receives request traces when Debug is true.
	Logger *slog.Logger
	Debug  bool
}

// ResolveProxy returns the proxy value that will actually be used.
// An explicit proxy is returned as-is; otherwise "<from environment>" is
// returned when any of the standard proxy variables is set.
func ResolveProxy(proxy string) string {
	if proxy != "" {
		return proxy
	}
	for _, env := range []string{"HTTPS_PROXY", "https_proxy", "HTTP_PROXY", "http_proxy", "ALL_PROXY", "all_proxy"} {
		if os.Getenv(env) != "" {
			return "<from environment>"
		}
	}
	return ""
}

// New builds a *req.Client from opts.
// Returns an error if the proxy URL has an unsupported scheme.
func New(opts Options) (*req.Client, error) {
	client := req.NewClient()

	ua := opts.UserAgent
	if ua == "" {
		ua = DefaultUserAgent
	}
	client.SetUserAgent(ua)

	if opts.Timeout > 0 {
		client.SetTimeout(opts.Timeout)
	}

	if opts.Proxy != "" {
		if err := validateProxy(opts.Proxy); err != nil {
			return nil, fmt.Errorf("invalid proxy URL %q: %w", opts.Proxy, err)
		}
		client.SetProxyURL(opts.Proxy)
	} else {
		client.SetProxy(http.ProxyFromEnvironment)
	}

	if opts.Debug && opts.Logger != nil {
		attachDebugHook(client, opts.Logger)
	}
	return client, nil
}

// attachDebugHook logs method, URL and status of every response at DEBUG
// level, plus a body snippet for non-2xx responses.
func attachDebugHook(client *req.Client, logger *slog.Logger) {
	client.OnAfterResponse(func(_ *req.Client, resp *req.Response) error {
		if resp.Request == nil || resp.Request.RawRequest == nil {
			return nil
		}
		logger.Debug("http response",
			"method", resp.Request.RawRequest.Method,
			"url", redactToken(resp.Request.RawRequest.URL.String()),
			"status", resp.StatusCode,
		)
		if !resp.IsSuccessState() {
			body := resp.String()
			if len(body) > maxDebugBody {
				body = body[:maxDebugBody]
			}
			logger.Debug("http error body", "status", resp.StatusCode, "body", body)
		}
		return nil
	})
}

// redactToken hides the value of a token query parameter so API credentials
// never reach the logs.
func redactToken(u string) string {
	i := strings.Index(u, "token=")
	if i < 0 {
		return u
	}
	end := strings.IndexByte(u[i:], '&')
	if end < 0 {
		return u[:i] + "token=REDACTED"
	}
	return u[:i] + "token=REDACTED" + u[i+end:]
}

func validateProxy(proxy string) error {
	for _, scheme := range []string{"http://", "https://", "socks5://"} {
		if strings.HasPrefix(proxy, scheme) {
			return nil
		}
	}
	return fmt.Errorf("proxy scheme must be http://, https://, or socks5://")
}
