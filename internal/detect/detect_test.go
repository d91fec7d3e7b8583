package detect_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tbckr/domainintel/internal/detect"
)

func newDetector(t *testing.T) *detect.Detector {
	t.Helper()
	p, err := detect.LoadPatterns("")
	require.NoError(t, err)
	return detect.NewDetector(p)
}

func TestLoadPatterns_Embedded(t *testing.T) {
	p, err := detect.LoadPatterns("")
	require.NoError(t, err)
	assert.NotEmpty(t, p.Email)
	assert.NotEmpty(t, p.DNS)
	assert.NotEmpty(t, p.TXT)
	for _, tp := range p.TXT {
		assert.Contains(t, []detect.ServiceType{detect.TypeEmail, detect.TypeVerification}, tp.Type, tp.Substring)
	}
}

func TestLoadPatterns_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "patterns.yaml")
	require.NoError(t, os.WriteFile(path, []byte("email:\n  - {suffix: corp.example, provider: Corp Mail}\n"), 0o600))

	p, err := detect.LoadPatterns(path)
	require.NoError(t, err)
	require.Len(t, p.Email, 1)
	assert.Equal(t, "Corp Mail", p.Email[0].Provider)
	assert.Empty(t, p.DNS)
}

func TestLoadPatterns_Errors(t *testing.T) {
	_, err := detect.LoadPatterns(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("email: [unterminated"), 0o600))
	_, err = detect.LoadPatterns(path)
	require.Error(t, err)
}

func TestEmailProvider(t *testing.T) {
	d := newDetector(t)
	got := d.EmailProvider([]string{
		"aspmx.l.google.com.",
		"alt1.aspmx.l.google.com",
		"example-com.mail.protection.outlook.com",
		"mx.unknown.example",
		"aspmx.l.google.com.",
	})
	require.Len(t, got, 3)
	assert.Equal(t, detect.Detection{Type: detect.TypeEmail, Provider: "Google Workspace", Evidence: "aspmx.l.google.com.", Source: "mx"}, got[0])
	assert.Equal(t, "alt1.aspmx.l.google.com", got[1].Evidence)
	assert.Equal(t, "Microsoft 365", got[2].Provider)
}

func TestEmailProvider_SuffixBoundary(t *testing.T) {
	d := newDetector(t)
	assert.Empty(t, d.EmailProvider([]string{"mx.notgoogle.com"}))
}

func TestDNSHost(t *testing.T) {
	d := newDetector(t)
	got := d.DNSHost([]string{"ns-123.awsdns-45.com", "ada.ns.cloudflare.com", "a.iana-servers.net", "ns.self-hosted.example"})
	require.Len(t, got, 3)
	assert.Equal(t, "AWS Route 53", got[0].Provider)
	assert.Equal(t, "Cloudflare", got[1].Provider)
	assert.Equal(t, "IANA", got[2].Provider)
	for _, det := range got {
		assert.Equal(t, detect.TypeDNS, det.Type)
		assert.Equal(t, "ns", det.Source)
	}
}

func TestTXTRecord(t *testing.T) {
	d := newDetector(t)
	got := d.TXTRecord([]string{
		"v=spf1 include:_spf.google.com include:sendgrid.net ~all",
		"google-site-verification=abc123",
		"v=spf1 -all",
	})
	require.Len(t, got, 3)
	assert.Equal(t, "Google Workspace", got[0].Provider)
	assert.Equal(t, detect.TypeEmail, got[0].Type)
	assert.Equal(t, "SendGrid", got[1].Provider)
	assert.Equal(t, detect.Detection{Type: detect.TypeVerification, Provider: "Google", Evidence: "google-site-verification=abc123", Source: "txt"}, got[2])
}

func TestTXTRecord_CustomPatterns(t *testing.T) {
	d := detect.NewDetector(detect.Patterns{TXT: []detect.TXTPattern{
		{Substring: "acme-verify=", Provider: "Acme", Type: detect.TypeVerification},
	}})
	got := d.TXTRecord([]string{"acme-verify=1", "acme-verify=1"})
	assert.Len(t, got, 1)
}

func TestDetect_Order(t *testing.T) {
	d := newDetector(t)
	got := d.Detect(
		[]string{"ada.ns.cloudflare.com"},
		[]string{"aspmx.l.google.com"},
		[]string{"MS=ms12345"},
	)
	require.Len(t, got, 3)
	assert.Equal(t, []string{"ns", "mx", "txt"}, []string{got[0].Source, got[1].Source, got[2].Source})
}

func TestDetect_Empty(t *testing.T) {
	d := newDetector(t)
	assert.Empty(t, d.Detect(nil, nil, nil))
}
