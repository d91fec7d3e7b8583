package resolver

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/proxy"
)

func clearProxyEnv(t *testing.T) {
	t.Helper()
	t.Setenv("ALL_PROXY", "")
	t.Setenv("all_proxy", "")
}

func TestNewResolver_EmptyProxy(t *testing.T) {
	clearProxyEnv(t)
	r, err := NewResolver("")
	require.NoError(t, err)
	assert.Nil(t, r.Dial, "standard resolver should have nil Dial")
}

func TestNewResolver_NonSocks5Proxy(t *testing.T) {
	clearProxyEnv(t)
	for _, u := range []string{"http://proxy.example.com:8080", "https://proxy.example.com:8080"} {
		r, err := NewResolver(u)
		require.NoError(t, err, "proxy=%s", u)
		assert.Nil(t, r.Dial, "non-socks5 proxy should use standard resolver")
	}
}

func TestNewResolver_Socks5Proxy(t *testing.T) {
	r, err := NewResolver("socks5://127.0.0.1:1080")
	require.NoError(t, err)
	assert.NotNil(t, r.Dial)
	assert.True(t, r.PreferGo)
}

func TestNewResolver_AllProxySocks5(t *testing.T) {
	t.Setenv("ALL_PROXY", "socks5://127.0.0.1:1080")
	r, err := NewResolver("")
	require.NoError(t, err)
	assert.NotNil(t, r.Dial)
}

func TestDialer(t *testing.T) {
	clearProxyEnv(t)
	d, err := Dialer("")
	require.NoError(t, err)
	assert.Equal(t, proxy.Direct, d)

	d, err = Dialer("socks5://127.0.0.1:1080")
	require.NoError(t, err)
	assert.NotEqual(t, proxy.Direct, d)
}

func TestNewExchanger(t *testing.T) {
	clearProxyEnv(t)
	e, err := NewExchanger("", 2*time.Second)
	require.NoError(t, err)
	assert.Nil(t, e.socks5)
	assert.Equal(t, 2*time.Second, e.udp.Timeout)
	assert.Equal(t, "tcp", e.tcp.Net)

	e, err = NewExchanger("socks5://127.0.0.1:1080", time.Second)
	require.NoError(t, err)
	assert.NotNil(t, e.socks5)
}

func TestNameserverFrom(t *testing.T) {
	dir := t.TempDir()

	conf := filepath.Join(dir, "resolv.conf")
	require.NoError(t, os.WriteFile(conf, []byte("search lan\nnameserver 192.0.2.53\nnameserver 192.0.2.54\n"), 0o600))
	assert.Equal(t, "192.0.2.53:53", nameserverFrom(conf))

	v6 := filepath.Join(dir, "resolv6.conf")
	require.NoError(t, os.WriteFile(v6, []byte("nameserver 2001:db8::53\n"), 0o600))
	assert.Equal(t, "[2001:db8::53]:53", nameserverFrom(v6))

	assert.Equal(t, FallbackNameserver, nameserverFrom(filepath.Join(dir, "missing.conf")))
}
