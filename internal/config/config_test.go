package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeTLSFiles creates dummy ca/cert/key files and returns their paths.
func writeTLSFiles(t *testing.T) (ca, cert, key string) {
	t.Helper()
	dir := t.TempDir()
	ca = filepath.Join(dir, "ca.pem")
	cert = filepath.Join(dir, "cert.pem")
	key = filepath.Join(dir, "key.pem")
	for _, p := range []string{ca, cert, key} {
		require.NoError(t, os.WriteFile(p, []byte("-----BEGIN TEST-----\n"), 0600))
	}
	return ca, cert, key
}

func tcpContext(t *testing.T) Context {
	ca, cert, key := writeTLSFiles(t)
	return Context{
		Host: "tcp://build-01.internal:2376",
		CA:   ca,
		Cert: cert,
		Key:  key,
	}
}

func TestLoadMissingFileReturnsEmptyStore(t *testing.T) {
	store, err := Load(filepath.Join(t.TempDir(), "contexts.yaml"))
	require.NoError(t, err)
	assert.Empty(t, store.Contexts)
	assert.Empty(t, store.Active)
}

func TestAddSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "contexts.yaml")

	store, err := Load(path)
	require.NoError(t, err)

	c := tcpContext(t)
	require.NoError(t, store.Add("prod", c))
	require.NoError(t, store.SetActive("prod"))
	require.NoError(t, store.Save())

	// File permissions must keep credential hints private.
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "prod", loaded.Active)

	got, err := loaded.Get("prod")
	require.NoError(t, err)
	assert.Equal(t, c.Host, got.Host)
	assert.Equal(t, c.CA, got.CA)
	assert.Equal(t, c.Cert, got.Cert)
	assert.Equal(t, c.Key, got.Key)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestAddRejectsDuplicate(t *testing.T) {
	store, err := Load(filepath.Join(t.TempDir(), "contexts.yaml"))
	require.NoError(t, err)

	c := tcpContext(t)
	require.NoError(t, store.Add("prod", c))
	assert.Error(t, store.Add("prod", c))
}

func TestValidate(t *testing.T) {
	ca, cert, key := writeTLSFiles(t)

	tests := []struct {
		name    string
		c       Context
		wantErr string
	}{
		{
			name: "valid tcp",
			c:    Context{Host: "tcp://daemon:2376", CA: ca, Cert: cert, Key: key},
		},
		{
			name: "valid unix",
			c:    Context{Host: "unix:///var/run/docker.sock"},
		},
		{
			name:    "missing host",
			c:       Context{CA: ca, Cert: cert, Key: key},
			wantErr: "host is required",
		},
		{
			name:    "tcp without tls triple",
			c:       Context{Host: "tcp://daemon:2376", CA: ca},
			wantErr: "require --ca, --cert and --key",
		},
		{
			name:    "unix with tls",
			c:       Context{Host: "unix:///var/run/docker.sock", CA: ca, Cert: cert, Key: key},
			wantErr: "do not take TLS material",
		},
		{
			name:    "unsupported scheme",
			c:       Context{Host: "http://daemon:2375"},
			wantErr: "unsupported host scheme",
		},
		{
			name:    "unreadable cert file",
			c:       Context{Host: "tcp://daemon:2376", CA: ca, Cert: filepath.Join(t.TempDir(), "missing.pem"), Key: key},
			wantErr: "cert file is not readable",
		},
		{
			name:    "password env without user",
			c:       Context{Host: "unix:///var/run/docker.sock", RegistryPasswordEnv: "REG_PASS"},
			wantErr: "requires registry_user",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.c)
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				assert.ErrorContains(t, err, tt.wantErr)
			}
		})
	}
}

func TestRemoveClearsActive(t *testing.T) {
	store, err := Load(filepath.Join(t.TempDir(), "contexts.yaml"))
	require.NoError(t, err)

	require.NoError(t, store.Add("prod", tcpContext(t)))
	require.NoError(t, store.SetActive("prod"))
	require.NoError(t, store.Remove("prod"))

	assert.Empty(t, store.Active)
	assert.Error(t, store.Remove("prod"))
}

func TestSetActiveUnknown(t *testing.T) {
	store, err := Load(filepath.Join(t.TempDir(), "contexts.yaml"))
	require.NoError(t, err)
	assert.Error(t, store.SetActive("nope"))
}

func TestResolvePrecedence(t *testing.T) {
	store, err := Load(filepath.Join(t.TempDir(), "contexts.yaml"))
	require.NoError(t, err)

	require.NoError(t, store.Add("prod", tcpContext(t)))
	require.NoError(t, store.Add("staging", tcpContext(t)))
	require.NoError(t, store.SetActive("prod"))

	// Active pointer is the fallback.
	name, _, err := store.Resolve("")
	require.NoError(t, err)
	assert.Equal(t, "prod", name)

	// Env var beats the active pointer.
	t.Setenv(EnvContext, "staging")
	name, _, err = store.Resolve("")
	require.NoError(t, err)
	assert.Equal(t, "staging", name)

	// Flag beats everything.
	name, _, err = store.Resolve("prod")
	require.NoError(t, err)
	assert.Equal(t, "prod", name)
}

func TestResolveNoSelection(t *testing.T) {
	t.Setenv(EnvContext, "")

	store, err := Load(filepath.Join(t.TempDir(), "contexts.yaml"))
	require.NoError(t, err)

	_, _, err = store.Resolve("")
	assert.ErrorContains(t, err, "no context selected")
}

func TestRegistryPassword(t *testing.T) {
	t.Setenv("FERRY_TEST_REG_PASS", "s3cret")

	c := Context{RegistryUser: "ci", RegistryPasswordEnv: "FERRY_TEST_REG_PASS"}
	assert.Equal(t, "s3cret", c.RegistryPassword())

	assert.Empty(t, Context{}.RegistryPassword())
}
