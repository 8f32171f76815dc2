package engine

import (
	"encoding/base64"
	"encoding/json"
	"testing"

	"github.com/docker/docker/api/types/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeAuth(t *testing.T, encoded string) registry.AuthConfig {
	t.Helper()
	raw, err := base64.StdEncoding.DecodeString(encoded)
	require.NoError(t, err)

	var auth registry.AuthConfig
	require.NoError(t, json.Unmarshal(raw, &auth))
	return auth
}

func TestEncodeRegistryAuth(t *testing.T) {
	encoded, err := encodeRegistryAuth("registry.example.com/myorg/myapp:v1", "ci", "s3cret")
	require.NoError(t, err)

	auth := decodeAuth(t, encoded)
	assert.Equal(t, "ci", auth.Username)
	assert.Equal(t, "s3cret", auth.Password)
	assert.Equal(t, "registry.example.com", auth.ServerAddress)
}

func TestEncodeRegistryAuthWithPort(t *testing.T) {
	encoded, err := encodeRegistryAuth("registry.example.com:5000/myapp:dev", "ci", "pw")
	require.NoError(t, err)

	auth := decodeAuth(t, encoded)
	assert.Equal(t, "registry.example.com:5000", auth.ServerAddress)
}

func TestEncodeRegistryAuthAnonymous(t *testing.T) {
	// Pushes without credentials still send a valid header addressed to
	// the registry.
	encoded, err := encodeRegistryAuth("registry.example.com/myapp:v1", "", "")
	require.NoError(t, err)

	auth := decodeAuth(t, encoded)
	assert.Empty(t, auth.Username)
	assert.Empty(t, auth.Password)
	assert.Equal(t, "registry.example.com", auth.ServerAddress)
}
