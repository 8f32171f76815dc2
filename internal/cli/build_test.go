package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveBuildRefGeneratesWhenEmpty(t *testing.T) {
	ref, err := resolveBuildRef("")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(ref, "ferry-build:"))
	assert.Len(t, strings.TrimPrefix(ref, "ferry-build:"), 7)
}

func TestResolveBuildRef(t *testing.T) {
	tests := []struct {
		name    string
		tag     string
		wantErr bool
	}{
		{
			name: "fully qualified",
			tag:  "registry.example.com/myorg/myapp:v1.2.0",
		},
		{
			name: "short name",
			tag:  "myapp:dev",
		},
		{
			name:    "uppercase repository",
			tag:     "registry.example.com/MyOrg/myapp:v1",
			wantErr: true,
		},
		{
			name:    "invalid reference",
			tag:     "registry.example.com/myorg/myapp:v1:extra",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ref, err := resolveBuildRef(tt.tag)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.tag, ref)
		})
	}
}

func TestCollectBuildArgs(t *testing.T) {
	dir := t.TempDir()
	argFile := filepath.Join(dir, "build.env")
	require.NoError(t, os.WriteFile(argFile, []byte("VERSION=1.2.0\nCGO_ENABLED=0\n"), 0o644))

	t.Run("empty", func(t *testing.T) {
		args, err := collectBuildArgs(nil, "")
		require.NoError(t, err)
		assert.Nil(t, args)
	})

	t.Run("flags only", func(t *testing.T) {
		args, err := collectBuildArgs([]string{"VERSION=2.0.0", "EMPTY="}, "")
		require.NoError(t, err)
		require.NotNil(t, args["VERSION"])
		assert.Equal(t, "2.0.0", *args["VERSION"])
		require.NotNil(t, args["EMPTY"])
		assert.Equal(t, "", *args["EMPTY"])
	})

	t.Run("file only", func(t *testing.T) {
		args, err := collectBuildArgs(nil, argFile)
		require.NoError(t, err)
		require.Len(t, args, 2)
		assert.Equal(t, "1.2.0", *args["VERSION"])
		assert.Equal(t, "0", *args["CGO_ENABLED"])
	})

	t.Run("flags override file", func(t *testing.T) {
		args, err := collectBuildArgs([]string{"VERSION=2.0.0"}, argFile)
		require.NoError(t, err)
		assert.Equal(t, "2.0.0", *args["VERSION"])
		assert.Equal(t, "0", *args["CGO_ENABLED"])
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := collectBuildArgs(nil, filepath.Join(dir, "nope.env"))
		assert.Error(t, err)
	})

	t.Run("invalid flag", func(t *testing.T) {
		_, err := collectBuildArgs([]string{"no-equals"}, "")
		assert.Error(t, err)
	})
}

func TestParseKeyValues(t *testing.T) {
	tests := []struct {
		name    string
		pairs   []string
		want    map[string]string
		wantErr bool
	}{
		{
			name:  "empty",
			pairs: nil,
			want:  nil,
		},
		{
			name:  "pairs",
			pairs: []string{"org.example.team=infra", "org.example.release=stable"},
			want: map[string]string{
				"org.example.team":    "infra",
				"org.example.release": "stable",
			},
		},
		{
			name:  "empty value",
			pairs: []string{"flag="},
			want:  map[string]string{"flag": ""},
		},
		{
			name:    "missing separator",
			pairs:   []string{"noequals"},
			wantErr: true,
		},
		{
			name:    "empty key",
			pairs:   []string{"=value"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseKeyValues(tt.pairs)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
