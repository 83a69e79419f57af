package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donpedromz/bioguard/internal/errs"
)

func writeTemp(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bioguard.properties")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadParsesKeyValuePairs(t *testing.T) {
	path := writeTemp(t, "server.port=9443\r\n# a comment\r\nssl.keystore.path: /etc/bioguard/keystore.p12\r\n\r\n! legacy comment\r\n")
	cfg, err := Load(path)
	require.NoError(t, err)

	port, err := cfg.Require(KeyServerPort)
	require.NoError(t, err)
	assert.Equal(t, "9443", port)

	ksPath, err := cfg.Require(KeyKeystorePath)
	require.NoError(t, err)
	assert.Equal(t, "/etc/bioguard/keystore.p12", ksPath)
}

func TestRequireFailsFastOnMissingKey(t *testing.T) {
	path := writeTemp(t, "server.port=9443\n")
	cfg, err := Load(path)
	require.NoError(t, err)

	_, err = cfg.Require(KeyKeystorePassword)
	require.Error(t, err)
	assert.Equal(t, errs.Persistence, errs.KindOf(err))
}

func TestRequireFailsFastOnBlankValue(t *testing.T) {
	path := writeTemp(t, "storage.diseases.directory=   \n")
	cfg, err := Load(path)
	require.NoError(t, err)

	_, err = cfg.Require(KeyDiseasesDirectory)
	require.Error(t, err)
}
