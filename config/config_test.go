package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/0xPolygon/cdk-txrelay/transport"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := LoadFile(nil, "")
	require.NoError(t, err)

	require.Equal(t, transport.Direct, cfg.Transport.Type)
	require.Equal(t, "http://localhost:8545", cfg.Transport.URL)
	require.Equal(t, 10*time.Second, cfg.Transport.DialTimeout.Duration)
	require.Equal(t, 30*time.Second, cfg.Transport.RequestTimeout.Duration)
	require.Equal(t, "pending", cfg.Sequencer.BlockTag)
	require.False(t, cfg.Relay.IsDev)
	require.Equal(t, time.Second, cfg.Relay.FundingPollInterval.Duration)
	require.Empty(t, cfg.Journal.DBPath)
	require.True(t, cfg.Proxy.Enabled)
	require.Equal(t, 8547, cfg.Proxy.Port)
	require.Equal(t, 100, cfg.Proxy.MaxBatchSize)
	require.Empty(t, cfg.Accounts.Signers)
	require.Equal(t, []string{"stderr"}, cfg.Log.Outputs)
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	file := FileData{Name: "custom", Content: `
EndpointURL = "ws://node:8546"
IsDev = true

[Transport]
Type = "streaming"
Origin = "http://relay"

[[Accounts.Signers]]
PrivateKey = "0x4c0883a69102937d6231471b5dbb6204fe5129617082792ae468d01a3f362318"
Balance = "1000000000000000000"

[Journal]
DBPath = "/data/journal.sqlite"
`}
	cfg, err := LoadFile([]FileData{file}, "")
	require.NoError(t, err)

	require.Equal(t, transport.Streaming, cfg.Transport.Type)
	require.Equal(t, "ws://node:8546", cfg.Transport.URL)
	require.Equal(t, "http://relay", cfg.Transport.Origin)
	require.True(t, cfg.Relay.IsDev)
	require.Len(t, cfg.Accounts.Signers, 1)
	require.Equal(t, "1000000000000000000", cfg.Accounts.Signers[0].Balance)
	require.Equal(t, "/data/journal.sqlite", cfg.Journal.DBPath)
	// untouched sections keep their defaults
	require.Equal(t, "pending", cfg.Sequencer.BlockTag)
}

func TestLoadFileEnvVars(t *testing.T) {
	t.Setenv("TXRELAY_EndpointURL", "http://from-env:8545")
	t.Setenv("TXRELAY_SEQUENCER_BLOCKTAG", "latest")

	cfg, err := LoadFile(nil, "")
	require.NoError(t, err)
	require.Equal(t, "http://from-env:8545", cfg.Transport.URL)
	require.Equal(t, "latest", cfg.Sequencer.BlockTag)
}

func TestLoadFileSavesRenderedConfig(t *testing.T) {
	dir := t.TempDir()
	_, err := LoadFile([]FileData{{Name: "custom", Content: "EndpointURL = \"http://saved:8545\"\n"}}, dir)
	require.NoError(t, err)

	content, err := os.ReadFile(filepath.Join(dir, SaveConfigFileName))
	require.NoError(t, err)
	require.Contains(t, string(content), `URL = "http://saved:8545"`)
	require.NotContains(t, string(content), "{{")
}

func TestLoadFileMissingVar(t *testing.T) {
	_, err := LoadFile([]FileData{{Name: "custom", Content: "[Transport]\nURL = \"{{NodeURL}}\"\n"}}, "")
	require.ErrorIs(t, err, ErrMissingVars)
}

func TestReadFiles(t *testing.T) {
	dir := t.TempDir()
	tomlFile := filepath.Join(dir, "a.toml")
	jsonFile := filepath.Join(dir, "b.json")
	require.NoError(t, os.WriteFile(tomlFile, []byte("[Proxy]\nPort = 9000\n"), 0600))
	require.NoError(t, os.WriteFile(jsonFile, []byte(`{"Proxy": {"MaxBatchSize": 5}}`), 0600))

	files, err := readFiles([]string{tomlFile, jsonFile})
	require.NoError(t, err)
	cfg, err := LoadFile(files, "")
	require.NoError(t, err)
	require.Equal(t, 9000, cfg.Proxy.Port)
	require.Equal(t, 5, cfg.Proxy.MaxBatchSize)

	_, err = readFiles([]string{filepath.Join(dir, "missing.toml")})
	require.Error(t, err)
}

func TestSaveConfigToString(t *testing.T) {
	cfg, err := LoadFile(nil, "")
	require.NoError(t, err)
	s, err := SaveConfigToString(*cfg)
	require.NoError(t, err)
	require.Contains(t, s, "[Transport]")
	require.Contains(t, s, "http://localhost:8545")
}
