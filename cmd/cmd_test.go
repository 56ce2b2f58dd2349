package cmd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandTree(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"convert", "overview", "detail", "windows", "history", "mcp", "version"} {
		assert.True(t, names[want], "missing subcommand %s", want)
	}

	sub := map[string]bool{}
	for _, c := range historyCmd.Commands() {
		sub[c.Name()] = true
	}
	assert.Equal(t, map[string]bool{"status": true, "clear": true, "export": true, "migrate": true}, sub)
}

func TestPersistentFlags(t *testing.T) {
	for _, name := range []string{"plot-config", "plot-config-csv", "history-backend", "log-level", "output"} {
		assert.NotNil(t, rootCmd.PersistentFlags().Lookup(name), "flag %s", name)
	}
	assert.NotNil(t, historyMigrateCmd.Flags().Lookup("target-version"))
}

func TestVersionCommand(t *testing.T) {
	var buf bytes.Buffer
	versionCmd.SetOut(&buf)
	versionCmd.Run(versionCmd, nil)
	require.Contains(t, buf.String(), "co2plot CLI")
	assert.Contains(t, buf.String(), "Version: dev")
}
