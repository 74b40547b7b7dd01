package cmd

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mintaslang/dew/internal/router"
)

func TestVersionText(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs([]string{"version"})
	versionFormat = "text"

	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, out.String(), "dew dev")
	assert.Contains(t, out.String(), "Platform: ")
}

func TestVersionJSON(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs([]string{"version", "--format", "json"})

	require.NoError(t, rootCmd.Execute())

	var info map[string]string
	require.NoError(t, json.Unmarshal(out.Bytes(), &info))
	assert.Equal(t, "dev", info["version"])
	assert.NotEmpty(t, info["go_version"])
}

func TestVersionUnsupportedFormat(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs([]string{"version", "--format", "xml"})

	assert.Error(t, rootCmd.Execute())
	versionFormat = "text"
}

func TestPrintRoutes(t *testing.T) {
	table := router.NewTable()
	table.Add(router.Route{Method: router.GET, Path: "/", Handler: "home"})
	table.BeginGroup("/api", []string{"logger"})
	table.Add(router.Route{Method: router.POST, Path: "/items", Handler: "create"})
	table.EndGroup()
	table.AddStatic("/static/", "./public")
	table.ErrorHandlers[404] = "missing"

	var out bytes.Buffer
	require.NoError(t, printRoutes(&out, table))

	text := out.String()
	assert.Contains(t, text, "GET")
	assert.Contains(t, text, "/api/items")
	assert.Contains(t, text, "[logger]")
	assert.Contains(t, text, "/static/")
	assert.Contains(t, text, "404")
}

func TestPrintRoutesEmpty(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, printRoutes(&out, router.NewTable()))
	assert.Contains(t, out.String(), "no routes registered")
}
