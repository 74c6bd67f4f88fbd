package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jvillaverde/missionforge/internal/mcpserver"
	"github.com/jvillaverde/missionforge/internal/store"
)

// runServeMCP itself blocks forever reading stdio, so this only exercises
// the construction path serve-mcp relies on: opening run history and
// building the tool server, not mcp.Server.Run.
func TestServeMCPCommandBuildsServerFromConfig(t *testing.T) {
	setupCmdTestEnv(t)

	hist, err := store.Open(cfg.RunHistoryDBPath)
	require.NoError(t, err)
	defer hist.Close()

	server := mcpserver.NewServer(mcpserver.Deps{FS: fs, History: hist}, version)
	assert.NotNil(t, server)
}
