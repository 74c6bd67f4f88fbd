package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistoryCommandDefaultsLimitWhenUnset(t *testing.T) {
	setupCmdTestEnv(t)

	decomposeDomainPath = "/domain.yaml"
	decomposeGoalPath = "/gm.yaml"
	decomposeKBPath = "/kb.yaml"
	decomposeConfigPath = "/config.yaml"
	decomposeWatch = false
	require.NoError(t, runDecompose(decomposeCmd, nil))

	historyLimit = 20
	err := runHistory(historyCmd, nil)
	assert.NoError(t, err)
}

func TestHistoryCommandHandlesEmptyHistory(t *testing.T) {
	setupCmdTestEnv(t)

	historyLimit = 5
	err := runHistory(historyCmd, nil)
	assert.NoError(t, err)
}
