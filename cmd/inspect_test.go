package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInspectCommandPrintsPlainSummaryWithNoTUI(t *testing.T) {
	setupCmdTestEnv(t)

	inspectDomainPath = "/domain.yaml"
	inspectGoalPath = "/gm.yaml"
	inspectKBPath = "/kb.yaml"
	inspectConfigPath = "/config.yaml"
	inspectNoTUI = true

	err := runInspect(inspectCmd, nil)
	assert.NoError(t, err)
}
