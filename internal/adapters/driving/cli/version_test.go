package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionCmd_Use(t *testing.T) {
	assert.Equal(t, "version", versionCmd.Use)
	assert.Equal(t, "Print the version number", versionCmd.Short)
}

func TestVersionCmd_Executes(t *testing.T) {
	resetCommandState(t)
	originalVersion := version
	SetVersion("test-version-1.0.0")
	defer func() { version = originalVersion }()

	out, err := execute(t, nil, "version")

	require.NoError(t, err)
	assert.Contains(t, out, "policydesk version test-version-1.0.0")
}

func TestVersionCmd_NeedsNoServices(t *testing.T) {
	resetCommandState(t)

	out, err := execute(t, nil, "version")

	require.NoError(t, err)
	assert.Contains(t, out, "policydesk version")
}
