package gather

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractBabelCommandFindsSubcommand(t *testing.T) {
	cmd, ok := extractBabelCommand("babel status --json")
	require.True(t, ok)
	assert.Equal(t, "status", cmd)
}

func TestExtractBabelCommandIgnoresNonBabel(t *testing.T) {
	_, ok := extractBabelCommand("ls -la")
	assert.False(t, ok)
}

func TestCheckBashCommandSafetyAllowsSafeCommand(t *testing.T) {
	assert.NoError(t, checkBashCommandSafety("babel status"))
}

func TestCheckBashCommandSafetyRejectsMutation(t *testing.T) {
	err := checkBashCommandSafety("babel capture 'decision'")
	require.Error(t, err)
	var violation *SafetyViolation
	require.ErrorAs(t, err, &violation)
	assert.Equal(t, CategoryMutation, violation.Command.Category)
	assert.Contains(t, err.Error(), "REJECTED")
}

func TestCheckBashCommandSafetyRejectsUnknownSubcommand(t *testing.T) {
	err := checkBashCommandSafety("babel something-new")
	require.Error(t, err)
	var violation *SafetyViolation
	require.ErrorAs(t, err, &violation)
	assert.Equal(t, CategoryMutation, violation.Command.Category)
}

func TestCheckBashCommandsSafetyStopsAtFirstViolation(t *testing.T) {
	err := checkBashCommandsSafety([]string{"babel status", "babel init"})
	require.Error(t, err)
}

func TestGetSafeAndUnsafeCommandsPartitionRegistry(t *testing.T) {
	safe := getSafeCommands()
	unsafe := getUnsafeCommands()
	assert.Contains(t, safe, "status")
	assert.Contains(t, unsafe, "capture")
	assert.Len(t, safe, len(BabelCommandSafety)-len(unsafe))
}
