package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "mealbot", cmd.Use)
	assert.Contains(t, cmd.Long, "recipe index")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := []string{"intake", "moderate", "stats", "cleanup", "init"}

	for _, cmdName := range commands {
		t.Run(cmdName, func(t *testing.T) {
			subCmd, _, err := cmd.Find([]string{cmdName})
			require.NoError(t, err, "Command %s should exist", cmdName)
			require.NotNil(t, subCmd)
			assert.Equal(t, cmdName, subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)

	configFlag := cmd.PersistentFlags().Lookup("config")
	require.NotNil(t, configFlag)
	assert.Equal(t, "mealbot.cue", configFlag.DefValue)
}

func TestIntakeCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	intakeCmd, _, err := cmd.Find([]string{"intake"})
	require.NoError(t, err)

	eventFlag := intakeCmd.Flags().Lookup("event")
	require.NotNil(t, eventFlag)
	assert.Equal(t, "", eventFlag.DefValue)

	pushFlag := intakeCmd.Flags().Lookup("no-push")
	require.NotNil(t, pushFlag)
	assert.Equal(t, "false", pushFlag.DefValue)
}

func TestCleanupCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	cleanupCmd, _, err := cmd.Find([]string{"cleanup"})
	require.NoError(t, err)

	daysFlag := cleanupCmd.Flags().Lookup("days")
	require.NotNil(t, daysFlag)
	// -1 means "use the configured retention"
	assert.Equal(t, "-1", daysFlag.DefValue)
}

func TestInvalidFormatRejected(t *testing.T) {
	cmd := NewRootCommand()
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"--format", "xml", "stats"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestIsValidFormat(t *testing.T) {
	assert.True(t, isValidFormat("text"))
	assert.True(t, isValidFormat("json"))
	assert.False(t, isValidFormat("yaml"))
	assert.False(t, isValidFormat(""))
}
