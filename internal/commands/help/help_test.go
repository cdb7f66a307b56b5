package help

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/urfave/cli/v2"
)

func TestFlagString(t *testing.T) {
	t.Run("bool flag has no value", func(t *testing.T) {
		f := &cli.BoolFlag{Name: "force", Aliases: []string{"f"}, Usage: "Overwrite existing files"}
		assert.Equal(t, "--force, -f\tOverwrite existing files", flagString(f))
	})

	t.Run("env vars are listed", func(t *testing.T) {
		f := &cli.StringFlag{Name: "keyring", Usage: "Keyring directory", EnvVars: []string{"WPGP_KEYRING_DIR"}}
		assert.Equal(t, "--keyring value\tKeyring directory [$WPGP_KEYRING_DIR]", flagString(f))
	})

	t.Run("default is shown", func(t *testing.T) {
		f := &cli.IntFlag{Name: "size", Usage: "Key size in bits", Value: 2048}
		assert.Equal(t, "--size value\tKey size in bits (default: 2048)", flagString(f))
	})

	t.Run("zero default is hidden", func(t *testing.T) {
		f := &cli.IntFlag{Name: "days", Usage: "Validity in days"}
		assert.Equal(t, "--days value\tValidity in days", flagString(f))
	})
}

func TestSetupHelp(t *testing.T) {
	app := cli.NewApp()
	SetupHelp(app)
	assert.Contains(t, app.CustomAppHelpTemplate, "ENVIRONMENT:")
}
