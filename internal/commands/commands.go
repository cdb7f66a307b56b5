package commands

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/Mattddixo/wpgp/config"
	"github.com/Mattddixo/wpgp/internal/commands/decryptcmd"
	"github.com/Mattddixo/wpgp/internal/commands/encryptcmd"
	"github.com/Mattddixo/wpgp/internal/commands/flags"
	"github.com/Mattddixo/wpgp/internal/commands/help"
	"github.com/Mattddixo/wpgp/internal/commands/keycmd"
	"github.com/Mattddixo/wpgp/internal/commands/keyringcmd"
	"github.com/Mattddixo/wpgp/internal/commands/verifycmd"
	"github.com/Mattddixo/wpgp/internal/logging"
)

// Command definitions
var (
	KeyCommand     = keycmd.Command
	KeyringCommand = keyringcmd.Command
	EncryptCommand = encryptcmd.Command
	DecryptCommand = decryptcmd.Command
	VerifyCommand  = verifycmd.Command
)

// NewApp builds the wpgp command line application
func NewApp() *cli.App {
	app := &cli.App{
		Name:  "wpgp",
		Usage: "Minimal PGP-like secure containers",
		Description: `Encrypt files and streams to RSA identities using tamper-evident containers.

Each container holds a masked header, the payload, a SHA-256 digest and an
offset table. Messages are encrypted with a fresh AES-256 session key that is
wrapped with the recipient's public key.

Basic workflow:
  1. Create your identity: wpgp key create --name <name> --mail <mail>
  2. Share your public key: wpgp key public -o me.pub
  3. Add others' keys: wpgp keyring add bob.pub
  4. Encrypt: wpgp encrypt --to bob -i file -o file.wpgp
  5. Decrypt: wpgp decrypt -i file.wpgp -o file

For more information about a command, use: wpgp <command> -h`,
		Flags: []cli.Flag{
			flags.KeyringFlag,
			flags.VerboseFlag,
		},
		Commands: []*cli.Command{
			KeyCommand,
			KeyringCommand,
			EncryptCommand,
			DecryptCommand,
			VerifyCommand,
		},
		Before: func(c *cli.Context) error {
			// Load configuration
			cfg, err := config.NewWithKeyring(c.String("keyring"))
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}

			level := cfg.LogLevel
			if c.Bool("verbose") {
				level = "debug"
			}
			logger, err := logging.New(c.App.ErrWriter, level)
			if err != nil {
				return err
			}

			// Add config and logger to context
			c.Context = cfg.WithContext(c.Context)
			c.Context = logging.WithContext(c.Context, logger)
			return nil
		},
		ExitErrHandler: func(c *cli.Context, err error) {
			if err != nil {
				fmt.Fprintf(c.App.ErrWriter, "Error: %v\n", err)
				os.Exit(1)
			}
		},
	}

	// Setup custom help template
	help.SetupHelp(app)
	return app
}
