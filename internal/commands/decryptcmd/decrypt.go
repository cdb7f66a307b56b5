package decryptcmd

import (
	"errors"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/Mattddixo/wpgp/internal/commands/common"
	"github.com/Mattddixo/wpgp/internal/commands/flags"
	"github.com/Mattddixo/wpgp/pkg/wpgp"
)

// Command decrypts a message container
var Command = &cli.Command{
	Name:  "decrypt",
	Usage: "Decrypt a message with your identity",
	Description: `Decrypt a message container with the keyring identity.

The container digest is checked before any plaintext is written, so a
damaged or altered message produces no output. Input read from stdin is
buffered to a temporary file first because the header sits at the end of the
container.

--best-effort writes plaintext in a single pass and checks the digest at the
end. Output written before an integrity failure is removed when writing to a
file, but cannot be recalled from stdout.

Examples:
  # Decrypt a file
  wpgp decrypt -i report.pdf.wpgp -o report.pdf

  # Decrypt from a pipe with a protected key
  cat notes.tar.wpgp | wpgp decrypt --passphrase-file ~/.pw | tar x`,
	Flags: []cli.Flag{
		flags.InputFlag,
		flags.OutputFlag,
		flags.PassphraseFlag,
		flags.PassphraseFileFlag,
		&cli.BoolFlag{
			Name:  "best-effort",
			Usage: "Stream plaintext before the digest is checked",
		},
	},
	Action: func(c *cli.Context) error {
		cfg, k, err := common.OpenKeyring(c)
		if err != nil {
			return err
		}

		passphrase, err := common.Passphrase(c)
		if err != nil {
			return err
		}
		id, err := k.Identity(passphrase)
		if errors.Is(err, wpgp.ErrPassphraseRequired) {
			return fmt.Errorf("private key is protected, pass --passphrase or --passphrase-file")
		}
		if err != nil {
			return fmt.Errorf("failed to load identity: %w", err)
		}
		defer id.Close()

		src, err := common.OpenInput(c, c.String("in"))
		if err != nil {
			return err
		}
		defer src.Close()

		dst, err := common.CreateOutput(c, c.String("output"), 0600)
		if err != nil {
			return err
		}

		opts := common.Options(c, cfg)
		if c.Bool("best-effort") {
			opts = append(opts, wpgp.WithBestEffort())
		}
		err = wpgp.DecryptTo(c.Context, id, dst, src, opts...)
		return dst.Finish(err)
	},
}
