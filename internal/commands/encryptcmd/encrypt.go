package encryptcmd

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/Mattddixo/wpgp/internal/commands/common"
	"github.com/Mattddixo/wpgp/internal/commands/flags"
	"github.com/Mattddixo/wpgp/pkg/wpgp"
)

// Command encrypts a file or stdin
var Command = &cli.Command{
	Name:  "encrypt",
	Usage: "Encrypt to a recipient",
	Description: `Encrypt a file or stdin to a recipient's public key.

The input is streamed, so memory use stays constant whatever its size. The
output is a message container that only the holder of the recipient's
private key can decrypt.

Without --to the message is encrypted to your own identity.

Examples:
  # Encrypt a file for Bob
  wpgp encrypt --to bob -i report.pdf -o report.pdf.wpgp

  # Encrypt stdin to yourself
  tar c notes | wpgp encrypt > notes.tar.wpgp`,
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "to",
			Aliases: []string{"r"},
			Usage:   "Recipient name or alias (default: own identity)",
		},
		flags.InputFlag,
		flags.OutputFlag,
	},
	Action: func(c *cli.Context) error {
		cfg, k, err := common.OpenKeyring(c)
		if err != nil {
			return err
		}

		var recipient *wpgp.Identity
		if to := c.String("to"); to != "" {
			recipient, err = k.Load(to)
		} else {
			recipient, err = k.PublicIdentity()
		}
		if err != nil {
			return fmt.Errorf("failed to load recipient: %w", err)
		}
		defer recipient.Close()

		src, err := common.OpenInput(c, c.String("in"))
		if err != nil {
			return err
		}
		defer src.Close()

		dst, err := common.CreateOutput(c, c.String("output"), 0644)
		if err != nil {
			return err
		}

		common.Logger(c).Debug("encrypting", "recipient", recipient.Name(), "chunk_size", cfg.ChunkSize)
		err = wpgp.EncryptTo(c.Context, recipient, dst, src, common.Options(c, cfg)...)
		return dst.Finish(err)
	},
}
