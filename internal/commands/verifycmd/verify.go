package verifycmd

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/Mattddixo/wpgp/internal/commands/common"
	"github.com/Mattddixo/wpgp/pkg/utils"
	"github.com/Mattddixo/wpgp/pkg/wpgp"
)

// Command verifies containers without decrypting them
var Command = &cli.Command{
	Name:      "verify",
	Usage:     "Check the integrity of containers",
	ArgsUsage: "<file>...",
	Description: `Check the framing and digest of key and message containers without any
key. Key containers are also checked for well-formed metadata and expiry.

The command fails if any file fails.

Examples:
  # Check a message and a key
  wpgp verify report.pdf.wpgp bob.pub

  # Also print a checksum of each file
  wpgp verify --checksum report.pdf.wpgp`,
	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:  "checksum",
			Usage: "Print a checksum of each file using the fingerprint algorithm",
		},
	},
	Action: func(c *cli.Context) error {
		if c.NArg() == 0 {
			return fmt.Errorf("expected at least one file")
		}

		cfg, err := common.GetConfig(c)
		if err != nil {
			return err
		}

		failed := 0
		for _, path := range c.Args().Slice() {
			raw, err := os.ReadFile(path)
			if err == nil {
				err = wpgp.Verify(raw)
			}
			if err != nil {
				failed++
				fmt.Fprintf(c.App.Writer, "%s: FAILED (%v)\n", path, err)
				continue
			}

			if !c.Bool("checksum") {
				fmt.Fprintf(c.App.Writer, "%s: OK\n", path)
				continue
			}
			sum, err := utils.HashFile(path, cfg.FingerprintAlgorithm)
			if err != nil {
				return err
			}
			fmt.Fprintf(c.App.Writer, "%s: OK %s:%s\n", path, cfg.FingerprintAlgorithm, sum)
		}

		if failed > 0 {
			return fmt.Errorf("%d of %d containers failed verification", failed, c.NArg())
		}
		return nil
	},
}
