package keycmd

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/Mattddixo/wpgp/internal/commands/common"
	"github.com/Mattddixo/wpgp/internal/commands/flags"
	"github.com/Mattddixo/wpgp/pkg/wpgp"
)

// Command manages identities
var Command = &cli.Command{
	Name:  "key",
	Usage: "Create and inspect identities",
	Description: `Create and inspect wpgp identities.

An identity is an RSA keypair with a name, mail address, comment and an
optional validity window in days. Keys are stored as wpgp key containers:
the metadata is masked and the container carries a digest, so a damaged or
edited key file is rejected on load.

Commands:
  create  Generate a new identity
  public  Print your public key container for sharing
  show    Show the metadata of a key container

Examples:
  # Create your identity in the keyring
  wpgp key create --name "Alice" --mail alice@example.com --days 365

  # Create a standalone key pair without touching the keyring
  wpgp key create --name "CI" --out ci.key --pub-out ci.pub

  # Share your public key
  wpgp key public -o alice.pub

  # Inspect a key file
  wpgp key show bob.pub`,
	Subcommands: []*cli.Command{
		createCommand,
		publicCommand,
		showCommand,
	},
}

var createCommand = &cli.Command{
	Name:  "create",
	Usage: "Generate a new identity",
	Description: `Generate a new RSA identity.

Without --out the identity becomes the keyring identity. Use --force to
replace an existing one; messages encrypted to the old key can then no longer
be decrypted.

With --passphrase the private key is wrapped in a scrypt envelope before it
is written.`,
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:     "name",
			Usage:    "Name bound to the key",
			Required: true,
		},
		&cli.StringFlag{
			Name:  "mail",
			Usage: "Mail address bound to the key",
		},
		&cli.StringFlag{
			Name:  "comment",
			Usage: "Free-form comment",
		},
		&cli.IntFlag{
			Name:        "days",
			Usage:       "Validity in days, 0 for none (max 365)",
			DefaultText: "from config",
		},
		&cli.IntFlag{
			Name:        "size",
			Usage:       "RSA modulus size in bits",
			DefaultText: "from config",
		},
		&cli.StringFlag{
			Name:  "out",
			Usage: "Write the private key here instead of the keyring",
		},
		&cli.StringFlag{
			Name:  "pub-out",
			Usage: "Write the public key here (with --out)",
		},
		flags.PassphraseFlag,
		flags.PassphraseFileFlag,
		flags.ForceFlag,
	},
	Action: func(c *cli.Context) error {
		cfg, k, err := common.OpenKeyring(c)
		if err != nil {
			return err
		}

		days := int(cfg.ValidityDays)
		if c.IsSet("days") {
			days = c.Int("days")
		}
		if days < 0 || days > wpgp.MaxValidityDays {
			return fmt.Errorf("invalid validity: %d days, must be between 0 and %d", days, wpgp.MaxValidityDays)
		}
		size := cfg.KeySize
		if c.IsSet("size") {
			size = c.Int("size")
		}

		passphrase, err := common.Passphrase(c)
		if err != nil {
			return err
		}

		// Keep the keyring intact if the identity cannot be stored
		out := c.String("out")
		if out == "" && k.HasIdentity() && !c.Bool("force") {
			return fmt.Errorf("keyring %s already has an identity, use --force to replace it", k.Dir())
		}

		fmt.Fprintf(c.App.ErrWriter, "Generating %d-bit key...\n", size)
		id, err := wpgp.Create(c.String("name"), c.String("mail"), c.String("comment"), uint32(days), size)
		if err != nil {
			return err
		}
		defer id.Close()

		opts := common.Options(c, cfg)
		if out != "" {
			if err := wpgp.WritePrivateKey(out, id, passphrase, opts...); err != nil {
				return err
			}
			if pubOut := c.String("pub-out"); pubOut != "" {
				if err := wpgp.WritePublicKey(pubOut, id); err != nil {
					return err
				}
			}
		} else {
			if err := k.SetIdentity(id, passphrase, c.Bool("force"), opts...); err != nil {
				return fmt.Errorf("failed to store identity: %w", err)
			}
			out = k.PrivateKeyPath()
		}

		fingerprint, err := id.Fingerprint(cfg.FingerprintAlgorithm)
		if err != nil {
			return err
		}
		common.Logger(c).Info("identity created", "name", id.Name(), "size", id.Size(), "protected", passphrase != "")

		fmt.Fprintln(c.App.Writer, "Identity created successfully!")
		printIdentity(c.App.Writer, id, "PRIVATE", cfg.FingerprintAlgorithm, fingerprint)
		fmt.Fprintln(c.App.Writer, "\nKeep your private key secure at:", out)
		return nil
	},
}

var publicCommand = &cli.Command{
	Name:  "public",
	Usage: "Print your public key container",
	Description: `Print the public key container of the keyring identity.

Send the file to the people who should encrypt to you. They add it to their
keyring with "wpgp keyring add".`,
	Flags: []cli.Flag{
		flags.OutputFlag,
	},
	Action: func(c *cli.Context) error {
		_, k, err := common.OpenKeyring(c)
		if err != nil {
			return err
		}

		raw, err := os.ReadFile(k.PublicKeyPath())
		if err != nil {
			return fmt.Errorf("failed to read public key, run \"wpgp key create\" first: %w", err)
		}
		if err := wpgp.VerifyKey(raw); err != nil {
			return fmt.Errorf("public key in keyring is invalid: %w", err)
		}

		dst, err := common.CreateOutput(c, c.String("output"), 0644)
		if err != nil {
			return err
		}
		_, err = dst.Write(raw)
		return dst.Finish(err)
	},
}

var showCommand = &cli.Command{
	Name:      "show",
	Usage:     "Show the metadata of a key container",
	ArgsUsage: "[key file]",
	Description: `Show the name, mail, type, size, validity and fingerprint of a key.

Without an argument the keyring identity is shown. Private key files protected
by a passphrase need --passphrase.`,
	Flags: []cli.Flag{
		flags.PassphraseFlag,
		flags.PassphraseFileFlag,
	},
	Action: func(c *cli.Context) error {
		cfg, k, err := common.OpenKeyring(c)
		if err != nil {
			return err
		}

		path := c.Args().First()
		if path == "" {
			path = k.PublicKeyPath()
		}
		raw, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read key: %w", err)
		}

		kind := "PUBLIC"
		id, err := wpgp.ImportPublicKey(raw)
		if err != nil {
			passphrase, perr := common.Passphrase(c)
			if perr != nil {
				return perr
			}
			id, err = wpgp.ImportPrivateKey(raw, passphrase)
			kind = "PRIVATE"
		}
		if err != nil {
			return fmt.Errorf("failed to load key: %w", err)
		}
		defer id.Close()

		fingerprint, err := id.Fingerprint(cfg.FingerprintAlgorithm)
		if err != nil {
			return err
		}
		printIdentity(c.App.Writer, id, kind, cfg.FingerprintAlgorithm, fingerprint)
		return nil
	},
}

func printIdentity(w io.Writer, id *wpgp.Identity, kind, algorithm, fingerprint string) {
	fmt.Fprintf(w, "\nName: %s\n", id.Name())
	if id.Mail() != "" {
		fmt.Fprintf(w, "Mail: %s\n", id.Mail())
	}
	if id.Comment() != "" {
		fmt.Fprintf(w, "Comment: %s\n", id.Comment())
	}
	fmt.Fprintf(w, "Type: %s\n", kind)
	fmt.Fprintf(w, "Size: %d bits\n", id.Size())

	if expires := id.ExpiresAt(); expires.IsZero() {
		fmt.Fprintln(w, "Expires: never")
	} else {
		state := ""
		if id.Expired(time.Now()) {
			state = " (expired)"
		}
		fmt.Fprintf(w, "Expires: %s%s\n", expires.Format(time.DateOnly), state)
	}
	fmt.Fprintf(w, "Fingerprint (%s): %s\n", algorithm, fingerprint)
}
