package keyringcmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/Mattddixo/wpgp/config"
	"github.com/Mattddixo/wpgp/internal/commands/common"
)

// Command manages the keyring
var Command = &cli.Command{
	Name:  "keyring",
	Usage: "Manage the keyring and known recipients",
	Description: `Manage the keyring: your own identity and the public keys of the people
you encrypt to.

The keyring lives in ~/.wpgp by default. Override it with --keyring or
WPGP_KEYRING_DIR.

Commands:
  init    Create the keyring directory and its config file
  add     Add a recipient's public key container
  list    List known recipients
  remove  Remove a recipient

Examples:
  # Create the keyring
  wpgp keyring init

  # Add Bob's public key under a short alias
  wpgp keyring add --alias b bob.pub

  # List recipients
  wpgp keyring list

  # Remove a recipient
  wpgp keyring remove bob

For more information about a specific command, use:
  wpgp keyring <command> --help`,
	Subcommands: []*cli.Command{
		initCommand,
		addCommand,
		listCommand,
		removeCommand,
	},
}

var initCommand = &cli.Command{
	Name:  "init",
	Usage: "Create the keyring",
	Description: `Create the keyring directory and write the current configuration to
config.yaml inside it, unless the file already exists.

This command will:
1. Create the keyring directory with owner-only permissions
2. Write config.yaml with the active settings
3. Report whether an identity already exists`,
	Action: func(c *cli.Context) error {
		cfg, err := common.GetConfig(c)
		if err != nil {
			return err
		}
		if err := cfg.EnsureKeyringDir(); err != nil {
			return err
		}

		_, k, err := common.OpenKeyring(c)
		if err != nil {
			return err
		}

		configPath := filepath.Join(k.Dir(), config.ConfigFileName)
		if _, err := os.Stat(configPath); errors.Is(err, os.ErrNotExist) {
			if err := cfg.Save(configPath); err != nil {
				return err
			}
		}

		fmt.Fprintln(c.App.Writer, "Keyring initialized at", k.Dir())
		if !k.HasIdentity() {
			fmt.Fprintln(c.App.Writer, "\nNo identity yet. Create one with:")
			fmt.Fprintln(c.App.Writer, "  wpgp key create --name <name> --mail <mail>")
		}
		return nil
	},
}

var addCommand = &cli.Command{
	Name:      "add",
	Usage:     "Add a recipient",
	ArgsUsage: "<public key file>",
	Description: `Add a recipient's public key container to the keyring.

The container is verified before it is stored: a damaged, expired or private
key is refused. The recipient name defaults to the name inside the key.`,
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "name",
			Usage: "Name to store the recipient under",
		},
		&cli.StringFlag{
			Name:  "alias",
			Usage: "Short alias for --to",
		},
		&cli.StringFlag{
			Name:  "notes",
			Usage: "Free-form notes",
		},
	},
	Action: func(c *cli.Context) error {
		if c.NArg() != 1 {
			return fmt.Errorf("expected one public key file")
		}

		_, k, err := common.OpenKeyring(c)
		if err != nil {
			return err
		}

		raw, err := os.ReadFile(c.Args().First())
		if err != nil {
			return fmt.Errorf("failed to read public key: %w", err)
		}

		r, err := k.Add(raw, c.String("name"), c.String("alias"), c.String("notes"))
		if err != nil {
			return fmt.Errorf("failed to add recipient: %w", err)
		}
		common.Logger(c).Info("recipient added", "name", r.Name, "fingerprint", r.Fingerprint)

		fmt.Fprintf(c.App.Writer, "Added recipient '%s' successfully!\n", r.Name)
		fmt.Fprintf(c.App.Writer, "Fingerprint (%s): %s\n", r.Algorithm, r.Fingerprint)
		return nil
	},
}

var listCommand = &cli.Command{
	Name:  "list",
	Usage: "List recipients",
	Description: `List all known recipients with their fingerprints.

Compare fingerprints with the key owner over a separate channel before
trusting a key.`,
	Action: func(c *cli.Context) error {
		_, k, err := common.OpenKeyring(c)
		if err != nil {
			return err
		}

		recipients := k.List()
		if len(recipients) == 0 {
			fmt.Fprintln(c.App.Writer, "No recipients found.")
			return nil
		}

		fmt.Fprintln(c.App.Writer, "Recipients:")
		for _, r := range recipients {
			fmt.Fprintf(c.App.Writer, "\nName: %s\n", r.Name)
			if r.Alias != "" {
				fmt.Fprintf(c.App.Writer, "Alias: %s\n", r.Alias)
			}
			if r.Mail != "" {
				fmt.Fprintf(c.App.Writer, "Mail: %s\n", r.Mail)
			}
			fmt.Fprintf(c.App.Writer, "Fingerprint (%s): %s\n", r.Algorithm, r.Fingerprint)
			fmt.Fprintf(c.App.Writer, "Added: %s\n", r.Added.Format(time.DateTime))
			if !r.LastUsed.IsZero() {
				fmt.Fprintf(c.App.Writer, "Last used: %s\n", r.LastUsed.Format(time.DateTime))
			}
			if r.Notes != "" {
				fmt.Fprintf(c.App.Writer, "Notes: %s\n", r.Notes)
			}
		}
		return nil
	},
}

var removeCommand = &cli.Command{
	Name:      "remove",
	Usage:     "Remove a recipient",
	ArgsUsage: "<name or alias>",
	Description: `Remove a recipient and its stored key.

After removal you can no longer encrypt to this recipient until the key is
added again.`,
	Action: func(c *cli.Context) error {
		if c.NArg() != 1 {
			return fmt.Errorf("expected one recipient name")
		}

		_, k, err := common.OpenKeyring(c)
		if err != nil {
			return err
		}

		name := c.Args().First()
		if err := k.Remove(name); err != nil {
			return fmt.Errorf("failed to remove recipient: %w", err)
		}

		fmt.Fprintf(c.App.Writer, "Removed recipient '%s' successfully!\n", name)
		return nil
	},
}
