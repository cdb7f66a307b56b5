package flags

import "github.com/urfave/cli/v2"

// Common flags used across multiple commands

// VerboseFlag enables debug logging
var VerboseFlag = &cli.BoolFlag{
	Name:    "verbose",
	Aliases: []string{"v"},
	Usage:   "Enable debug logging on stderr",
}

// KeyringFlag overrides the keyring directory
var KeyringFlag = &cli.StringFlag{
	Name:    "keyring",
	Aliases: []string{"k"},
	Usage:   "Keyring directory",
	EnvVars: []string{"WPGP_KEYRING_DIR"},
}

// InputFlag specifies the input file
var InputFlag = &cli.StringFlag{
	Name:    "in",
	Aliases: []string{"i"},
	Usage:   "Input file (default: stdin)",
}

// OutputFlag specifies the output file
var OutputFlag = &cli.StringFlag{
	Name:    "output",
	Aliases: []string{"o"},
	Usage:   "Output file (default: stdout)",
}

// ForceFlag forces the operation without confirmation
var ForceFlag = &cli.BoolFlag{
	Name:    "force",
	Aliases: []string{"f"},
	Usage:   "Overwrite existing keys",
}

// PassphraseFlag protects or unlocks a private key
var PassphraseFlag = &cli.StringFlag{
	Name:    "passphrase",
	Aliases: []string{"p"},
	Usage:   "Passphrase for the private key",
	EnvVars: []string{"WPGP_PASSPHRASE"},
}

// PassphraseFileFlag reads the passphrase from a file
var PassphraseFileFlag = &cli.StringFlag{
	Name:  "passphrase-file",
	Usage: "Read the private key passphrase from a file",
}
