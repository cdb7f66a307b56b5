package help

import (
	"strings"

	"github.com/urfave/cli/v2"
)

// Custom help template that removes default values for boolean flags and
// lists the environment variables read by wpgp
const customHelpTemplate = `{{define "helpNameTemplate"}}{{.Name}}{{if .Usage}} - {{.Usage}}{{end}}{{end}}
{{define "helpUsageTemplate"}}{{if .UsageText}}{{.UsageText}}{{else}}{{.HelpName}} {{if .VisibleFlags}}[global options]{{end}}{{if .Commands}} command [command options]{{end}} {{if .ArgsUsage}}{{.ArgsUsage}}{{else}}[arguments...]{{end}}{{end}}{{end}}

NAME:
   {{template "helpNameTemplate" .}}

USAGE:
   {{template "helpUsageTemplate" .}}

{{if .Description}}DESCRIPTION:
   {{.Description}}{{end}}

{{if .VisibleCommands}}COMMANDS:{{range .VisibleCategories}}
{{if .Name}}
   {{.Name}}:{{end}}{{range .VisibleCommands}}
     {{join .Names ", "}}{{"\t"}}{{.Usage}}{{end}}
{{end}}{{end}}

{{if .VisibleFlags}}OPTIONS:{{range .VisibleFlagCategories}}
{{if .Name}}
   {{.Name}}:{{end}}{{range .VisibleFlags}}
   {{.String}}{{end}}
{{end}}{{end}}

ENVIRONMENT:
   WPGP_KEYRING_DIR, WPGP_KEY_SIZE, WPGP_VALIDITY_DAYS, WPGP_FINGERPRINT_ALGORITHM,
   WPGP_CHUNK_SIZE, WPGP_SCRYPT_WORK_FACTOR, WPGP_LOG_LEVEL, WPGP_PASSPHRASE
`

// flagString renders one line of the OPTIONS section. Flags that take a
// value show their default and the environment variables they read.
func flagString(f cli.Flag) string {
	names := make([]string, 0, len(f.Names()))
	for _, name := range f.Names() {
		if len(name) == 1 {
			names = append(names, "-"+name)
		} else {
			names = append(names, "--"+name)
		}
	}
	line := strings.Join(names, ", ")

	doc, ok := f.(cli.DocGenerationFlag)
	if !ok {
		return line
	}

	usage := doc.GetUsage()
	if env := doc.GetEnvVars(); len(env) > 0 {
		usage += " [$" + strings.Join(env, ", $") + "]"
	}
	if !doc.TakesValue() {
		return line + "\t" + usage
	}

	switch def := doc.GetDefaultText(); def {
	case "", `""`, "0":
		return line + " value\t" + usage
	default:
		return line + " value\t" + usage + " (default: " + def + ")"
	}
}

// SetupHelp installs the wpgp help template and flag formatting on app.
func SetupHelp(app *cli.App) {
	cli.FlagStringer = flagString
	app.CustomAppHelpTemplate = customHelpTemplate
}
