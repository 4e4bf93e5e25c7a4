package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const defaultAPIURL = "http://localhost:8080"

var errVersionShown = errors.New("version shown")

// NewRootCommand builds the complete command tree.
func NewRootCommand(deps Dependencies) *cobra.Command {
	version := deps.Version
	if version == "" {
		version = "dev"
	}

	root := &cobra.Command{
		Use:           "finder",
		Short:         "Find nearby repair workshops and get a quick fault diagnosis.",
		SilenceErrors: true,
		SilenceUsage:  true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			if showVersion, _ := cmd.Flags().GetBool("version"); showVersion {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), version)
				return errVersionShown
			}
			return cmd.Help()
		},
	}
	root.Flags().BoolP("version", "v", false, "Show CLI version and exit.")

	root.AddCommand(newSearchCommand(deps))
	root.AddCommand(newDiagnoseCommand(deps))
	return root
}

type globalFlags struct {
	API    string
	Format string
}

func addGlobalFlags(fs *pflag.FlagSet, flags *globalFlags) {
	api := os.Getenv("FINDER_API_URL")
	if api == "" {
		api = defaultAPIURL
	}
	fs.StringVar(&flags.API, "api", api, "Base URL of the finder API (env FINDER_API_URL).")
	fs.StringVarP(&flags.Format, "format", "f", "table", "Output format: table, json, or yaml.")
}
