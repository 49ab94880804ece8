package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/JakeFAU/json-scraper/internal/options"
)

func newValidateCmd(st *cliState) *cobra.Command {
	var optionsPath string
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check the options file and print the fetch plan",
		Long: `Parses and validates the options file without touching the network, then
prints each output with its item and field counts and the distinct URLs a run
would fetch.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := st.ready(); err != nil {
				return err
			}
			opts, err := loadOptions(st, resolveOptionsPath(optionsPath, st.reporter, st.cfg))
			if err != nil {
				return err
			}
			return printPlan(cmd.OutOrStdout(), opts)
		},
	}
	cmd.Flags().StringVar(&optionsPath, "options", "", "options file (default: action input, then the options setting)")
	return cmd
}

func printPlan(w io.Writer, opts options.Options) error {
	urls := opts.DistinctURLs()
	if _, err := fmt.Fprintf(w, "outputs: %d\n", len(opts.Outputs)); err != nil {
		return fmt.Errorf("write plan: %w", err)
	}
	for _, out := range opts.Outputs {
		fields := 0
		for _, item := range out.Items {
			fields += len(item.Values)
		}
		if _, err := fmt.Fprintf(w, "  %s: %d item(s), %d field(s)\n", out.Path, len(out.Items), fields); err != nil {
			return fmt.Errorf("write plan: %w", err)
		}
	}
	if _, err := fmt.Fprintf(w, "distinct urls: %d\n", len(urls)); err != nil {
		return fmt.Errorf("write plan: %w", err)
	}
	for _, u := range urls {
		if _, err := fmt.Fprintf(w, "  %s\n", u); err != nil {
			return fmt.Errorf("write plan: %w", err)
		}
	}
	return nil
}
