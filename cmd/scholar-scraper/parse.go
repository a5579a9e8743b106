package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/scholar-scraper/internal/extract"
	"github.com/pdiddy/scholar-scraper/internal/scrape"
)

var parseCmd = &cobra.Command{
	Use:   "parse FILE",
	Short: "Extract articles from a saved results page",
	Long: `Parse runs the result extractor over an HTML file saved from a results
page, without any network access. Blocks without a title are skipped and
counted.`,
	Args: cobra.ExactArgs(1),
	RunE: runParse,
}

func init() {
	parseCmd.Flags().Bool("json", false, "output records as JSON")

	rootCmd.AddCommand(parseCmd)
}

func runParse(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading page: %w", err)
	}
	ex, err := extract.Extract(string(data))
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		if err := scrape.FormatJSON(ex.Records, out); err != nil {
			return err
		}
	} else {
		scrape.FormatTable(ex.Records, out)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "%d result blocks, %d skipped without title\n", ex.Blocks, ex.Skipped)
	return nil
}
