package cmd

import (
	"fmt"
	"os"

	"github.com/mfenderov/newstrack/internal/document"
	"github.com/spf13/cobra"
)

var renderFile string

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Print the document's news section",
	Long: `Parse the persisted news log out of the document's marker-bounded
section and print its canonical rendering to stdout. Useful as a round-trip
check and for feeding the section to another display.`,
	RunE: runRender,
}

func init() {
	rootCmd.AddCommand(renderCmd)

	renderCmd.Flags().StringVar(&renderFile, "file", "", "document to read (overrides config)")
}

func runRender(cmd *cobra.Command, args []string) error {
	path := GetConfig().Document
	if renderFile != "" {
		path = renderFile
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read document %s: %w", path, err)
	}

	log, err := document.ParseRegion(string(raw))
	if err != nil {
		return fmt.Errorf("document %s: %w", path, err)
	}

	if len(log) == 0 {
		fmt.Fprintln(os.Stderr, "news section is empty")
		return nil
	}

	fmt.Println(document.RenderEntries(log))
	return nil
}
