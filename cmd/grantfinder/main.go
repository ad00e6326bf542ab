// grantfinder crawls the web for grant opportunities relevant to
// technology-for-good nonprofit work.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/opportunity-hack/grantfinder/cmd/crawl"
)

var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:   "grantfinder",
		Short: "A grant opportunity crawler for tech-for-good nonprofits",
		Long: `grantfinder discovers grant funding opportunities by crawling funder
websites, search results, and RSS feeds, scoring each page for relevance to
technology-for-good nonprofit work.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(*cobra.Command, []string) {
			fmt.Printf("grantfinder version %s\n", version)
		},
	})

	rootCmd.AddCommand(crawl.Command())

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
