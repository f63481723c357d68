// Command graphquery is a developer client for the graph API: it opens
// sessions, runs path queries and calls, and tails lifecycle events.
package main

import (
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var baseURL string

func main() {
	root := &cobra.Command{
		Use:           "graphquery",
		Short:         "Query and mutate the pivot graph over HTTP",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&baseURL, "base-url", "http://localhost:3000/api", "API base URL")

	root.AddCommand(openCmd(), getCmd(), callCmd(), demoCmd(), watchCmd())

	if err := root.Execute(); err != nil {
		color.Red("Error: %v", err)
		os.Exit(1)
	}
}
