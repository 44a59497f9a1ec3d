package main

import (
	"github.com/spf13/cobra"

	"colacheck/internal/server/endpoints"
)

var serverURL string

var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Commands that call the running server",
	Long: `API commands call the running colacheck server via HTTP.

These commands require a running server (colacheck serve).
Use --server to specify a custom server URL.

Examples:
  colacheck api health                    # Check server health
  colacheck api documents list            # List uploaded documents
  colacheck api documents upload a.png    # Upload documents
  colacheck api results show              # Show verification results`,
}

var documentsCmd = &cobra.Command{
	Use:   "documents",
	Short: "Document management commands",
}

var resultsCmd = &cobra.Command{
	Use:   "results",
	Short: "Verification result commands",
}

// getServerURL returns the server URL at runtime (after flag parsing).
func getServerURL() string {
	return serverURL
}

func init() {
	// Add --server flag to api command (persistent so all subcommands inherit it)
	apiCmd.PersistentFlags().StringVar(
		&serverURL, "server", "http://localhost:8273", "Server URL",
	)

	// Health endpoints at top level of api
	apiCmd.AddCommand((&endpoints.HealthEndpoint{}).Command(getServerURL))
	apiCmd.AddCommand((&endpoints.ReadyEndpoint{}).Command(getServerURL))
	apiCmd.AddCommand((&endpoints.StatusEndpoint{}).Command(getServerURL))

	// Documents as subcommand group
	documentsCmd.AddCommand((&endpoints.UploadDocumentsEndpoint{}).Command(getServerURL))
	documentsCmd.AddCommand((&endpoints.ListDocumentsEndpoint{}).Command(getServerURL))
	documentsCmd.AddCommand((&endpoints.GetDocumentEndpoint{}).Command(getServerURL))
	documentsCmd.AddCommand((&endpoints.RetryDocumentEndpoint{}).Command(getServerURL))
	documentsCmd.AddCommand((&endpoints.ReclassifyDocumentEndpoint{}).Command(getServerURL))

	// Results as subcommand group
	showCmd := (&endpoints.ResultsEndpoint{}).Command(getServerURL)
	showCmd.Use = "show"
	resultsCmd.AddCommand(showCmd)
	resultsCmd.AddCommand((&endpoints.ExportResultsEndpoint{}).Command(getServerURL))

	apiCmd.AddCommand(documentsCmd)
	apiCmd.AddCommand(resultsCmd)
	rootCmd.AddCommand(apiCmd)
}
