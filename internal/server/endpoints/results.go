package endpoints

import (
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"colacheck/internal/api"
	"colacheck/internal/pipeline"
	"colacheck/internal/report"
	"colacheck/internal/svcctx"
)

// ResultsResponse is the response for verification results.
type ResultsResponse struct {
	Pairs    []pipeline.MatchedPair `json:"pairs"`
	Summary  pipeline.Summary       `json:"summary"`
	Resolved bool                   `json:"resolved"`
}

// ResultsEndpoint handles GET /api/results.
// Results are computed from the current store state; pending or in-flight
// documents are simply not part of the run yet.
type ResultsEndpoint struct{}

var _ api.Endpoint = (*ResultsEndpoint)(nil)

func (e *ResultsEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/results", e.handler
}

func (e *ResultsEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Verification results
//	@Description	Match extracted labels against applications and verify each pair
//	@Tags			results
//	@Produce		json
//	@Success		200	{object}	ResultsResponse
//	@Failure		503	{object}	ErrorResponse
//	@Router			/api/results [get]
func (e *ResultsEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	store := svcctx.StoreFrom(r.Context())
	if store == nil {
		writeError(w, http.StatusServiceUnavailable, "record store not initialized")
		return
	}
	logger := svcctx.LoggerFrom(r.Context())

	pairs := pipeline.Run(store.Snapshot(), logger)
	writeJSON(w, http.StatusOK, ResultsResponse{
		Pairs:    pairs,
		Summary:  pipeline.Summarize(pairs),
		Resolved: store.Resolved(),
	})
}

func (e *ResultsEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "results",
		Short: "Show verification results",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp ResultsResponse
			if err := client.Get(cmd.Context(), "/api/results", &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}

// ExportResultsEndpoint handles GET /api/results/export.
type ExportResultsEndpoint struct{}

var _ api.Endpoint = (*ExportResultsEndpoint)(nil)

func (e *ExportResultsEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/results/export", e.handler
}

func (e *ExportResultsEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Export results as CSV
//	@Description	Download verification results as a CSV file
//	@Tags			results
//	@Produce		text/csv
//	@Success		200	{string}	string	"CSV content"
//	@Failure		503	{object}	ErrorResponse
//	@Router			/api/results/export [get]
func (e *ExportResultsEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	store := svcctx.StoreFrom(r.Context())
	if store == nil {
		writeError(w, http.StatusServiceUnavailable, "record store not initialized")
		return
	}
	logger := svcctx.LoggerFrom(r.Context())

	pairs := pipeline.Run(store.Snapshot(), logger)

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="verification-results.csv"`)
	if err := report.WriteCSV(w, pairs); err != nil && logger != nil {
		logger.Error("failed to write csv export", "error", err)
	}
}

func (e *ExportResultsEndpoint) Command(getServerURL func() string) *cobra.Command {
	var outPath string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export verification results as CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())

			out := cmd.OutOrStdout()
			if outPath != "" {
				f, err := os.Create(outPath)
				if err != nil {
					return err
				}
				defer f.Close()
				out = f
			}
			return client.GetRaw(cmd.Context(), "/api/results/export", out)
		},
	}
	cmd.Flags().StringVarP(&outPath, "output", "o", "", "write CSV to file instead of stdout")
	return cmd
}
