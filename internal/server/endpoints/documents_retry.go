package endpoints

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/spf13/cobra"

	"colacheck/internal/api"
	"colacheck/internal/records"
	"colacheck/internal/svcctx"
)

// RetryResponse is the response for a retry request.
type RetryResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// RetryDocumentEndpoint handles POST /api/documents/{id}/retry.
// Only failed documents can be retried; extraction is never retried
// automatically.
type RetryDocumentEndpoint struct{}

var _ api.Endpoint = (*RetryDocumentEndpoint)(nil)

func (e *RetryDocumentEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/documents/{id}/retry", e.handler
}

func (e *RetryDocumentEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Retry a failed document
//	@Description	Re-submit a failed document for extraction
//	@Tags			documents
//	@Produce		json
//	@Param			id	path	string	true	"Document ID"
//	@Success		202	{object}	RetryResponse
//	@Failure		404	{object}	ErrorResponse
//	@Failure		409	{object}	ErrorResponse
//	@Failure		503	{object}	ErrorResponse
//	@Router			/api/documents/{id}/retry [post]
func (e *RetryDocumentEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	dispatcher := svcctx.DispatcherFrom(r.Context())
	if dispatcher == nil {
		writeError(w, http.StatusServiceUnavailable, "dispatcher not initialized")
		return
	}

	id := r.PathValue("id")
	if err := dispatcher.Retry(id); err != nil {
		switch {
		case errors.Is(err, records.ErrNotFound):
			writeError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, records.ErrInvalidTransition):
			writeError(w, http.StatusConflict, "only failed documents can be retried")
		default:
			writeError(w, http.StatusServiceUnavailable, err.Error())
		}
		return
	}

	writeJSON(w, http.StatusAccepted, RetryResponse{ID: id, Status: string(records.StatusPending)})
}

func (e *RetryDocumentEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "retry <id>",
		Short: "Retry a failed document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp RetryResponse
			if err := client.Post(cmd.Context(), "/api/documents/"+args[0]+"/retry", nil, &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}

// ReclassifyRequest is the body for a manual classification override.
type ReclassifyRequest struct {
	Classification string `json:"classification"`
}

// ReclassifyDocumentEndpoint handles POST /api/documents/{id}/classification.
// It lets an operator correct a misclassified document after extraction.
type ReclassifyDocumentEndpoint struct{}

var _ api.Endpoint = (*ReclassifyDocumentEndpoint)(nil)

func (e *ReclassifyDocumentEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/documents/{id}/classification", e.handler
}

func (e *ReclassifyDocumentEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Override document classification
//	@Description	Manually set the classification of an extracted document
//	@Tags			documents
//	@Accept			json
//	@Produce		json
//	@Param			id		path	string				true	"Document ID"
//	@Param			body	body	ReclassifyRequest	true	"New classification"
//	@Success		200	{object}	records.DocumentRecord
//	@Failure		400	{object}	ErrorResponse
//	@Failure		404	{object}	ErrorResponse
//	@Failure		409	{object}	ErrorResponse
//	@Failure		503	{object}	ErrorResponse
//	@Router			/api/documents/{id}/classification [post]
func (e *ReclassifyDocumentEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	store := svcctx.StoreFrom(r.Context())
	if store == nil {
		writeError(w, http.StatusServiceUnavailable, "record store not initialized")
		return
	}

	var req ReclassifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	classification := records.Classification(req.Classification)
	switch classification {
	case records.ClassificationLabel, records.ClassificationApplication, records.ClassificationUnrecognized:
	default:
		writeError(w, http.StatusBadRequest, "classification must be label, application, or unrecognized")
		return
	}

	id := r.PathValue("id")
	if err := store.Reclassify(id, classification); err != nil {
		switch {
		case errors.Is(err, records.ErrNotFound):
			writeError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, records.ErrInvalidTransition):
			writeError(w, http.StatusConflict, "only extracted documents can be reclassified")
		default:
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	rec, err := store.Get(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (e *ReclassifyDocumentEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "reclassify <id> <label|application|unrecognized>",
		Short: "Override a document's classification",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp records.DocumentRecord
			body := ReclassifyRequest{Classification: args[1]}
			if err := client.Post(cmd.Context(), "/api/documents/"+args[0]+"/classification", body, &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}
