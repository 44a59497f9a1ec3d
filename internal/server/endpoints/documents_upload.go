package endpoints

import (
	"fmt"
	"io"
	"net/http"

	"github.com/spf13/cobra"

	"colacheck/internal/api"
	"colacheck/internal/dispatch"
	"colacheck/internal/ingest"
	"colacheck/internal/svcctx"
)

// UploadResponse is the response for a document upload.
type UploadResponse struct {
	Accepted []UploadedDocument `json:"accepted"`
	Rejected []RejectedDocument `json:"rejected,omitempty"`
}

// UploadedDocument identifies one accepted document.
type UploadedDocument struct {
	ID       string `json:"id"`
	FileName string `json:"file_name"`
	Status   string `json:"status"`
}

// RejectedDocument explains why a file was not accepted.
type RejectedDocument struct {
	FileName string `json:"file_name"`
	Reason   string `json:"reason"`
}

// UploadDocumentsEndpoint handles POST /api/documents with multipart file upload.
type UploadDocumentsEndpoint struct{}

var _ api.Endpoint = (*UploadDocumentsEndpoint)(nil)

func (e *UploadDocumentsEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/documents", e.handler
}

func (e *UploadDocumentsEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Upload documents
//	@Description	Upload label images and application PDFs for extraction
//	@Tags			documents
//	@Accept			mpfd
//	@Produce		json
//	@Param			documents	formData	file	true	"Label images or application PDFs"
//	@Success		202	{object}	UploadResponse
//	@Failure		400	{object}	ErrorResponse
//	@Failure		503	{object}	ErrorResponse
//	@Router			/api/documents [post]
func (e *UploadDocumentsEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	const maxMemory = 100 << 20 // 100MB
	if err := r.ParseMultipartForm(maxMemory); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("failed to parse form: %v", err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	files := r.MultipartForm.File["documents"]
	if len(files) == 0 {
		writeError(w, http.StatusBadRequest, "no files uploaded")
		return
	}

	dispatcher := svcctx.DispatcherFrom(r.Context())
	if dispatcher == nil {
		writeError(w, http.StatusServiceUnavailable, "dispatcher not initialized")
		return
	}
	homeDir := svcctx.HomeFrom(r.Context())
	logger := svcctx.LoggerFrom(r.Context())

	var resp UploadResponse
	for _, fh := range files {
		src, err := fh.Open()
		if err != nil {
			resp.Rejected = append(resp.Rejected, RejectedDocument{FileName: fh.Filename, Reason: err.Error()})
			continue
		}
		payload, err := io.ReadAll(src)
		src.Close()
		if err != nil {
			resp.Rejected = append(resp.Rejected, RejectedDocument{FileName: fh.Filename, Reason: err.Error()})
			continue
		}

		rec, err := ingest.File(fh.Filename, payload)
		if err != nil {
			resp.Rejected = append(resp.Rejected, RejectedDocument{FileName: fh.Filename, Reason: err.Error()})
			continue
		}

		// Keep a copy on disk so batches survive a restart.
		if homeDir != nil {
			if path, err := homeDir.SaveDocument(rec.ID, rec.FileName, payload); err == nil {
				rec.Path = path
			} else if logger != nil {
				logger.Warn("failed to save document copy", "file", rec.FileName, "error", err)
			}
		}

		if err := dispatcher.Submit(rec); err != nil {
			if err == dispatch.ErrQueueFull {
				resp.Rejected = append(resp.Rejected, RejectedDocument{FileName: fh.Filename, Reason: "queue full, try again later"})
				continue
			}
			resp.Rejected = append(resp.Rejected, RejectedDocument{FileName: fh.Filename, Reason: err.Error()})
			continue
		}

		resp.Accepted = append(resp.Accepted, UploadedDocument{
			ID:       rec.ID,
			FileName: rec.FileName,
			Status:   string(rec.Status),
		})
	}

	if len(resp.Accepted) == 0 {
		writeJSON(w, http.StatusBadRequest, resp)
		return
	}
	writeJSON(w, http.StatusAccepted, resp)
}

func (e *UploadDocumentsEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "upload <file> [file...]",
		Short: "Upload documents for extraction",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp UploadResponse
			if err := client.PostFiles(cmd.Context(), "/api/documents", args, &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}
