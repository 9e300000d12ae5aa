package endpoints

import (
	"fmt"
	"io"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/studydeck/studydeck/internal/api"
	"github.com/studydeck/studydeck/internal/ingest"
	"github.com/studydeck/studydeck/internal/svcctx"
)

// UploadDocumentEndpoint handles POST /api/documents with a multipart
// file upload.
type UploadDocumentEndpoint struct{}

var _ api.Endpoint = (*UploadDocumentEndpoint)(nil)

func (e *UploadDocumentEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/documents", e.handler
}

func (e *UploadDocumentEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Upload a document
//	@Description	Upload a PDF or Markdown file to ingest into the library
//	@Tags			documents
//	@Accept			mpfd
//	@Produce		json
//	@Param			file	formData	file	true	"PDF or Markdown file"
//	@Param			title	formData	string	false	"Document title (derived from filename if not provided)"
//	@Success		201		{object}	ingest.Document
//	@Failure		400		{object}	ErrorResponse
//	@Failure		500		{object}	ErrorResponse
//	@Failure		503		{object}	ErrorResponse
//	@Router			/api/documents [post]
func (e *UploadDocumentEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(ingest.MaxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("failed to parse form: %v", err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "no file uploaded")
		return
	}
	defer file.Close()

	if _, err := ingest.DetectFormat(header.Filename); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, ingest.MaxUploadBytes+1))
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to read upload: %v", err))
		return
	}
	if len(data) > ingest.MaxUploadBytes {
		writeError(w, http.StatusBadRequest, "file exceeds upload size limit")
		return
	}

	library := svcctx.LibraryFrom(r.Context())
	homeDir := svcctx.HomeFrom(r.Context())
	if library == nil || homeDir == nil {
		writeError(w, http.StatusServiceUnavailable, "document library not initialized")
		return
	}

	doc, err := ingest.Ingest(library, homeDir, ingest.Request{
		Filename: header.Filename,
		Data:     data,
		Title:    r.FormValue("title"),
		Logger:   svcctx.LoggerFrom(r.Context()),
	})
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("ingest failed: %v", err))
		return
	}

	writeJSON(w, http.StatusCreated, doc)
}

func (e *UploadDocumentEndpoint) Command(getServerURL func() string) *cobra.Command {
	var title string
	cmd := &cobra.Command{
		Use:   "upload <file>",
		Short: "Upload a PDF or Markdown document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			fields := map[string]string{}
			if title != "" {
				fields["title"] = title
			}
			var doc ingest.Document
			if err := client.PostFile(cmd.Context(), "/api/documents", args[0], fields, &doc); err != nil {
				return err
			}
			return api.Output(doc)
		},
	}
	cmd.Flags().StringVarP(&title, "title", "t", "", "Document title")
	return cmd
}
