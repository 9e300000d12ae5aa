package endpoints

import (
	"net/http"

	"github.com/spf13/cobra"

	"github.com/studydeck/studydeck/internal/api"
	"github.com/studydeck/studydeck/internal/studyset"
	"github.com/studydeck/studydeck/internal/svcctx"
)

// StudySetListResponse is the response for study set listing.
type StudySetListResponse struct {
	StudySets []*studyset.StudySet `json:"study_sets"`
	Count     int                  `json:"count"`
}

// ListStudySetsEndpoint handles GET /api/studysets. An optional
// document_id query parameter filters to one document.
type ListStudySetsEndpoint struct{}

var _ api.Endpoint = (*ListStudySetsEndpoint)(nil)

func (e *ListStudySetsEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/studysets", e.handler
}

func (e *ListStudySetsEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		List study sets
//	@Description	List generated study sets, newest first, optionally filtered by document
//	@Tags			studysets
//	@Produce		json
//	@Param			document_id	query		string	false	"Filter by document ID"
//	@Success		200			{object}	StudySetListResponse
//	@Failure		500			{object}	ErrorResponse
//	@Router			/api/studysets [get]
func (e *ListStudySetsEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	store := svcctx.StudySetStoreFrom(r.Context())
	if store == nil {
		writeError(w, http.StatusServiceUnavailable, "study set store not initialized")
		return
	}

	sets, err := store.List(r.URL.Query().Get("document_id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, StudySetListResponse{StudySets: sets, Count: len(sets)})
}

func (e *ListStudySetsEndpoint) Command(getServerURL func() string) *cobra.Command {
	var docID string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List generated study sets",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			path := "/api/studysets"
			if docID != "" {
				path += "?document_id=" + docID
			}
			var resp StudySetListResponse
			if err := client.Get(cmd.Context(), path, &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
	cmd.Flags().StringVarP(&docID, "document", "d", "", "Filter by document ID")
	return cmd
}

// GetStudySetEndpoint handles GET /api/studysets/{id}.
type GetStudySetEndpoint struct{}

var _ api.Endpoint = (*GetStudySetEndpoint)(nil)

func (e *GetStudySetEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/studysets/{id}", e.handler
}

func (e *GetStudySetEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Get study set by ID
//	@Description	Get a generated summary, flashcard deck, or quiz
//	@Tags			studysets
//	@Produce		json
//	@Param			id	path		string	true	"Study set ID"
//	@Success		200	{object}	studyset.StudySet
//	@Failure		400	{object}	ErrorResponse
//	@Failure		404	{object}	ErrorResponse
//	@Router			/api/studysets/{id} [get]
func (e *GetStudySetEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "study set id is required")
		return
	}

	store := svcctx.StudySetStoreFrom(r.Context())
	if store == nil {
		writeError(w, http.StatusServiceUnavailable, "study set store not initialized")
		return
	}

	set, err := store.Get(id)
	if err != nil {
		writeError(w, http.StatusNotFound, "study set not found")
		return
	}

	writeJSON(w, http.StatusOK, set)
}

func (e *GetStudySetEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Get a study set by ID",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var set studyset.StudySet
			if err := client.Get(cmd.Context(), "/api/studysets/"+args[0], &set); err != nil {
				return err
			}
			return api.Output(set)
		},
	}
}

// DeleteStudySetEndpoint handles DELETE /api/studysets/{id}.
type DeleteStudySetEndpoint struct{}

var _ api.Endpoint = (*DeleteStudySetEndpoint)(nil)

func (e *DeleteStudySetEndpoint) Route() (string, string, http.HandlerFunc) {
	return "DELETE", "/api/studysets/{id}", e.handler
}

func (e *DeleteStudySetEndpoint) RequiresInit() bool { return true }

func (e *DeleteStudySetEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "study set id is required")
		return
	}

	store := svcctx.StudySetStoreFrom(r.Context())
	if store == nil {
		writeError(w, http.StatusServiceUnavailable, "study set store not initialized")
		return
	}

	if err := store.Delete(id); err != nil {
		writeError(w, http.StatusNotFound, "study set not found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted", "id": id})
}

func (e *DeleteStudySetEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a study set",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			if err := client.Delete(cmd.Context(), "/api/studysets/"+args[0]); err != nil {
				return err
			}
			api.Noticef(cmd.OutOrStdout(), "deleted %s\n", args[0])
			return nil
		},
	}
}
