package endpoints

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/studydeck/studydeck/internal/api"
	"github.com/studydeck/studydeck/internal/config"
	"github.com/studydeck/studydeck/internal/studyset"
	"github.com/studydeck/studydeck/internal/svcctx"
)

// GenerateRequest is the body for generation endpoints.
type GenerateRequest struct {
	DocumentID string `json:"document_id"`
	Count      int    `json:"count,omitempty"`    // Flashcard/question count, 0 for default
	Provider   string `json:"provider,omitempty"` // Override the default LLM provider
	Model      string `json:"model,omitempty"`    // Override the provider's default model
}

// GenerateEndpoint handles POST /api/generate/{kind}. One instance is
// registered per study set kind. Generation requests are metered by the
// quota middleware.
type GenerateEndpoint struct {
	Kind studyset.Kind

	// Quota wraps the handler with per-user budget enforcement.
	Quota func(http.HandlerFunc) http.HandlerFunc
}

var _ api.Endpoint = (*GenerateEndpoint)(nil)

func (e *GenerateEndpoint) Route() (string, string, http.HandlerFunc) {
	handler := e.handler
	if e.Quota != nil {
		handler = e.Quota(handler)
	}
	return "POST", "/api/generate/" + string(e.Kind), handler
}

func (e *GenerateEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Generate study aids
//	@Description	Generate a summary, flashcard deck, or quiz from an ingested document
//	@Tags			generate
//	@Accept			json
//	@Produce		json
//	@Param			request	body		GenerateRequest	true	"Generation parameters"
//	@Success		201		{object}	studyset.StudySet
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Failure		429		{object}	ErrorResponse
//	@Failure		502		{object}	ErrorResponse
//	@Router			/api/generate/{kind} [post]
func (e *GenerateEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	var req GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}
	if req.DocumentID == "" {
		writeError(w, http.StatusBadRequest, "document_id is required")
		return
	}

	library := svcctx.LibraryFrom(r.Context())
	registry := svcctx.RegistryFrom(r.Context())
	setStore := svcctx.StudySetStoreFrom(r.Context())
	if library == nil || registry == nil || setStore == nil {
		writeError(w, http.StatusServiceUnavailable, "server not fully initialized")
		return
	}

	doc, err := library.Get(req.DocumentID)
	if err != nil {
		writeError(w, http.StatusNotFound, "document not found")
		return
	}
	text, err := library.Text(req.DocumentID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to read document text: %v", err))
		return
	}

	cfg := config.DefaultConfig()
	if cm := svcctx.ConfigManagerFrom(r.Context()); cm != nil {
		cfg = cm.Get()
	}

	providerName := req.Provider
	if providerName == "" {
		providerName = cfg.Defaults.LLMProvider
	}
	client, err := registry.GetLLM(providerName)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown LLM provider %q", providerName))
		return
	}

	model := req.Model
	if model == "" {
		if pc, ok := cfg.GetLLMProvider(providerName); ok {
			model = pc.Model
		}
	}

	count := req.Count
	if count <= 0 {
		switch e.Kind {
		case studyset.KindFlashcards:
			count = cfg.Defaults.FlashcardCount
		case studyset.KindQuiz:
			count = cfg.Defaults.QuizCount
		}
	}

	gen := studyset.NewGenerator(client, model, svcctx.LoggerFrom(r.Context()))
	genReq := studyset.Request{
		DocumentID: doc.ID,
		Title:      doc.Title,
		Text:       text,
		Count:      count,
	}

	var set *studyset.StudySet
	switch e.Kind {
	case studyset.KindSummary:
		set, err = gen.Summary(r.Context(), genReq)
	case studyset.KindFlashcards:
		set, err = gen.Flashcards(r.Context(), genReq)
	case studyset.KindQuiz:
		set, err = gen.Quiz(r.Context(), genReq)
	default:
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown study set kind %q", e.Kind))
		return
	}
	if err != nil {
		if errors.Is(err, studyset.ErrModelOutput) {
			writeError(w, http.StatusBadGateway, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("generation failed: %v", err))
		return
	}

	if err := setStore.Save(set); err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to save study set: %v", err))
		return
	}

	writeJSON(w, http.StatusCreated, set)
}

func (e *GenerateEndpoint) Command(getServerURL func() string) *cobra.Command {
	var count int
	var provider, model string
	cmd := &cobra.Command{
		Use:   fmt.Sprintf("%s <document-id>", e.Kind),
		Short: fmt.Sprintf("Generate a %s from a document", e.Kind),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			req := GenerateRequest{
				DocumentID: args[0],
				Count:      count,
				Provider:   provider,
				Model:      model,
			}
			var set studyset.StudySet
			if err := client.Post(cmd.Context(), "/api/generate/"+string(e.Kind), req, &set); err != nil {
				return err
			}
			return api.Output(set)
		},
	}
	cmd.Flags().IntVarP(&count, "count", "n", 0, "Number of flashcards/questions (server default if 0)")
	cmd.Flags().StringVar(&provider, "provider", "", "LLM provider to use")
	cmd.Flags().StringVar(&model, "model", "", "Model to use")
	return cmd
}
