package endpoints

import (
	"net/http"

	"github.com/studydeck/studydeck/internal/api"
	"github.com/studydeck/studydeck/internal/studyset"
)

// Config holds dependencies needed by some endpoints.
type Config struct {
	// QuotaMiddleware wraps generation handlers with budget enforcement.
	QuotaMiddleware func(http.HandlerFunc) http.HandlerFunc
	// QuotaBackend and QuotaLimit are reported by the status endpoint.
	QuotaBackend string
	QuotaLimit   int
	// SwaggerSpecPath is the path to the generated swagger.json.
	SwaggerSpecPath string
}

// All returns all endpoint instances.
func All(cfg Config) []api.Endpoint {
	return []api.Endpoint{
		// Health endpoints
		&HealthEndpoint{},
		&StatusEndpoint{QuotaBackend: cfg.QuotaBackend, QuotaLimit: cfg.QuotaLimit},

		// Document endpoints
		&UploadDocumentEndpoint{},
		&ListDocumentsEndpoint{},
		&GetDocumentEndpoint{},
		&DeleteDocumentEndpoint{},

		// Generation endpoints, one per study set kind
		&GenerateEndpoint{Kind: studyset.KindSummary, Quota: cfg.QuotaMiddleware},
		&GenerateEndpoint{Kind: studyset.KindFlashcards, Quota: cfg.QuotaMiddleware},
		&GenerateEndpoint{Kind: studyset.KindQuiz, Quota: cfg.QuotaMiddleware},

		// Study set endpoints
		&ListStudySetsEndpoint{},
		&GetStudySetEndpoint{},
		&DeleteStudySetEndpoint{},

		// Quota endpoint
		&QuotaEndpoint{},

		// Swagger/OpenAPI endpoint
		&SwaggerEndpoint{SpecPath: cfg.SwaggerSpecPath},
	}
}
