package endpoints

import (
	"colacheck/internal/api"
)

// All returns all endpoint instances.
func All() []api.Endpoint {
	return []api.Endpoint{
		// Health endpoints
		&HealthEndpoint{},
		&ReadyEndpoint{},
		&StatusEndpoint{},

		// Document endpoints
		&UploadDocumentsEndpoint{},
		&ListDocumentsEndpoint{},
		&GetDocumentEndpoint{},
		&RetryDocumentEndpoint{},
		&ReclassifyDocumentEndpoint{},

		// Result endpoints
		&ResultsEndpoint{},
		&ExportResultsEndpoint{},
	}
}
