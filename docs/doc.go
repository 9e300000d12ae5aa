// Package docs provides generated OpenAPI documentation.
//
// Studydeck API
//
//	@title			Studydeck API
//	@version		1.0
//	@description	Document ingestion and LLM-powered study aid generation API.
//	@termsOfService	http://swagger.io/terms/
//
//	@contact.name	API Support
//	@contact.url	https://github.com/studydeck/studydeck
//
//	@license.name	MIT
//	@license.url	https://opensource.org/licenses/MIT
//
//	@host		localhost:8585
//	@BasePath	/
//
//	@schemes	http https
package docs

//go:generate swag init -g ../cmd/studydeck/serve.go -o ./swagger --parseDependency --parseInternal
