// Package docs provides generated OpenAPI documentation.
//
// Survaize API
//
//	@title			Survaize API
//	@version		1.0
//	@description	Questionnaire interpretation API: upload scanned questionnaires and stream interpretation progress.
//
//	@contact.name	API Support
//	@contact.url	https://github.com/survaize/survaize
//
//	@license.name	MIT
//	@license.url	https://opensource.org/licenses/MIT
//
//	@host		localhost:8000
//	@BasePath	/
//
//	@schemes	http
package docs

//go:generate swag init -g ../cmd/survaize/serve.go -o ./swagger --parseDependency --parseInternal
