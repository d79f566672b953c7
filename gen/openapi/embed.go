// Package openapi содержит сгенерированное OpenAPI-описание API планировщика.
package openapi

import "embed"

//go:embed api.swagger.json
var content embed.FS

// GetSpec возвращает OpenAPI-документ, который отдаёт Swagger UI.
func GetSpec() ([]byte, error) {
	return content.ReadFile("api.swagger.json")
}
