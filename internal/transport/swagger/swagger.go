package swagger

import (
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"
)

// SpecURL is where the router serves the embedded OpenAPI document.
const SpecURL = "/openapi.yml"

// Handler serves the Swagger UI pointed at the assistant's API contract.
func Handler() http.Handler {
	return httpSwagger.Handler(
		httpSwagger.URL(SpecURL),
		httpSwagger.DocExpansion("list"),
	)
}
