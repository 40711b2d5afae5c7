// Package api embeds the HTTP contract served at /openapi.yml and used to
// validate incoming requests.
package api

import _ "embed"

//go:embed openapi.yml
var OpenAPI []byte
