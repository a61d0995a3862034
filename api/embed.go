package api

import _ "embed"

// OpenAPISpec is the OpenAPI document served at /swagger/openapi.json.
//
//go:embed openapi.json
var OpenAPISpec []byte
