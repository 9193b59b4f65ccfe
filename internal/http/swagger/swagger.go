// Package swagger serves the API contract and a Swagger UI page rendering it.
package swagger

import (
	"fmt"
	"html"
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-chi/chi/v5"

	apicontract "github.com/tuanvumaihuynh/crm/api-contract"
)

const (
	DocsPath     = "/docs"
	SpecPath     = "/docs/openapi.yml"
	SpecJSONPath = "/docs/openapi.json"

	swaggerUIVersion = "5.29.3"
)

// Paths lists every route registered by Register.
var Paths = []string{DocsPath, SpecPath, SpecJSONPath}

// Register mounts the docs page and both renditions of doc on r.
func Register(r chi.Router, doc *openapi3.T) error {
	specJSON, err := doc.MarshalJSON()
	if err != nil {
		return fmt.Errorf("marshal openapi spec: %w", err)
	}

	title := "API docs"
	if doc.Info != nil && doc.Info.Title != "" {
		title = doc.Info.Title
	}
	page := []byte(renderPage(title, SpecPath))

	r.Get(DocsPath, serveBytes("text/html; charset=utf-8", page))
	r.Get(SpecPath, serveBytes("application/yaml", apicontract.GetSpecBytes()))
	r.Get(SpecJSONPath, serveBytes("application/json", specJSON))

	return nil
}

func serveBytes(contentType string, body []byte) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", contentType)
		w.Header().Set("Cache-Control", "no-cache")
		w.WriteHeader(http.StatusOK)
		//nolint:errcheck
		w.Write(body)
	}
}

func renderPage(title, specURL string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <title>%[1]s</title>
  <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@%[2]s/swagger-ui.css" />
</head>
<body>
<div id="swagger-ui"></div>
<script src="https://unpkg.com/swagger-ui-dist@%[2]s/swagger-ui-bundle.js" crossorigin></script>
<script>
  window.onload = () => {
    window.ui = SwaggerUIBundle({
      url: '%[3]s',
      dom_id: '#swagger-ui',
      deepLinking: true,
      displayRequestDuration: true,
      tryItOutEnabled: true,
    });
  };
</script>
</body>
</html>
`, html.EscapeString(title), swaggerUIVersion, specURL)
}
