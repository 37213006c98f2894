package handler

import (
	"net/http"

	"github.com/makna-id/makna-api/spec"
)

// docsPage embeds the Scalar API reference UI, pointed at the served spec.
const docsPage = `<!doctype html>
<html>
<head>
  <title>MAKNA API Reference</title>
  <meta charset="utf-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
</head>
<body>
  <script id="api-reference" data-url="/openapi.yaml"></script>
  <script src="https://cdn.jsdelivr.net/npm/@scalar/api-reference"></script>
</body>
</html>`

// handleOpenAPI implements GET /openapi.yaml.
// Serving the embedded spec from the binary keeps the document and the
// running code in sync.
func (s *Server) handleOpenAPI(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(spec.OpenAPI)
}

// handleDocs implements GET /docs.
func (s *Server) handleDocs(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(docsPage))
}
