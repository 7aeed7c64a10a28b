package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterSwagger registers minimal Swagger/OpenAPI endpoints for the admin service.
// - GET /swagger/index.html  -> a small HTML page that loads the OpenAPI JSON
// - GET /swagger/doc.json    -> machine-readable OpenAPI JSON
func RegisterSwagger(rg *gin.Engine) {
	rg.GET("/swagger/index.html", func(c *gin.Context) {
		c.Header("Content-Type", "text/html; charset=utf-8")
		c.String(http.StatusOK, swaggerHTML)
	})

	rg.GET("/swagger/doc.json", func(c *gin.Context) {
		c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(swaggerJSON))
	})
}

const swaggerHTML = `<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>admin-service Swagger</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@4/swagger-ui.css" />
  </head>
  <body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@4/swagger-ui-bundle.js"></script>
    <script>
      window.ui = SwaggerUIBundle({
        url: '/swagger/doc.json',
        dom_id: '#swagger-ui',
      })
    </script>
  </body>
</html>`

// OpenAPI document for the sign-in flow and the JSON API.
const swaggerJSON = `{
  "openapi": "3.0.0",
  "info": { "title": "admin-service", "version": "v0.1.0" },
  "paths": {
    "/admin/sign/in": {
      "get": { "summary": "Sign-in entry with pending flash message", "parameters": [{"name":"flash","in":"query","schema":{"type":"string"}}], "responses": { "200": { "description": "sign-in options" } } },
      "post": {
        "summary": "Sign in with username and password",
        "requestBody": { "content": { "application/x-www-form-urlencoded": { "schema": {"type":"object","properties":{"username":{"type":"string"},"password":{"type":"string"},"backlink":{"type":"string"}}}}}},
        "responses": { "302": { "description": "dashboard for admins, front page otherwise, or sign-in with flash" } }
      }
    },
    "/admin/sign/up": {
      "post": {
        "summary": "Register a local account",
        "requestBody": { "content": { "application/x-www-form-urlencoded": { "schema": {"type":"object","properties":{"username":{"type":"string"},"email":{"type":"string"},"password":{"type":"string","minLength":7}}}}}},
        "responses": { "302": { "description": "signed in, or sign-in with flash" } }
      }
    },
    "/admin/sign/out": { "get": { "summary": "Sign out", "responses": { "302": { "description": "front page" } } } },
    "/admin/sign/google/start": { "get": { "summary": "Start Google sign-in", "responses": { "302": { "description": "provider consent page" } } } },
    "/admin/sign/google": {
      "get": {
        "summary": "Google callback",
        "parameters": [{"name":"state","in":"query","schema":{"type":"string"}},{"name":"code","in":"query","schema":{"type":"string"}},{"name":"error","in":"query","schema":{"type":"string"}}],
        "responses": { "302": { "description": "signed in, or sign-in with flash" } }
      }
    },
    "/admin/dashboard": { "get": { "summary": "Admin dashboard", "responses": { "200": { "description": "products" }, "401": { "description": "not signed in" }, "403": { "description": "not an admin" } } } },
    "/api/v1/me": { "get": { "summary": "Current identity", "responses": { "200": { "description": "claims" }, "401": { "description": "not signed in" } } } },
    "/api/v1/products": { "get": { "summary": "Product catalogue", "responses": { "200": { "description": "products" } } } },
    "/health": { "get": { "summary": "Liveness check", "responses": { "200": { "description": "healthy" } } } },
    "/ready": { "get": { "summary": "Readiness check", "responses": { "200": { "description": "ready" }, "503": { "description": "not ready" } } } }
  }
}`
