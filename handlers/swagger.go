package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterSwagger registers minimal Swagger/OpenAPI endpoints.
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
    <title>hackathon-backend — Swagger</title>
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

// Minimal OpenAPI document covering the portal endpoints.
const swaggerJSON = `{
  "openapi": "3.0.0",
  "info": { "title": "hackathon-backend", "version": "v0.1.0" },
  "paths": {
    "/api/auth/login": {
      "post": { "summary": "Exchange a Google ID token for portal tokens", "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"idToken":{"type":"string"}}}}}}, "responses": { "200": { "description": "access and refresh tokens" }, "401": { "description": "invalid ID token" } } }
    },
    "/api/auth/refresh": {
      "post": { "summary": "Refresh the access token", "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"refreshToken":{"type":"string"}}}}}}, "responses": { "200": { "description": "new access token" }, "401": { "description": "invalid refresh token" } } }
    },
    "/api/auth/logout": {
      "post": { "summary": "Revoke the session", "responses": { "200": { "description": "logged out" } } }
    },
    "/api/dashboard/{type}": {
      "post": { "summary": "Register the caller / create a record", "responses": { "200": { "description": "created" }, "404": { "description": "unknown resource type" } } },
      "get": { "summary": "List all records of the type, newest first", "responses": { "200": { "description": "item list" }, "403": { "description": "admin role required" } } },
      "put": { "summary": "Apply a status code to a set of records atomically", "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"objects":{"type":"array"},"status":{"type":"integer"}}}}}}, "responses": { "200": { "description": "applied" } } },
      "delete": { "summary": "Remove records by uid (remove=a,b query parameter)", "responses": { "200": { "description": "removed" } } }
    },
    "/api/uploads/resume": {
      "post": { "summary": "Upload the caller's resume", "responses": { "200": { "description": "stored" } } }
    },
    "/api/uploads/resume/{uid}": {
      "get": { "summary": "Presigned resume download link (admins)", "responses": { "200": { "description": "url" } } }
    },
    "/health": { "get": { "summary": "Liveness check", "responses": { "200": { "description": "healthy" } } } },
    "/ready": { "get": { "summary": "Readiness check", "responses": { "200": { "description": "ready" }, "503": { "description": "not ready" } } } }
  }
}`
