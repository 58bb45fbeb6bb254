package handler

import (
	"net/http"
	"strings"

	"github.com/deppfellow/usercrud/internal/route"
	"github.com/deppfellow/usercrud/internal/server"
	"github.com/labstack/echo/v4"
)

// OpenAPIHandler serves an OpenAPI 3 document describing the route table.
//
// The document is built once from the same table the router registers, so
// it cannot drift from the served routes.
type OpenAPIHandler struct {
	Handler
	document map[string]any
}

func NewOpenAPIHandler(s *server.Server, table []route.Route) *OpenAPIHandler {
	return &OpenAPIHandler{
		Handler:  NewHandler(s),
		document: buildOpenAPIDocument(s.Config.Observability.ServiceName, table),
	}
}

// ServeOpenAPISpec writes the document. Caching is disabled so a redeploy
// is visible immediately.
func (h *OpenAPIHandler) ServeOpenAPISpec(c echo.Context) error {
	c.Response().Header().Set("Cache-Control", "no-cache")
	return c.JSON(http.StatusOK, h.document)
}

func buildOpenAPIDocument(title string, table []route.Route) map[string]any {
	paths := make(map[string]any)

	for _, rt := range table {
		item, ok := paths[rt.Path].(map[string]any)
		if !ok {
			item = make(map[string]any)
			paths[rt.Path] = item
		}

		op := map[string]any{
			"summary":     rt.Summary,
			"operationId": rt.Op.String() + strings.ReplaceAll(strings.ReplaceAll(rt.Path, "/", "_"), "{"+route.IDParam+"}", "by_id"),
			"responses": map[string]any{
				"200": envelopeResponse("Success envelope"),
				"500": envelopeResponse("Failure envelope, result.error holds the message"),
			},
		}
		if rt.HasID {
			op["parameters"] = []any{map[string]any{
				"name":     route.IDParam,
				"in":       "path",
				"required": true,
				"schema":   map[string]any{"type": "integer", "minimum": 1},
			}}
		}
		if rt.ValidatesBody {
			op["requestBody"] = map[string]any{
				"required": true,
				"content": map[string]any{
					"application/json": map[string]any{
						"schema": map[string]any{"$ref": "#/components/schemas/UserFields"},
					},
				},
			}
		}

		item[strings.ToLower(rt.Method)] = op
	}

	return map[string]any{
		"openapi": "3.0.3",
		"info": map[string]any{
			"title":   title,
			"version": "1.0.0",
		},
		"paths": paths,
		"components": map[string]any{
			"schemas": map[string]any{
				"UserFields": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"full_name":  map[string]any{"type": "string", "minLength": 3, "maxLength": 30},
						"role":       map[string]any{"type": "string", "minLength": 3, "maxLength": 40},
						"efficiency": map[string]any{"type": "integer", "minimum": 1},
					},
				},
				"Envelope": map[string]any{
					"type":     "object",
					"required": []string{"success"},
					"properties": map[string]any{
						"success": map[string]any{"type": "boolean"},
						"result":  map[string]any{},
					},
				},
			},
		},
	}
}

func envelopeResponse(description string) map[string]any {
	return map[string]any{
		"description": description,
		"content": map[string]any{
			"application/json": map[string]any{
				"schema": map[string]any{"$ref": "#/components/schemas/Envelope"},
			},
		},
	}
}
