// Package docs holds the OpenAPI document served by the swagger build of bookmarkd.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {
            "name": "bookmarkd maintainers"
        },
        "license": {
            "name": "MIT",
            "url": "https://opensource.org/licenses/MIT"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/bookmark": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["bookmarks"],
                "summary": "Store a bookmark and notify subscribers",
                "parameters": [
                    {
                        "description": "Bookmark",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/types.BookmarkRequest"}
                    }
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/types.BookmarkResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "415": {"description": "Unsupported Media Type", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}
                }
            }
        },
        "/notifications": {
            "get": {
                "produces": ["application/json"],
                "tags": ["notifications"],
                "summary": "Routing snapshot and recent dispatches",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.NotificationStatus"}}
                }
            }
        },
        "/healthz": {
            "get": {
                "produces": ["text/plain"],
                "tags": ["health"],
                "summary": "Liveness probe",
                "responses": {"200": {"description": "ok"}}
            }
        },
        "/readyz": {
            "get": {
                "produces": ["text/plain"],
                "tags": ["health"],
                "summary": "Readiness probe (store reachable)",
                "responses": {"200": {"description": "ready"}, "503": {"description": "store unavailable"}}
            }
        }
    },
    "definitions": {
        "types.BookmarkRequest": {
            "type": "object",
            "required": ["url", "title"],
            "properties": {
                "url": {"type": "string", "example": "https://example.com/article"},
                "title": {"type": "string", "example": "Example Article"},
                "category": {"type": "string", "example": "work"}
            }
        },
        "types.BookmarkResponse": {
            "type": "object",
            "properties": {
                "status": {"type": "string", "example": "success"},
                "message": {"type": "string", "example": "Bookmark stored"},
                "id": {"type": "string", "example": "3f1c9a5e-2b7d-4c1e-9a51-0f3e2d9c8b7a"}
            }
        },
        "types.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string", "example": "invalid JSON body"},
                "code": {"type": "integer", "example": 400}
            }
        },
        "types.ClientStatus": {
            "type": "object",
            "properties": {
                "name": {"type": "string", "example": "signal"},
                "type": {"type": "string", "example": "signal"},
                "enabled": {"type": "boolean"},
                "api_url": {"type": "string", "example": "http://localhost:8080"},
                "categories": {"type": "array", "items": {"type": "string"}},
                "timeout_seconds": {"type": "number", "example": 10}
            }
        },
        "types.DispatchResult": {
            "type": "object",
            "properties": {
                "client": {"type": "string"},
                "recipient": {"type": "string"},
                "class": {"type": "string"},
                "status": {"type": "string"},
                "err_kind": {"type": "string"},
                "error": {"type": "string"}
            }
        },
        "types.DispatchRecord": {
            "type": "object",
            "properties": {
                "time": {"type": "string"},
                "url": {"type": "string"},
                "title": {"type": "string"},
                "category": {"type": "string"},
                "clients": {"type": "array", "items": {"type": "string"}},
                "results": {"type": "array", "items": {"$ref": "#/definitions/types.DispatchResult"}},
                "duration_ms": {"type": "integer"}
            }
        },
        "types.NotificationStatus": {
            "type": "object",
            "properties": {
                "enabled": {"type": "boolean"},
                "clients": {"type": "array", "items": {"$ref": "#/definitions/types.ClientStatus"}},
                "routes": {"type": "object", "additionalProperties": {"type": "array", "items": {"type": "string"}}},
                "warnings": {"type": "array", "items": {"type": "string"}},
                "recent": {"type": "array", "items": {"$ref": "#/definitions/types.DispatchRecord"}}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{"http"},
	Title:            "bookmarkd API",
	Description:      "Stores bookmarks and routes notifications to messaging backends by category.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
