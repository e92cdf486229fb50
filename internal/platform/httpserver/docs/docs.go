// Package docs registers the OpenAPI document served under /swagger/.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/rpc": {
            "post": {
                "description": "Dispatches create_round or create_grant by the body's method tag.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "summary": "Signed grants mutation",
                "parameters": [
                    {
                        "description": "create_grant body; create_round uses roundData instead of grantData",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/http.CreateGrantRequest"}
                    }
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/http.CreateGrantResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/http.ErrorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/http.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/http.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        },
        "/healthz": {
            "get": {
                "produces": ["application/json"],
                "summary": "Liveness and store reachability",
                "responses": {
                    "200": {"description": "OK"},
                    "503": {"description": "Service Unavailable"}
                }
            }
        }
    },
    "definitions": {
        "http.ErrorResponse": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"}
            }
        },
        "http.GrantData": {
            "type": "object",
            "properties": {
                "address": {"type": "string"},
                "roundId": {"type": "string"},
                "title": {"type": "string"},
                "description": {"type": "string"},
                "fullText": {"type": "string"}
            }
        },
        "http.CreateGrantRequest": {
            "type": "object",
            "properties": {
                "method": {"type": "string", "example": "create_grant"},
                "grantData": {"$ref": "#/definitions/http.GrantData"},
                "signature": {"type": "string"},
                "schemaVersion": {"type": "string"}
            }
        },
        "http.GrantDTO": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "round_id": {"type": "integer"},
                "proposer": {"type": "string"},
                "title": {"type": "string"},
                "description": {"type": "string"},
                "full_text": {"type": "string"},
                "deleted": {"type": "boolean"},
                "created_at": {"type": "string"}
            }
        },
        "http.CreateGrantResponse": {
            "type": "object",
            "properties": {
                "data": {"type": "array", "items": {"$ref": "#/definitions/http.GrantDTO"}},
                "superseded": {"type": "array", "items": {"type": "integer"}}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "ENS Grants API",
	Description:      "Signed round and grant mutations for ENS Grants.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
