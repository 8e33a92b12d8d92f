// Package docs registra la descripción OpenAPI del BFF para /swagger/*.
// Se regenera con `swag init -g cmd/web/main.go`.
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
        "/login": {
            "get": {
                "tags": ["session"],
                "summary": "Entrada de login (destino del guard)",
                "parameters": [{"type": "string", "name": "next", "in": "query"}],
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["session"],
                "summary": "Iniciar sesión",
                "parameters": [
                    {"type": "string", "name": "next", "in": "query"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/session.loginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/session.authResponse"}},
                    "400": {"description": "invalid json", "schema": {"$ref": "#/definitions/errorResponse"}},
                    "401": {"description": "mensaje del servidor o 'Login failed'", "schema": {"$ref": "#/definitions/errorResponse"}}
                }
            }
        },
        "/register": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["session"],
                "summary": "Crear cuenta",
                "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/session.registerRequest"}}],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/session.authResponse"}},
                    "400": {"description": "Passwords do not match / mensaje del servidor", "schema": {"$ref": "#/definitions/errorResponse"}}
                }
            }
        },
        "/forgot-password": {
            "post": {"tags": ["session"], "summary": "Pedir link de reseteo", "responses": {"200": {"description": "OK"}}}
        },
        "/reset-password": {
            "post": {"tags": ["session"], "summary": "Resetear password", "responses": {"200": {"description": "OK"}}}
        },
        "/logout": {
            "post": {"tags": ["session"], "summary": "Cerrar sesión", "responses": {"200": {"description": "OK"}}}
        },
        "/me": {
            "get": {"tags": ["session"], "summary": "Sesión actual", "responses": {"200": {"description": "OK"}}}
        },
        "/dashboard": {
            "get": {
                "produces": ["application/json"],
                "tags": ["dashboard"],
                "summary": "Dashboard del dueño",
                "parameters": [{"type": "string", "name": "q", "in": "query"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dashboard.View"}},
                    "401": {"description": "sesión invalidada", "schema": {"$ref": "#/definitions/errorResponse"}}
                }
            }
        },
        "/dashboard/refresh": {
            "post": {"tags": ["dashboard"], "summary": "Refrescar historial de scans", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/dashboard.View"}}}}
        },
        "/dashboard/focus": {
            "post": {"tags": ["dashboard"], "summary": "La pestaña volvió a estar visible", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/dashboard.View"}}}}
        },
        "/dashboard/pets": {
            "post": {
                "consumes": ["multipart/form-data"],
                "tags": ["dashboard"],
                "summary": "Registrar mascota",
                "responses": {
                    "201": {"description": "Created"},
                    "400": {"description": "Pet name is required / Maximum 5 photos allowed", "schema": {"$ref": "#/definitions/errorResponse"}}
                }
            }
        },
        "/dashboard/pets/{petID}/status": {
            "patch": {
                "consumes": ["application/json"],
                "tags": ["dashboard"],
                "summary": "Cambiar estado (safe/lost)",
                "parameters": [{"type": "string", "name": "petID", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/dashboard.View"}}}
            }
        },
        "/dashboard/pets/{petID}/qr": {
            "get": {
                "tags": ["dashboard"],
                "summary": "QR del perfil público",
                "parameters": [
                    {"type": "string", "name": "petID", "in": "path", "required": true},
                    {"type": "string", "name": "format", "in": "query"}
                ],
                "responses": {"200": {"description": "OK"}, "404": {"description": "pet not found"}}
            }
        },
        "/dashboard/scans.xlsx": {
            "get": {"tags": ["dashboard"], "summary": "Exportar historial de scans", "responses": {"200": {"description": "OK"}}}
        },
        "/pet/{petID}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["public"],
                "summary": "Perfil público de una mascota",
                "parameters": [{"type": "string", "name": "petID", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/profile.View"}},
                    "404": {"description": "Pet not found", "schema": {"$ref": "#/definitions/profile.View"}},
                    "502": {"description": "Failed to load pet information", "schema": {"$ref": "#/definitions/profile.View"}}
                }
            }
        },
        "/pet/{petID}/location": {
            "post": {
                "consumes": ["application/json"],
                "tags": ["public"],
                "summary": "Respuesta del permiso de geolocalización",
                "parameters": [
                    {"type": "string", "name": "petID", "in": "path", "required": true},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/profile.locationRequest"}}
                ],
                "responses": {"202": {"description": "Accepted"}, "409": {"description": "la vista actual es de otra mascota", "schema": {"$ref": "#/definitions/errorResponse"}}}
            }
        },
        "/pet/{petID}/contact": {
            "post": {
                "consumes": ["application/json"],
                "tags": ["public"],
                "summary": "Contactar al dueño",
                "parameters": [
                    {"type": "string", "name": "petID", "in": "path", "required": true},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/profile.ContactMessage"}}
                ],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Failed to send message", "schema": {"$ref": "#/definitions/errorResponse"}}}
            }
        }
    },
    "definitions": {
        "errorResponse": {
            "type": "object",
            "properties": {"error": {"type": "string"}}
        },
        "session.loginRequest": {
            "type": "object",
            "properties": {"email": {"type": "string"}, "password": {"type": "string"}}
        },
        "session.registerRequest": {
            "type": "object",
            "properties": {
                "firstName": {"type": "string"}, "lastName": {"type": "string"},
                "email": {"type": "string"}, "password": {"type": "string"},
                "confirmPassword": {"type": "string"}, "phone": {"type": "string"},
                "address": {"type": "string"}
            }
        },
        "session.authResponse": {
            "type": "object",
            "properties": {"user": {"type": "object"}, "redirect": {"type": "string"}}
        },
        "dashboard.View": {
            "type": "object",
            "properties": {
                "first_name": {"type": "string"}, "query": {"type": "string"},
                "pets": {"type": "array", "items": {"type": "object"}},
                "scans": {"type": "object"}, "stats": {"type": "object"},
                "error": {"type": "string"}, "loading": {"type": "boolean"}
            }
        },
        "profile.View": {
            "type": "object",
            "properties": {
                "pet_id": {"type": "string"}, "pet": {"type": "object"},
                "presentation": {"type": "object"}, "profile_url": {"type": "string"},
                "error": {"type": "string"}, "loading": {"type": "boolean"},
                "location_recorded": {"type": "boolean"}, "location_attempted": {"type": "boolean"}
            }
        },
        "profile.locationRequest": {
            "type": "object",
            "properties": {"latitude": {"type": "number"}, "longitude": {"type": "number"}, "denied": {"type": "boolean"}}
        },
        "profile.ContactMessage": {
            "type": "object",
            "properties": {
                "senderName": {"type": "string"}, "senderEmail": {"type": "string"},
                "senderPhone": {"type": "string"}, "message": {"type": "string"},
                "shareLocation": {"type": "boolean"},
                "latitude": {"type": "number"}, "longitude": {"type": "number"}
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
	Title:            "PetGuardian web",
	Description:      "BFF del cliente PetGuardian: sesión, dashboard del dueño y perfil público.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
