// Package docs registers the OpenAPI document served under /swagger.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/health": {"get": {"tags": ["system"], "summary": "Health check", "responses": {"200": {"description": "OK"}}}},
        "/auth/sign-up": {"post": {"tags": ["auth"], "summary": "Register an operator", "responses": {"200": {"description": "OK"}, "409": {"description": "Username taken"}}}},
        "/auth/sign-in": {"post": {"tags": ["auth"], "summary": "Issue a bearer token", "responses": {"200": {"description": "OK"}, "401": {"description": "Invalid credentials"}}}},
        "/api/v1/process/recipe": {
            "get": {"tags": ["process"], "summary": "Recipe and process status", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["process"], "summary": "Submit a recipe", "consumes": ["application/json", "application/x-yaml"], "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}, "400": {"description": "Invalid recipe"}, "409": {"description": "Invalid transition"}}}
        },
        "/api/v1/process/start": {"post": {"tags": ["process"], "summary": "Start or resume the recipe", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}, "409": {"description": "Invalid transition"}}}},
        "/api/v1/process/pause": {"post": {"tags": ["process"], "summary": "Pause the recipe", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}, "409": {"description": "Invalid transition"}}}},
        "/api/v1/process/skip": {"post": {"tags": ["process"], "summary": "Skip to the next step", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}, "409": {"description": "Invalid transition"}}}},
        "/api/v1/process/stop": {"post": {"tags": ["process"], "summary": "Switch everything off", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}},
        "/api/v1/process/temperatures": {"put": {"tags": ["process"], "summary": "Replace temperature goals of the active step", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}, "400": {"description": "Invalid goals"}}}},
        "/api/v1/process/temperatures/{index}": {"put": {"tags": ["process"], "summary": "Override one zone goal", "parameters": [{"type": "integer", "name": "index", "in": "path", "required": true}], "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}, "400": {"description": "Index out of range"}}}},
        "/api/v1/process/actuators": {
            "get": {"tags": ["process"], "summary": "Actuator bank states", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}},
            "put": {"tags": ["process"], "summary": "Replace actuator goals of the active step", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}, "400": {"description": "Invalid goals"}}}
        },
        "/api/v1/process/actuators/{index}": {"put": {"tags": ["process"], "summary": "Override one fluid actuator goal", "parameters": [{"type": "integer", "name": "index", "in": "path", "required": true}], "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}, "400": {"description": "Index out of range"}}}},
        "/api/v1/process/duration": {"put": {"tags": ["process"], "summary": "Override the active step duration", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}},
        "/api/v1/process/state": {"get": {"tags": ["process"], "summary": "Latest snapshot", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}},
        "/api/v1/recipes": {
            "get": {"tags": ["recipes"], "summary": "List stored recipes", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["recipes"], "summary": "Store a recipe", "consumes": ["application/json", "application/x-yaml"], "security": [{"BearerAuth": []}], "responses": {"201": {"description": "Created"}, "400": {"description": "Invalid recipe"}}}
        },
        "/api/v1/recipes/{id}": {
            "get": {"tags": ["recipes"], "summary": "Get a stored recipe", "produces": ["application/json", "application/x-yaml"], "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not found"}}},
            "delete": {"tags": ["recipes"], "summary": "Delete a stored recipe", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "security": [{"BearerAuth": []}], "responses": {"204": {"description": "Deleted"}, "404": {"description": "Not found"}}}
        },
        "/api/v1/recipes/{id}/load": {"post": {"tags": ["recipes"], "summary": "Load a stored recipe into the engine", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not found"}, "409": {"description": "Invalid transition"}}}}
    },
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Brewing control API",
	Description:      "Recipe-driven control of heaters and fluid-path actuators.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
