// Package swagger holds the OpenAPI document served at /docs.
package swagger

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
        "/jwt": {
            "post": {
                "tags": ["auth"],
                "summary": "Issue an access token",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/courses": {
            "get": {
                "tags": ["courses"],
                "summary": "List approved courses",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/popularCourses": {
            "get": {
                "tags": ["courses"],
                "summary": "List top approved courses by enrollment",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/courses/instructors": {
            "post": {
                "tags": ["courses"],
                "summary": "Submit a course for moderation",
                "security": [{"BearerAuth": []}],
                "responses": {"201": {"description": "Created"}}
            },
            "get": {
                "tags": ["courses"],
                "summary": "List the caller's own submissions",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/instructors": {
            "get": {
                "tags": ["instructors"],
                "summary": "List all instructors",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/users": {
            "post": {
                "tags": ["users"],
                "summary": "Store a user on first sign-in",
                "responses": {"201": {"description": "Created"}}
            }
        },
        "/selectedClasses": {
            "post": {
                "tags": ["cart"],
                "summary": "Add a course to the cart",
                "responses": {"201": {"description": "Created"}}
            },
            "get": {
                "tags": ["cart"],
                "summary": "List the caller's pending selections",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/create_payment_intent": {
            "post": {
                "tags": ["payments"],
                "summary": "Create a payment intent",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/payments": {
            "post": {
                "tags": ["payments"],
                "summary": "Record a completed payment and settle the cart",
                "security": [{"BearerAuth": []}],
                "responses": {"201": {"description": "Created"}}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Scuola API",
	Description:      "Course marketplace backend: catalog, cart and payment settlement.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
