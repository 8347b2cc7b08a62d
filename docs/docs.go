// Package docs swagger spec of the book service.
// Regenerate with: swag init -g internal/book/router/router.go -o ./docs
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
        "/": {
            "get": {
                "description": "Returns a simple confirmation message",
                "tags": [
                    "Shared"
                ],
                "summary": "Check service status",
                "responses": {
                    "200": {
                        "description": "service start!",
                        "schema": {
                            "type": "string"
                        }
                    }
                }
            }
        },
        "/books": {
            "post": {
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Books"
                ],
                "summary": "List a book",
                "parameters": [
                    {
                        "description": "book",
                        "name": "book",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/domain.NewBook"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/comm.Response"
                        }
                    }
                }
            }
        },
        "/books/mine": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Books"
                ],
                "summary": "Books of the viewer",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/comm.Response"
                        }
                    }
                }
            }
        },
        "/books/nearby": {
            "get": {
                "description": "radius_km snaps to the nearest slider step; rows are re-checked with haversine",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Books"
                ],
                "summary": "Books near a coordinate",
                "parameters": [
                    {
                        "type": "number",
                        "description": "latitude",
                        "name": "lat",
                        "in": "query",
                        "required": true
                    },
                    {
                        "type": "number",
                        "description": "longitude",
                        "name": "lng",
                        "in": "query",
                        "required": true
                    },
                    {
                        "type": "number",
                        "description": "radius in km",
                        "name": "radius_km",
                        "in": "query",
                        "required": true
                    },
                    {
                        "type": "integer",
                        "description": "result cap",
                        "name": "max_results",
                        "in": "query"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/comm.Response"
                        }
                    }
                }
            }
        },
        "/books/{id}": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Books"
                ],
                "summary": "One book",
                "parameters": [
                    {
                        "type": "string",
                        "description": "book id",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/comm.Response"
                        }
                    }
                }
            }
        },
        "/debug": {
            "post": {
                "description": "Enable or disable debug logging for the service",
                "tags": [
                    "Shared"
                ],
                "summary": "Toggle Debug Log Flag",
                "parameters": [
                    {
                        "type": "boolean",
                        "description": "Debug status",
                        "name": "status",
                        "in": "query",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Service debug mode updated",
                        "schema": {
                            "type": "string"
                        }
                    },
                    "400": {
                        "description": "Invalid status value",
                        "schema": {
                            "type": "string"
                        }
                    }
                }
            }
        },
        "/geocode/place/{id}": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Geocode"
                ],
                "summary": "Resolve a predicted place",
                "parameters": [
                    {
                        "type": "string",
                        "description": "place id",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/comm.Response"
                        }
                    }
                }
            }
        },
        "/geocode/reload": {
            "post": {
                "description": "The only way out of a failed provider load",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Geocode"
                ],
                "summary": "Reload the geocoding provider",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/comm.Response"
                        }
                    },
                    "503": {
                        "description": "Service Unavailable",
                        "schema": {
                            "$ref": "#/definitions/comm.Response"
                        }
                    }
                }
            }
        },
        "/geocode/reverse": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Geocode"
                ],
                "summary": "Reverse geocode a coordinate",
                "parameters": [
                    {
                        "type": "number",
                        "description": "latitude",
                        "name": "lat",
                        "in": "query",
                        "required": true
                    },
                    {
                        "type": "number",
                        "description": "longitude",
                        "name": "lng",
                        "in": "query",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/comm.Response"
                        }
                    }
                }
            }
        },
        "/geocode/status": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Geocode"
                ],
                "summary": "Geocoding provider readiness",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/comm.Response"
                        }
                    }
                }
            }
        },
        "/geocode/suggest": {
            "get": {
                "description": "Predictions biased around lat/lng, or the configured fallback point",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Geocode"
                ],
                "summary": "Address autocomplete",
                "parameters": [
                    {
                        "type": "string",
                        "description": "partial address, at least 2 characters",
                        "name": "q",
                        "in": "query",
                        "required": true
                    },
                    {
                        "type": "number",
                        "description": "bias latitude",
                        "name": "lat",
                        "in": "query"
                    },
                    {
                        "type": "number",
                        "description": "bias longitude",
                        "name": "lng",
                        "in": "query"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/comm.Response"
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "$ref": "#/definitions/comm.Response"
                        }
                    },
                    "504": {
                        "description": "Gateway Timeout",
                        "schema": {
                            "$ref": "#/definitions/comm.Response"
                        }
                    }
                }
            }
        },
        "/metadata/search": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Books"
                ],
                "summary": "Search the public catalogue",
                "parameters": [
                    {
                        "type": "string",
                        "description": "title",
                        "name": "title",
                        "in": "query"
                    },
                    {
                        "type": "string",
                        "description": "author",
                        "name": "author",
                        "in": "query"
                    },
                    {
                        "type": "string",
                        "description": "isbn",
                        "name": "isbn",
                        "in": "query"
                    },
                    {
                        "type": "integer",
                        "description": "result cap",
                        "name": "limit",
                        "in": "query"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/comm.Response"
                        }
                    }
                }
            }
        },
        "/notifications": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Notifications"
                ],
                "summary": "Notifications of the viewer",
                "parameters": [
                    {
                        "type": "boolean",
                        "description": "only unread",
                        "name": "unread",
                        "in": "query"
                    },
                    {
                        "type": "integer",
                        "description": "result cap",
                        "name": "limit",
                        "in": "query"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/comm.Response"
                        }
                    }
                }
            }
        },
        "/notifications/{id}/read": {
            "post": {
                "tags": [
                    "Notifications"
                ],
                "summary": "Mark a notification read",
                "parameters": [
                    {
                        "type": "string",
                        "description": "notification id",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/comm.Response"
                        }
                    }
                }
            }
        },
        "/radius/steps": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Books"
                ],
                "summary": "Radius slider scale in km",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/comm.Response"
                        }
                    }
                }
            }
        },
        "/requests": {
            "post": {
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Requests"
                ],
                "summary": "Request a book from its owner",
                "parameters": [
                    {
                        "description": "request",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/domain.CreateRequestReq"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/comm.Response"
                        }
                    },
                    "400": {
                        "description": "cannot request own book",
                        "schema": {
                            "$ref": "#/definitions/comm.Response"
                        }
                    },
                    "409": {
                        "description": "book already requested",
                        "schema": {
                            "$ref": "#/definitions/comm.Response"
                        }
                    }
                }
            }
        },
        "/requests/incoming": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Requests"
                ],
                "summary": "Requests for the viewer's books",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/comm.Response"
                        }
                    }
                }
            }
        },
        "/requests/outgoing": {
            "get": {
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Requests"
                ],
                "summary": "Requests made by the viewer",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/comm.Response"
                        }
                    }
                }
            }
        },
        "/requests/{id}": {
            "patch": {
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "Requests"
                ],
                "summary": "Accept, decline or cancel a request",
                "parameters": [
                    {
                        "type": "string",
                        "description": "request id",
                        "name": "id",
                        "in": "path",
                        "required": true
                    },
                    {
                        "description": "new status",
                        "name": "status",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/domain.UpdateRequestReq"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/comm.Response"
                        }
                    }
                }
            }
        }
    },
    "definitions": {
        "comm.Response": {
            "type": "object",
            "properties": {
                "data": {},
                "error": {
                    "type": "string"
                },
                "success": {
                    "type": "boolean"
                }
            }
        },
        "domain.CreateRequestReq": {
            "type": "object",
            "required": [
                "book_id"
            ],
            "properties": {
                "book_id": {
                    "type": "string"
                },
                "message": {
                    "type": "string",
                    "maxLength": 1000
                }
            }
        },
        "domain.NewBook": {
            "type": "object",
            "required": [
                "title"
            ],
            "properties": {
                "author": {
                    "type": "string",
                    "maxLength": 300
                },
                "condition": {
                    "type": "string",
                    "enum": [
                        "new",
                        "like_new",
                        "good",
                        "fair",
                        "poor"
                    ]
                },
                "description": {
                    "type": "string",
                    "maxLength": 4000
                },
                "isbn": {
                    "type": "string"
                },
                "latitude": {
                    "type": "number"
                },
                "longitude": {
                    "type": "number"
                },
                "postal_code": {
                    "type": "string",
                    "maxLength": 16
                },
                "title": {
                    "type": "string",
                    "maxLength": 300
                }
            }
        },
        "domain.RequestStatus": {
            "type": "string",
            "enum": [
                "pending",
                "accepted",
                "declined",
                "cancelled"
            ],
            "x-enum-varnames": [
                "RequestPending",
                "RequestAccepted",
                "RequestDeclined",
                "RequestCancelled"
            ]
        },
        "domain.UpdateRequestReq": {
            "type": "object",
            "required": [
                "status"
            ],
            "properties": {
                "status": {
                    "enum": [
                        "accepted",
                        "declined",
                        "cancelled"
                    ],
                    "allOf": [
                        {
                            "$ref": "#/definitions/domain.RequestStatus"
                        }
                    ]
                }
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8082",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Book Exchange Service API",
	Description:      "Book listings, nearby search, book requests and notifications",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
