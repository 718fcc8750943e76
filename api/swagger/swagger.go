package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Kaizen Suggestion API",
        "description": "Employee improvement-suggestion workflow with rewards",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Authentication", "description": "Login, refresh, logout"},
        {"name": "Suggestions", "description": "Suggestion lifecycle and workflow transitions"},
        {"name": "Rewards", "description": "Reward ledger and point balances"},
        {"name": "Statistics", "description": "Read-side projections and exports"}
    ],
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Authenticate user",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/auth/refresh": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Refresh access token",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/auth/logout": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Revoke refresh token",
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/auth/me": {
            "get": {
                "tags": ["Authentication"],
                "summary": "Current user profile",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/users": {
            "get": {
                "tags": ["Users"],
                "summary": "List all users",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Role not allowed"}
                }
            }
        },
        "/suggestions": {
            "get": {
                "tags": ["Suggestions"],
                "summary": "List suggestions",
                "parameters": [
                    {"name": "status", "in": "query", "type": "string"},
                    {"name": "type", "in": "query", "type": "string"},
                    {"name": "limit", "in": "query", "type": "integer"},
                    {"name": "offset", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Suggestions"],
                "summary": "Submit suggestion",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateSuggestionRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/suggestions/{id}": {
            "get": {
                "tags": ["Suggestions"],
                "summary": "Get suggestion",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not Found"}
                }
            },
            "patch": {
                "tags": ["Suggestions"],
                "summary": "Legacy generic update (deprecated)",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/suggestions/{id}/transitions": {
            "post": {
                "tags": ["Suggestions"],
                "summary": "Apply workflow action",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/TransitionRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid transition"},
                    "403": {"description": "Role not allowed"},
                    "409": {"description": "Concurrent modification"}
                }
            }
        },
        "/suggestions/{id}/feasibility": {
            "patch": {
                "tags": ["Suggestions"],
                "summary": "Submit feasibility scores and evaluate",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/FeasibilityPayload"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/rewards": {
            "post": {
                "tags": ["Rewards"],
                "summary": "Grant reward",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/GrantRewardRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Duplicate reward"}
                }
            }
        },
        "/rewards/suggestion/{suggestionId}": {
            "get": {
                "tags": ["Rewards"],
                "summary": "Rewards for a suggestion",
                "parameters": [
                    {"name": "suggestionId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/rewards/user/{userId}": {
            "get": {
                "tags": ["Rewards"],
                "summary": "Rewards granted to a user",
                "parameters": [
                    {"name": "userId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/stats/suggestions": {
            "get": {
                "tags": ["Statistics"],
                "summary": "Aggregated suggestion counters",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/stats/top-contributors": {
            "get": {
                "tags": ["Statistics"],
                "summary": "Users ranked by points",
                "parameters": [
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/stats/export": {
            "get": {
                "tags": ["Statistics"],
                "summary": "Download implementation report",
                "parameters": [
                    {"name": "format", "in": "query", "required": true, "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "File"}
                }
            }
        }
    },
    "definitions": {
        "LoginRequest": {
            "type": "object",
            "properties": {
                "username": {"type": "string"},
                "password": {"type": "string"}
            },
            "required": ["username", "password"]
        },
        "CreateSuggestionRequest": {
            "type": "object",
            "properties": {
                "title": {"type": "string"},
                "description": {"type": "string"},
                "category": {"type": "string"},
                "benefits": {"type": "string"},
                "suggestionType": {"type": "string", "enum": ["kaizen", "kivilcim"]},
                "revisionOf": {"type": "string"}
            },
            "required": ["title", "description", "category", "benefits"]
        },
        "TransitionRequest": {
            "type": "object",
            "properties": {
                "action": {"type": "string"},
                "departmentReview": {"type": "object"},
                "feasibility": {"$ref": "#/definitions/FeasibilityPayload"},
                "solution": {"type": "object"},
                "cost": {"type": "object"},
                "decision": {"type": "object"},
                "implementation": {"type": "object"},
                "report": {"type": "object"},
                "evaluation": {"type": "object"},
                "reward": {"type": "object"}
            },
            "required": ["action"]
        },
        "FeasibilityPayload": {
            "type": "object",
            "properties": {
                "innovationScore": {"type": "integer"},
                "safetyScore": {"type": "integer"},
                "environmentScore": {"type": "integer"},
                "employeeSatisfactionScore": {"type": "integer"},
                "technologicalCompatibilityScore": {"type": "integer"},
                "implementationEaseScore": {"type": "integer"},
                "costBenefitScore": {"type": "integer"},
                "feedback": {"type": "string"}
            }
        },
        "GrantRewardRequest": {
            "type": "object",
            "properties": {
                "suggestionId": {"type": "string"},
                "userId": {"type": "string"},
                "amount": {"type": "integer"},
                "type": {"type": "string", "enum": ["money", "points", "gift"]}
            },
            "required": ["suggestionId", "userId", "amount", "type"]
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "pagination": {"$ref": "#/definitions/Pagination"},
                "meta": {"type": "object"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
