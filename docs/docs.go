// Package docs содержит описание API для Swagger UI.
// Шаблон поддерживается вручную вместе с аннотациями хэндлеров.
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
        "/signals": {
            "post": {
                "security": [{"ApiKeyAuth": []}],
                "description": "Submit an incoming signal. A duplicate within the dedup window merges into the open incident. Requires API key.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Signals"],
                "summary": "Submit a signal",
                "parameters": [
                    {"description": "Signal", "name": "signal", "in": "body", "required": true, "schema": {"$ref": "#/definitions/v1.SignalRequest"}}
                ],
                "responses": {
                    "200": {"description": "Merged into an open incident", "schema": {"$ref": "#/definitions/v1.SubmitResponse"}},
                    "201": {"description": "Incident created", "schema": {"$ref": "#/definitions/v1.SubmitResponse"}},
                    "400": {"description": "Invalid signal", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/sos": {
            "post": {
                "security": [{"ApiKeyAuth": []}],
                "description": "Raise a visitor SOS alert. Anonymous senders may omit user_id. Requires API key.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Signals"],
                "summary": "Trigger SOS",
                "parameters": [
                    {"description": "SOS", "name": "sos", "in": "body", "required": true, "schema": {"$ref": "#/definitions/v1.SOSRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/v1.SubmitResponse"}},
                    "400": {"description": "Invalid request", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/detections/crowd": {
            "post": {
                "security": [{"ApiKeyAuth": []}],
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["Detections"],
                "summary": "Run crowd detection",
                "parameters": [
                    {"type": "string", "description": "Camera ID", "name": "camera_id", "in": "formData", "required": true},
                    {"type": "file", "description": "Frame", "name": "file", "in": "formData", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/v1.DetectionResponse"}},
                    "502": {"description": "Detector unavailable", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/detections/face": {
            "post": {
                "security": [{"ApiKeyAuth": []}],
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["Detections"],
                "summary": "Run face matching",
                "parameters": [
                    {"type": "string", "description": "Camera ID", "name": "camera_id", "in": "formData", "required": true},
                    {"type": "file", "description": "Frame", "name": "file", "in": "formData", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/v1.DetectionResponse"}}
                }
            }
        },
        "/detections/anomaly": {
            "post": {
                "security": [{"ApiKeyAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Detections"],
                "summary": "Run anomaly detection",
                "parameters": [
                    {"description": "Sensor series", "name": "series", "in": "body", "required": true, "schema": {"$ref": "#/definitions/v1.AnomalyRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/v1.DetectionResponse"}}
                }
            }
        },
        "/incidents": {
            "get": {
                "security": [{"ApiKeyAuth": []}],
                "produces": ["application/json"],
                "tags": ["Incidents"],
                "summary": "Get a list of incidents",
                "parameters": [
                    {"type": "string", "description": "Comma separated statuses", "name": "status", "in": "query"},
                    {"type": "string", "description": "Incident kind", "name": "kind", "in": "query"},
                    {"type": "boolean", "description": "Only open incidents", "name": "open", "in": "query"},
                    {"type": "boolean", "description": "Include persisted closed incidents", "name": "include_closed", "in": "query"},
                    {"type": "integer", "default": 100, "description": "Max items", "name": "limit", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/v1.IncidentResponse"}}}
                }
            }
        },
        "/incidents/stats": {
            "get": {
                "security": [{"ApiKeyAuth": []}],
                "produces": ["application/json"],
                "tags": ["Incidents"],
                "summary": "Get incident statistics",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/v1.StatsResponse"}}
                }
            }
        },
        "/incidents/{id}": {
            "get": {
                "security": [{"ApiKeyAuth": []}],
                "produces": ["application/json"],
                "tags": ["Incidents"],
                "summary": "Get incident by ID",
                "parameters": [
                    {"type": "string", "description": "Incident ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/v1.IncidentResponse"}},
                    "404": {"description": "Incident not found", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/incidents/{id}/acknowledge": {
            "post": {
                "security": [{"ApiKeyAuth": []}],
                "tags": ["Incidents"],
                "summary": "Acknowledge incident",
                "parameters": [
                    {"type": "string", "description": "Incident ID", "name": "id", "in": "path", "required": true},
                    {"description": "Actor", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/v1.ActorRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/v1.IncidentResponse"}},
                    "409": {"description": "Illegal transition", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/incidents/{id}/escalate": {
            "post": {
                "security": [{"ApiKeyAuth": []}],
                "tags": ["Incidents"],
                "summary": "Escalate incident",
                "parameters": [
                    {"type": "string", "description": "Incident ID", "name": "id", "in": "path", "required": true},
                    {"description": "Escalation", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/v1.EscalateRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/v1.IncidentResponse"}}
                }
            }
        },
        "/incidents/{id}/resolve": {
            "post": {
                "security": [{"ApiKeyAuth": []}],
                "tags": ["Incidents"],
                "summary": "Resolve incident",
                "parameters": [
                    {"type": "string", "description": "Incident ID", "name": "id", "in": "path", "required": true},
                    {"description": "Resolution", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/v1.ResolveRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/v1.IncidentResponse"}}
                }
            }
        },
        "/incidents/{id}/location": {
            "post": {
                "security": [{"ApiKeyAuth": []}],
                "tags": ["Incidents"],
                "summary": "Refine incident location",
                "parameters": [
                    {"type": "string", "description": "Incident ID", "name": "id", "in": "path", "required": true},
                    {"description": "Location", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/v1.RefineLocationRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/v1.IncidentResponse"}}
                }
            }
        },
        "/incidents/{id}/attachments": {
            "post": {
                "security": [{"ApiKeyAuth": []}],
                "tags": ["Incidents"],
                "summary": "Attach to incident",
                "parameters": [
                    {"type": "string", "description": "Incident ID", "name": "id", "in": "path", "required": true},
                    {"description": "Attachment reference", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/v1.AttachRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/v1.IncidentResponse"}}
                }
            }
        },
        "/attachments": {
            "post": {
                "security": [{"ApiKeyAuth": []}],
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["Attachments"],
                "summary": "Upload attachment",
                "parameters": [
                    {"type": "file", "description": "Attachment", "name": "file", "in": "formData", "required": true}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/v1.AttachmentResponse"}},
                    "413": {"description": "Attachment too large", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/stream": {
            "get": {
                "security": [{"ApiKeyAuth": []}],
                "produces": ["text/event-stream"],
                "tags": ["Stream"],
                "summary": "Stream incident changes",
                "description": "The stream opens with a ready event whose id is the current sequence. A client resuming with Last-Event-ID or last_seq, 0 included, first receives a reconnect event.",
                "parameters": [
                    {"type": "string", "description": "Last received sequence number", "name": "Last-Event-ID", "in": "header"},
                    {"type": "integer", "description": "Last received sequence number", "name": "last_seq", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "event stream", "schema": {"type": "string"}},
                    "400": {"description": "Invalid sequence number", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/system/health": {
            "get": {
                "security": [{"ApiKeyAuth": []}],
                "produces": ["application/json"],
                "tags": ["System"],
                "summary": "System health",
                "parameters": [
                    {"type": "boolean", "description": "Use the last background snapshot", "name": "cached", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/v1.HealthResponse"}}
                }
            }
        },
        "/system/live": {
            "get": {
                "produces": ["application/json"],
                "tags": ["System"],
                "summary": "Liveness",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/admin/maintenance/{intent}": {
            "post": {
                "security": [{"ApiKeyAuth": []}],
                "produces": ["application/json"],
                "tags": ["System"],
                "summary": "Run maintenance",
                "parameters": [
                    {"enum": ["force-sync", "clear-cache"], "type": "string", "description": "Intent", "name": "intent", "in": "path", "required": true},
                    {"type": "string", "description": "Operator recorded in the audit log", "name": "actor", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/health.MaintenanceReport"}},
                    "400": {"description": "Unknown intent", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/admin/broadcast": {
            "post": {
                "security": [{"ApiKeyAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Admin"],
                "summary": "Broadcast operator message",
                "parameters": [
                    {"description": "Message", "name": "message", "in": "body", "required": true, "schema": {"$ref": "#/definitions/v1.BroadcastRequest"}}
                ],
                "responses": {
                    "202": {"description": "Accepted", "schema": {"$ref": "#/definitions/v1.BroadcastEvent"}},
                    "400": {"description": "Invalid input", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/admin/logs": {
            "get": {
                "security": [{"ApiKeyAuth": []}],
                "produces": ["application/json"],
                "tags": ["Admin"],
                "summary": "Audit log",
                "parameters": [
                    {"type": "integer", "default": 100, "description": "Maximum entries (1-500)", "name": "limit", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/v1.AuditEntryResponse"}}},
                    "400": {"description": "Invalid limit", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "503": {"description": "Audit log not configured", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        }
    },
    "definitions": {
        "health.MaintenanceReport": {
            "type": "object",
            "properties": {
                "completed_at": {"type": "string"},
                "degraded": {"type": "boolean"},
                "intent": {"type": "string"},
                "origins_purged": {"type": "integer"},
                "persisted": {"type": "integer"}
            }
        },
        "v1.ActorRequest": {
            "type": "object",
            "properties": {
                "actor": {"type": "string", "maxLength": 255}
            }
        },
        "v1.AnomalyRequest": {
            "type": "object",
            "required": ["sensor_id", "values"],
            "properties": {
                "location": {"$ref": "#/definitions/v1.LocationRequest"},
                "sensor_id": {"type": "string"},
                "values": {"type": "array", "minItems": 5, "items": {"type": "number"}}
            }
        },
        "v1.AttachRequest": {
            "type": "object",
            "required": ["actor", "reference"],
            "properties": {
                "actor": {"type": "string", "maxLength": 255},
                "reference": {"type": "string"}
            }
        },
        "v1.AuditEntryResponse": {
            "type": "object",
            "properties": {
                "action": {"type": "string"},
                "actor": {"type": "string"},
                "created_at": {"type": "string"},
                "id": {"type": "string"},
                "message": {"type": "string"}
            }
        },
        "v1.BroadcastEvent": {
            "type": "object",
            "properties": {
                "actor": {"type": "string"},
                "at": {"type": "string"},
                "message": {"type": "string"},
                "seq": {"type": "integer"}
            }
        },
        "v1.BroadcastRequest": {
            "type": "object",
            "required": ["actor", "message"],
            "properties": {
                "actor": {"type": "string"},
                "message": {"type": "string", "maxLength": 1000}
            }
        },
        "v1.AttachmentResponse": {
            "type": "object",
            "properties": {
                "reference": {"type": "string"}
            }
        },
        "v1.DetectionResponse": {
            "type": "object",
            "properties": {
                "detection": {},
                "incidents": {"type": "array", "items": {"$ref": "#/definitions/v1.SubmitResponse"}}
            }
        },
        "v1.EscalateRequest": {
            "type": "object",
            "required": ["actor"],
            "properties": {
                "actor": {"type": "string", "maxLength": 255},
                "severity": {"type": "number", "minimum": 0}
            }
        },
        "v1.HealthResponse": {
            "type": "object",
            "properties": {
                "degraded": {"type": "boolean"},
                "incidents": {"$ref": "#/definitions/v1.StatsResponse"},
                "subsystems": {"type": "array", "items": {"$ref": "#/definitions/v1.SubsystemResponse"}},
                "taken_at": {"type": "string"}
            }
        },
        "v1.HistoryEntryResponse": {
            "type": "object",
            "properties": {
                "actor": {"type": "string"},
                "at": {"type": "string"},
                "note": {"type": "string"},
                "status": {"type": "string"}
            }
        },
        "v1.IncidentResponse": {
            "description": "DTO для ответа с информацией об инциденте",
            "type": "object",
            "properties": {
                "attachments": {"type": "array", "items": {"type": "string"}},
                "created_at": {"type": "string"},
                "details": {"type": "string"},
                "history": {"type": "array", "items": {"$ref": "#/definitions/v1.HistoryEntryResponse"}},
                "id": {"type": "string"},
                "kind": {"type": "string"},
                "latitude": {"type": "number"},
                "location_refined": {"type": "boolean"},
                "location_unknown": {"type": "boolean"},
                "longitude": {"type": "number"},
                "origin_reference": {"type": "string"},
                "origin_type": {"type": "string"},
                "outcome": {"type": "string"},
                "place": {"type": "string"},
                "resolved_at": {"type": "string"},
                "severity": {"type": "number"},
                "status": {"type": "string"},
                "updated_at": {"type": "string"}
            }
        },
        "v1.LocationRequest": {
            "description": "DTO координат",
            "type": "object",
            "properties": {
                "latitude": {"type": "number"},
                "longitude": {"type": "number"},
                "place": {"type": "string", "maxLength": 255},
                "unknown": {"type": "boolean"}
            }
        },
        "v1.RefineLocationRequest": {
            "type": "object",
            "required": ["actor"],
            "properties": {
                "actor": {"type": "string", "maxLength": 255},
                "latitude": {"type": "number"},
                "longitude": {"type": "number"},
                "place": {"type": "string", "maxLength": 255}
            }
        },
        "v1.ResolveRequest": {
            "type": "object",
            "required": ["actor", "outcome"],
            "properties": {
                "actor": {"type": "string", "maxLength": 255},
                "outcome": {"type": "string", "maxLength": 2000}
            }
        },
        "v1.SOSRequest": {
            "description": "DTO тревоги посетителя",
            "type": "object",
            "required": ["type"],
            "properties": {
                "attachment": {"type": "string"},
                "details": {"type": "string", "maxLength": 2000},
                "latitude": {"type": "number"},
                "longitude": {"type": "number"},
                "type": {"type": "string", "enum": ["medical", "security", "lost", "other"]},
                "user_id": {"type": "string", "maxLength": 255}
            }
        },
        "v1.SignalRequest": {
            "description": "DTO входящего сигнала",
            "type": "object",
            "required": ["kind", "location", "origin_reference", "origin_type"],
            "properties": {
                "attachments": {"type": "array", "items": {"type": "string"}},
                "details": {"type": "string", "maxLength": 2000},
                "kind": {"type": "string", "enum": ["medical", "security", "lost-person", "crowd-anomaly", "other"]},
                "location": {"$ref": "#/definitions/v1.LocationRequest"},
                "origin_reference": {"type": "string", "maxLength": 255},
                "origin_type": {"type": "string", "enum": ["user-report", "sensor-detection"]},
                "severity": {"type": "number", "minimum": 0}
            }
        },
        "v1.StatsResponse": {
            "description": "DTO для ответа со статистикой",
            "type": "object",
            "properties": {
                "by_kind": {"type": "object", "additionalProperties": {"type": "integer"}},
                "by_status": {"type": "object", "additionalProperties": {"type": "integer"}},
                "open": {"type": "integer"},
                "total": {"type": "integer"}
            }
        },
        "v1.SubmitResponse": {
            "description": "DTO результата приема сигнала",
            "type": "object",
            "properties": {
                "duplicate": {"type": "boolean"},
                "incident": {"$ref": "#/definitions/v1.IncidentResponse"},
                "incident_id": {"type": "string"}
            }
        },
        "v1.SubsystemResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string"},
                "last_checked_at": {"type": "string"},
                "latency_ms": {"type": "integer"},
                "name": {"type": "string"},
                "reachable": {"type": "boolean"}
            }
        }
    },
    "securityDefinitions": {
        "ApiKeyAuth": {
            "type": "apiKey",
            "name": "X-API-Key",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Crowd Safety Engine API",
	Description:      "Incident coordination for mass-gathering crowd safety.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
