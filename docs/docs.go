// Package docs is generated by swaggo/swag from the handler annotations.
// Regenerate with: swag init -g cmd/api/main.go -o docs
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {
            "name": "API Support"
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
        "/api/v1/acquisitions": {
            "post": {
                "description": "Publishes the job to the acquisition stream. Results appear on the POI result stream under the returned request id.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["POI"],
                "summary": "Queue a background POI acquisition",
                "parameters": [
                    {
                        "description": "Route points and settings",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/dto.AcquireRouteRequest"}
                    }
                ],
                "responses": {
                    "202": {"description": "Accepted", "schema": {"$ref": "#/definitions/dto.AcquireRouteResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/utils.ErrorResponse"}}
                }
            }
        },
        "/api/v1/categories": {
            "get": {
                "produces": ["application/json"],
                "tags": ["POI"],
                "summary": "List POI categories",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {"type": "array", "items": {"$ref": "#/definitions/dto.CategoryResponse"}}
                    }
                }
            }
        },
        "/api/v1/health": {
            "get": {
                "produces": ["application/json"],
                "tags": ["System"],
                "summary": "Service health",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.HealthResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/dto.HealthResponse"}}
                }
            }
        },
        "/api/v1/routes": {
            "post": {
                "description": "Parses the track, registers it as a route and returns its coordinates with the elevation profile.",
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["Routes"],
                "summary": "Upload a GPX track",
                "parameters": [
                    {"type": "file", "description": "GPX file", "name": "file", "in": "formData", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.UploadRouteResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/utils.ErrorResponse"}},
                    "413": {"description": "Request Entity Too Large", "schema": {"$ref": "#/definitions/utils.ErrorResponse"}}
                }
            }
        },
        "/api/v1/routes/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Routes"],
                "summary": "Get a registered route",
                "parameters": [
                    {"type": "string", "description": "Route ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.RouteResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/utils.ErrorResponse"}}
                }
            }
        },
        "/api/v1/routes/{id}/pois": {
            "get": {
                "description": "Queries every requested category in turn and streams progress, per-category batches and the merged result as Server-Sent Events.",
                "produces": ["text/event-stream"],
                "tags": ["POI"],
                "summary": "Stream POIs along a route",
                "parameters": [
                    {"type": "string", "description": "Route ID", "name": "id", "in": "path", "required": true},
                    {"type": "number", "default": 1, "description": "Maximum distance from the route in km", "name": "max_distance_km", "in": "query"},
                    {"type": "number", "default": 1, "description": "Deduplication radius in km", "name": "deduplication_radius_km", "in": "query"},
                    {"type": "array", "items": {"type": "string"}, "collectionFormat": "multi", "description": "Categories to query, repeated or comma separated", "name": "poi_types", "in": "query"},
                    {"type": "string", "description": "Per-category settings as JSON", "name": "poi_settings_json", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.CompleteEvent"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/utils.ErrorResponse"}}
                }
            }
        },
        "/api/v1/routes/{id}/export/{format}": {
            "post": {
                "description": "Builds a GPX, KML or GeoJSON file from the route and the starred POIs.",
                "consumes": ["application/json"],
                "produces": ["application/gpx+xml", "application/vnd.google-earth.kml+xml", "application/geo+json"],
                "tags": ["Export"],
                "summary": "Export a route with starred POIs",
                "parameters": [
                    {"type": "string", "description": "Route ID", "name": "id", "in": "path", "required": true},
                    {"enum": ["gpx", "kml", "geojson"], "type": "string", "description": "Export format", "name": "format", "in": "path", "required": true},
                    {
                        "description": "Starred POIs",
                        "name": "pois",
                        "in": "body",
                        "required": true,
                        "schema": {"type": "array", "items": {"$ref": "#/definitions/dto.StarredPOI"}}
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "file"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/utils.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/utils.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "domain.Coordinate": {
            "type": "object",
            "properties": {
                "lat": {"type": "number"},
                "lon": {"type": "number"}
            }
        },
        "dto.AcquireRouteRequest": {
            "type": "object",
            "required": ["points"],
            "properties": {
                "points": {"type": "array", "items": {"$ref": "#/definitions/domain.Coordinate"}},
                "categories": {"type": "array", "items": {"type": "string"}},
                "max_distance_km": {"type": "number"},
                "dedup_radius_km": {"type": "number"},
                "settings": {"type": "object", "additionalProperties": {"type": "object"}}
            }
        },
        "dto.AcquireRouteResponse": {
            "type": "object",
            "properties": {
                "request_id": {"type": "string"},
                "stream": {"type": "string"}
            }
        },
        "dto.CategoryResponse": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "display_name": {"type": "string"},
                "label": {"type": "string"},
                "default_name": {"type": "string"},
                "deduplicate": {"type": "boolean"}
            }
        },
        "dto.CompleteEvent": {
            "type": "object",
            "properties": {
                "type": {"type": "string"},
                "markers": {"type": "array", "items": {"type": "object"}},
                "table": {"type": "array", "items": {"type": "object"}}
            }
        },
        "dto.HealthResponse": {
            "type": "object",
            "properties": {
                "status": {"type": "string"},
                "time": {"type": "string"},
                "checks": {"type": "object", "additionalProperties": {"type": "string"}}
            }
        },
        "dto.RouteResponse": {
            "type": "object",
            "properties": {
                "route_id": {"type": "string"},
                "filename": {"type": "string"},
                "coordinates": {"type": "array", "items": {"$ref": "#/definitions/domain.Coordinate"}},
                "total_distance": {"type": "number"},
                "has_track": {"type": "boolean"},
                "created_at": {"type": "string"}
            }
        },
        "dto.StarredPOI": {
            "type": "object",
            "properties": {
                "lat": {"type": "number"},
                "lon": {"type": "number"},
                "name": {"type": "string"},
                "poi_type": {"type": "string"},
                "opening_hours": {"type": "string"},
                "url": {"type": "string"},
                "google_maps_link": {"type": "string"},
                "price_range": {"type": "string"},
                "brand": {"type": "string"},
                "operator": {"type": "string"},
                "distance_on_route": {"type": "number"},
                "distance_to_route": {"type": "number"},
                "distance": {"type": "string"},
                "deviation": {"type": "string"}
            }
        },
        "dto.UploadRouteResponse": {
            "type": "object",
            "properties": {
                "route_id": {"type": "string"},
                "filename": {"type": "string"},
                "coordinates": {"type": "array", "items": {"$ref": "#/definitions/domain.Coordinate"}},
                "elevation_profile": {"type": "array", "items": {"type": "object"}},
                "total_distance": {"type": "number"}
            }
        },
        "utils.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {
                    "type": "object",
                    "properties": {
                        "code": {"type": "string"},
                        "message": {"type": "string"},
                        "details": {"type": "object"}
                    }
                }
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{"http", "https"},
	Title:            "MapAhead Service API",
	Description:      "Finds points of interest along uploaded GPX routes and exports routes with starred POIs.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
