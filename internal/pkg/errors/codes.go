package errors

import "net/http"

var (
	ErrRouteNotFound = New(
		"ROUTE_NOT_FOUND",
		"Route not found",
		http.StatusNotFound,
	)

	ErrInvalidCoordinates = New(
		"INVALID_COORDINATES",
		"Invalid coordinates provided",
		http.StatusBadRequest,
	)

	ErrEmptyRoute = New(
		"EMPTY_ROUTE",
		"Route must contain at least one point",
		http.StatusBadRequest,
	)

	ErrUnknownCategory = New(
		"UNKNOWN_CATEGORY",
		"Unknown POI category",
		http.StatusBadRequest,
	)

	ErrInvalidGPX = New(
		"INVALID_GPX",
		"Invalid GPX file",
		http.StatusBadRequest,
	)

	ErrEmptyFile = New(
		"EMPTY_FILE",
		"Uploaded file is empty",
		http.StatusBadRequest,
	)

	ErrFileTooLarge = New(
		"FILE_TOO_LARGE",
		"Uploaded file is too large",
		http.StatusRequestEntityTooLarge,
	)

	ErrInvalidFileType = New(
		"INVALID_FILE_TYPE",
		"Only GPX files are supported",
		http.StatusBadRequest,
	)

	ErrOriginalTrackUnavailable = New(
		"ORIGINAL_TRACK_UNAVAILABLE",
		"Original track is not available for this route",
		http.StatusBadRequest,
	)

	ErrExportFailed = New(
		"EXPORT_FAILED",
		"Failed to export route",
		http.StatusInternalServerError,
	)

	ErrCacheError = New(
		"CACHE_ERROR",
		"Cache operation failed",
		http.StatusInternalServerError,
	)

	ErrInvalidRequest = New(
		"INVALID_REQUEST",
		"Invalid request parameters",
		http.StatusBadRequest,
	)

	ErrInternalServer = New(
		"INTERNAL_SERVER_ERROR",
		"Internal server error",
		http.StatusInternalServerError,
	)
)
