package domain

import "errors"

var (
	// ErrProductNotFound is returned when a product cannot be found in the catalog
	ErrProductNotFound = errors.New("product not found in catalog")

	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")

	// ErrBackendUnavailable is returned when the catalog backend cannot be reached
	ErrBackendUnavailable = errors.New("catalog backend unreachable")

	// ErrBackendTimeout is returned when a backend request exceeds its deadline
	ErrBackendTimeout = errors.New("catalog backend request timed out")

	// ErrBackendFailure is returned when the catalog backend responds with an error status
	ErrBackendFailure = errors.New("catalog backend request failed")

	// ErrNoFiles is returned when an extraction is attempted without any files
	ErrNoFiles = errors.New("no files selected")

	// ErrTooManyFiles is returned when the batch exceeds the configured image limit
	ErrTooManyFiles = errors.New("too many images in batch")

	// ErrUnsupportedFileType is returned for files outside the allowed image types
	ErrUnsupportedFileType = errors.New("unsupported file type")

	// ErrFileTooLarge is returned when a file exceeds the configured size limit
	ErrFileTooLarge = errors.New("file exceeds maximum size")

	// ErrSessionNotFound is returned when an import session id is unknown or expired
	ErrSessionNotFound = errors.New("import session not found")

	// ErrNoBatch is returned when an operation requires extraction results that do not exist yet
	ErrNoBatch = errors.New("no extraction result available")

	// ErrNothingToCreate is returned when bulk create is requested with zero eligible items
	ErrNothingToCreate = errors.New("no products selected for creation")
)
