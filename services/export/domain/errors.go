package domain

import "errors"

// Sentinel errors for the export domain. Use errors.Is() to check these.
var (
	// ErrExportNotFound indicates the export does not exist or belongs to another company.
	ErrExportNotFound = errors.New("export not found")

	// ErrInvalidExport indicates the export request violates domain constraints.
	ErrInvalidExport = errors.New("invalid export")

	// ErrExportNotReady is returned when downloading an export that is pending or failed.
	ErrExportNotReady = errors.New("export is not ready")

	// ErrExportFileMissing is returned when a ready export has no file in storage.
	ErrExportFileMissing = errors.New("export file missing")
)
