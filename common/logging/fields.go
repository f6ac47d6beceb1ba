package logging

import "log/slog"

// Common field names for consistent logging across services.
const (
	FieldService   = "service"
	FieldBatchID   = "batch_id"
	FieldEventID   = "event_id"
	FieldStage     = "stage"
	FieldCount     = "count"
	FieldS3Key     = "s3_key"
	FieldError     = "error"
	FieldDuration  = "duration_ms"
	FieldErrorType = "error_type"
)

// Service returns a slog attribute for the service name.
func Service(name string) slog.Attr {
	return slog.String(FieldService, name)
}

// BatchID returns a slog attribute for the batch ID.
func BatchID(id string) slog.Attr {
	return slog.String(FieldBatchID, id)
}

// EventID returns a slog attribute for an event ID.
func EventID(id string) slog.Attr {
	return slog.String(FieldEventID, id)
}

// Stage returns a slog attribute for the pipeline stage name.
func Stage(name string) slog.Attr {
	return slog.String(FieldStage, name)
}

// Count returns a slog attribute for a record count.
func Count(n int) slog.Attr {
	return slog.Int(FieldCount, n)
}

// S3Key returns a slog attribute for an object storage key.
func S3Key(key string) slog.Attr {
	return slog.String(FieldS3Key, key)
}

// Error returns a slog attribute for an error.
func Error(err error) slog.Attr {
	return slog.String(FieldError, err.Error())
}

// Duration returns a slog attribute for duration in milliseconds.
func Duration(ms int64) slog.Attr {
	return slog.Int64(FieldDuration, ms)
}

// ErrorType returns a slog attribute for a validation error class.
func ErrorType(kind string) slog.Attr {
	return slog.String(FieldErrorType, kind)
}
