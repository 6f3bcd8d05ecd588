package log

// Field names shared across components.
const (
	FieldService   = "service"
	FieldComponent = "component"
	FieldRequestID = "request_id"
	FieldEvent     = "event"

	FieldVideoID  = "video_id"
	FieldFormatID = "format_id"
	FieldPath     = "path"
	FieldFilename = "filename"
	FieldOp       = "op"
	FieldDuration = "duration"
	FieldStatus   = "status"
	FieldMethod   = "method"
	FieldRemote   = "remote_addr"
	FieldBackend  = "backend"
)
