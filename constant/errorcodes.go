package constant

// Domain service error codes
const (
	// Export pipeline - Validation errors (1xx)
	ErrCodeNoInputs          = "EXP101"
	ErrCodeJobInFlight       = "EXP102"
	ErrCodeInvalidTransition = "EXP103"

	// Export pipeline - Render errors (2xx)
	ErrCodeRender         = "EXP201"
	ErrCodeRasterize      = "EXP202"
	ErrCodeComposite      = "EXP203"
	ErrCodeEncode         = "EXP204"
	ErrCodeItemSkipped    = "EXP205"
	ErrCodeGlyphUnusable  = "EXP206"
	ErrCodeSymbolTooDense = "EXP207"

	// Export pipeline - Archive errors (3xx)
	ErrCodeArchiveEntry     = "EXP301"
	ErrCodeArchiveSerialize = "EXP302"

	// Export pipeline - History errors (4xx)
	ErrCodeRecordJob = "EXP401"

	// Session errors
	ErrCodeSessionNotFound = "SES001"
)

// Database error codes
const (
	// General DB errors (5xx)
	ErrCodeDBGeneral = "DB500"

	// Connection errors (0xx)
	ErrCodeDBOpen    = "DB001"
	ErrCodeDBMigrate = "DB002"

	// Job history errors (1xx)
	ErrCodeDBInsert = "DB101"
	ErrCodeDBList   = "DB201"

	// Close operation errors (4xx)
	ErrCodeDBClose = "DB401"
)

// API and application error codes
const (
	ErrCodeAPIDecodeRequest  = "API001"
	ErrCodeAPIServiceError   = "API002"
	ErrCodeAPINotFound       = "API003"
	ErrCodeAPIConflict       = "API004"
	ErrCodeAPIValidation     = "API005"
	ErrCodeAppDBInit         = "APP001"
	ErrCodeAppServerStart    = "APP002"
	ErrCodeAppServerShutdown = "APP003"
	ErrCodeAppOutput         = "APP004"
)

// Error types for categorization
const (
	ErrTypeValidation = "validation"
	ErrTypeRender     = "render"
	ErrTypeArchive    = "archive"
	ErrTypeStorage    = "storage"

	// Infrastructure error types
	ErrTypeDB = "db"
)
