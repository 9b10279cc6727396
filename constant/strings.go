package constant

type contextKey string

// Request context keys
const (
	RequestIDKey contextKey = "request_id"
)

// HTTP header names
const (
	HeaderRequestID          = "X-Request-ID"
	HeaderContentType        = "Content-Type"
	HeaderContentDisposition = "Content-Disposition"
	HeaderJobID              = "X-Job-ID"
	HeaderItemsSucceeded     = "X-Items-Succeeded"
	HeaderItemsSkipped       = "X-Items-Skipped"
)

// Content types
const (
	ContentTypeJSON = "application/json"
	ContentTypePNG  = "image/png"
	ContentTypeJPEG = "image/jpeg"
	ContentTypeSVG  = "image/svg+xml"
	ContentTypeZip  = "application/zip"
)

// Function/Context names
const (
	// Domain context names
	CtxDomain       = "domain"
	CtxStore        = "StyleStore"
	CtxPreview      = "Preview"
	CtxExportSingle = "ExportSingle"
	CtxExportBulk   = "ExportBulk"
	CtxSession      = "Session"

	// Infrastructure context names
	CtxDB         = "db"
	CtxRecordJob  = "RecordJob"
	CtxListJobs   = "ListJobs"
	CtxClose      = "Close"
	CtxRender     = "Render"
	CtxRasterize  = "Rasterize"
	CtxComposite  = "Composite"
	CtxArchive    = "Archive"
	CtxAPI        = "api"
	CtxNotify     = "Notify"
	CtxTerminal   = "Terminal"
	CtxGlyphCache = "GlyphCache"

	// API handler context names
	CtxRouter        = "Router"
	CtxMain          = "Main"
	CtxCLI           = "CLI"
	CtxGetSession    = "GetSession"
	CtxUpdateDraft   = "UpdateDraft"
	CtxApplyDraft    = "ApplyDraft"
	CtxSetMode       = "SetMode"
	CtxSetInput      = "SetInput"
	CtxDownload      = "Download"
	CtxCreateQRCode  = "CreateQRCode"
	CtxCreateZip     = "CreateZip"
	CtxNotifications = "Notifications"
	CtxCloseSession  = "CloseSession"
	CtxGetPreview    = "GetPreview"
	CtxGetJobs       = "GetJobs"
	CtxGetStats      = "GetStats"
)

// Data field keys
const (
	// Domain data fields
	DataService   = "service"
	DataValue     = "value"
	DataIndex     = "index"
	DataCount     = "count"
	DataSucceeded = "succeeded"
	DataSkipped   = "skipped"
	DataJobID     = "job_id"
	DataState     = "state"
	DataMode      = "mode"
	DataFormat    = "format"
	DataLevel     = "level"
	DataPixelSize = "pixel_size"
	DataPadding   = "padding"
	DataFilename  = "filename"
	DataKind      = "kind"
	DataCacheHit  = "cache_hit"
	DataSessionID = "session_id"
	DataEntries   = "entries"
	DataFrom      = "from"
	DataTo        = "to"
	DataModules   = "modules"
	DataAge       = "age"

	// Database data fields
	DataPath         = "path"
	DataElapsed      = "elapsed"
	DataRows         = "rows"
	DataSQL          = "sql"
	DataData         = "data"
	DataRowsAffected = "rows_affected"
	DataLimit        = "limit"

	// API data fields
	DataMethod      = "method"
	DataStatus      = "status"
	DataLatency     = "latency"
	DataSize        = "size"
	DataRemoteAddr  = "remote_addr"
	DataUserAgent   = "user_agent"
	DataPort        = "port"
	DataDBPath      = "db_path"
	DataEnvironment = "environment"
	DataOutput      = "output"
)

// Error message constants
const (
	ErrNoInputs           = "no inputs to export"
	ErrJobInFlight        = "an export job is already running"
	ErrSessionNotFound    = "session not found"
	ErrInvalidMode        = "invalid mode"
	ErrUnsupportedDataURI = "unsupported data URI"
	ErrInvalidColor       = "invalid color"
	ErrArchiveSerialized  = "archive already serialized"
	ErrEmptyGlyph         = "rendered glyph is empty"
	ErrInvalidTransition  = "invalid job state transition"
	ErrSymbolTooDense     = "QR symbol has more modules than pixels"
)

// Error types
const (
	ErrTypeDomain = "domain"
	ErrTypeAPI    = "api"
	ErrTypeApp    = "application"
)

// API routes
const (
	RouteSessions      = "/api/sessions"
	RouteSession       = "/api/sessions/{sessionID}"
	RouteDraft         = "/api/sessions/{sessionID}/draft"
	RouteApply         = "/api/sessions/{sessionID}/apply"
	RouteMode          = "/api/sessions/{sessionID}/mode"
	RouteInput         = "/api/sessions/{sessionID}/input"
	RoutePreview       = "/api/sessions/{sessionID}/preview"
	RouteDownload      = "/api/sessions/{sessionID}/download"
	RouteNotifications = "/api/sessions/{sessionID}/notifications"
	RouteQRCodes       = "/api/qrcodes"
	RouteQRCodesZip    = "/api/qrcodes/zip"
	RouteJobs          = "/api/jobs"
	RouteStats         = "/api/stats"
	RouteHealthcheck   = "/health"
)

// AuthRealm is the basic auth realm of the admin routes
const AuthRealm = "qrstudio"

// Log keys
const (
	LogTimeKey         = "time"
	LogLevelKey        = "level"
	LogNameKey         = "logger"
	LogCallerKey       = "caller"
	LogMessageKey      = "msg"
	LogStacktraceKey   = "stacktrace"
	LogRequestIDKey    = "request_id"
	LogFunctionKey     = "function"
	LogErrorCodeKey    = "error_code"
	LogErrorTypeKey    = "error_type"
	LogErrorMessageKey = "error_message"
	LogEncodingJSON    = "json"
	LogEncodingConsole = "console"
	LogOutputStderr    = "stderr"
)

// Message constants for application
const (
	MsgApplicationStarting = "Application starting"
	MsgFailedToInitDB      = "Failed to initialize database"
	MsgServerStarting      = "Server starting"
	MsgServerFailedToStart = "Server failed to start"
	MsgServerShuttingDown  = "Server shutting down"
	MsgServerShutdownError = "Error during server shutdown"
	MsgServerStopped       = "Server stopped"
	MsgRequestReceived     = "Request received"
	MsgRequestCompleted    = "Request completed"
	MsgSettingUpRoutes     = "Setting up API routes"
	MsgHealthcheckRequest  = "Handling healthcheck request"
	MsgHealthy             = "Healthy"
)

// User-facing notification texts
const (
	NoteNoCodesTitle        = "No QR Codes"
	NoteNoCodesBody         = "Please enter some data to generate QR codes."
	NoteZippingTitle        = "Zipping it up!"
	NoteZippingBody         = "Preparing %d QR codes for download..."
	NoteZipDoneTitle        = "Download complete!"
	NoteZipDoneBody         = "Your ZIP file has been downloaded."
	NoteZipFailedTitle      = "Uh oh! Something went wrong."
	NoteZipFailedBody       = "Could not generate ZIP file. Please try again."
	NoteRenderFailedTitle   = "Error"
	NoteRenderFailedBody    = "Could not generate QR code for download."
	NoteChangesAppliedTitle = "Changes Applied"
	NoteChangesAppliedBody  = "Your QR code has been updated with the new style."
)

// Download file names
const (
	SingleFileBase = "qrcode"
	BulkEntryBase  = "qrcode"
	BulkFileName   = "qrcodes.zip"
	DataURIPrefix  = "data:"
	DataURIBase64  = ";base64,"
)

// Cache namespaces
const (
	GlyphNamespace   = "GLYPH"
	SessionNamespace = "SESSION"
)

// Cache names reported by the stats route
const (
	CacheGlyphs   = "glyphs"
	CacheSessions = "sessions"
)
