package errors

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
	DocURL   string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Upload Errors (E001-E019)
	// ============================================

	"E001": {
		Category: CategoryUpload,
		Message:  "Please upload a file!",
		Detail:   "An upload was triggered before any file was selected in the drop zone.",
		DocURL:   "https://clouddrop.dev/docs/errors/E001",
	},
	"E002": {
		Category: CategoryUpload,
		Message:  "Failed to upload file. Please try again.",
		Detail:   "The remote API could not be reached or answered with a non-2xx status.",
		DocURL:   "https://clouddrop.dev/docs/errors/E002",
	},
	"E003": {
		Category: CategoryUpload,
		Message:  "Upload already in progress",
		Detail:   "Only one upload may be in flight per widget. Wait for the current one to finish.",
		DocURL:   "https://clouddrop.dev/docs/errors/E003",
	},
	"E004": {
		Category: CategoryUpload,
		Message:  "Upload response has no url",
		Detail:   "The remote API answered 2xx but the JSON body did not contain a string \"url\" field.",
		DocURL:   "https://clouddrop.dev/docs/errors/E004",
	},

	// ============================================
	// Clipboard Errors (E020-E029)
	// ============================================

	"E020": {
		Category: CategoryClipboard,
		Message:  "Clipboard write denied",
		Detail:   "The clipboard refused the write. Browsers require a secure context and user permission.",
		DocURL:   "https://clouddrop.dev/docs/errors/E020",
	},
	"E021": {
		Category: CategoryClipboard,
		Message:  "Nothing to copy",
		Detail:   "Copy was requested before an upload succeeded.",
		DocURL:   "https://clouddrop.dev/docs/errors/E021",
	},

	// ============================================
	// Intake Errors (E040-E059)
	// ============================================

	"E040": {
		Category: CategoryIntake,
		Message:  "File type not accepted",
		Detail:   "Only images (png, jpg, jpeg, gif), PDF and Word documents (doc, docx) can be uploaded.",
		DocURL:   "https://clouddrop.dev/docs/errors/E040",
	},
	"E041": {
		Category: CategoryIntake,
		Message:  "File too large",
		Detail:   "The file exceeds the configured maximum size.",
		DocURL:   "https://clouddrop.dev/docs/errors/E041",
	},
	"E042": {
		Category: CategoryIntake,
		Message:  "Staged file not found",
		Detail:   "The staged file expired or was already released.",
		DocURL:   "https://clouddrop.dev/docs/errors/E042",
	},

	// ============================================
	// Session Errors (E060-E079)
	// ============================================

	"E060": {
		Category: CategorySession,
		Message:  "Session not found",
		Detail:   "The session ID is invalid or the session has been closed.",
		DocURL:   "https://clouddrop.dev/docs/errors/E060",
	},
	"E061": {
		Category: CategorySession,
		Message:  "Session closed",
		Detail:   "The browser disconnected before the operation completed.",
		DocURL:   "https://clouddrop.dev/docs/errors/E061",
	},

	// ============================================
	// Config Errors (E120-E149)
	// ============================================

	"E120": {
		Category: CategoryConfig,
		Message:  "Invalid configuration",
		Detail:   "The clouddrop.json configuration file contains invalid values.",
		DocURL:   "https://clouddrop.dev/docs/errors/E120",
	},
	"E122": {
		Category: CategoryConfig,
		Message:  "Invalid port",
		Detail:   "The configured port is out of range.",
		DocURL:   "https://clouddrop.dev/docs/errors/E122",
	},
	"E123": {
		Category: CategoryConfig,
		Message:  "Invalid staging driver",
		Detail:   "staging.driver must be \"disk\" or \"s3\".",
		DocURL:   "https://clouddrop.dev/docs/errors/E123",
	},
	"E141": {
		Category: CategoryConfig,
		Message:  "Config file not found",
		Detail:   "No clouddrop.json found.",
		DocURL:   "https://clouddrop.dev/docs/errors/E141",
	},

	// ============================================
	// CLI Errors (E160-E179)
	// ============================================

	"E160": {
		Category: CategoryCLI,
		Message:  "Cannot open file",
		Detail:   "The file given to 'clouddrop upload' could not be opened.",
		DocURL:   "https://clouddrop.dev/docs/errors/E160",
	},
}

// GetAllCodes returns all registered error codes.
func GetAllCodes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	return codes
}

// GetTemplate returns the template for an error code.
func GetTemplate(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}
