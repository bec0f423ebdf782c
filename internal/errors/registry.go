package errors

import "sort"

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Config Errors (E101-E199)
	// ============================================

	"E101": {
		Category: CategoryConfig,
		Message:  "Configuration file not found",
		Detail:   "No atomdemo.json, atomdemo.yaml or atomdemo.yml was found.",
	},
	"E102": {
		Category: CategoryConfig,
		Message:  "Invalid configuration file",
		Detail:   "The configuration file could not be read or parsed.",
	},
	"E103": {
		Category: CategoryConfig,
		Message:  "Invalid server port",
	},
	"E104": {
		Category: CategoryConfig,
		Message:  "Invalid duration",
		Detail:   "Durations use Go syntax, for example 10s or 1m30s.",
	},
	"E105": {
		Category: CategoryConfig,
		Message:  "Invalid log setting",
	},
	"E106": {
		Category: CategoryConfig,
		Message:  "Invalid field count",
		Detail:   "form.fields must be greater than zero.",
	},

	// ============================================
	// Protocol Errors (E201-E299)
	// ============================================

	"E201": {
		Category: CategoryProtocol,
		Message:  "Invalid event frame",
		Detail:   "The live session received a message that is not a valid event.",
	},
	"E202": {
		Category: CategoryValidation,
		Message:  "Unknown event target",
		Detail:   "No mounted input has this id. The view may have re-rendered.",
	},
	"E203": {
		Category: CategoryProtocol,
		Message:  "WebSocket upgrade failed",
	},
	"E204": {
		Category: CategoryRuntime,
		Message:  "Event loop stopped",
		Detail:   "The server is shutting down and no longer accepts edits.",
	},

	// ============================================
	// Validation Errors (E301-E399)
	// ============================================

	"E301": {
		Category: CategoryValidation,
		Message:  "Field index out of range",
	},
	"E302": {
		Category: CategoryValidation,
		Message:  "Unknown field side",
		Detail:   "A field side is either \"first\" or \"last\".",
	},
	"E303": {
		Category: CategoryValidation,
		Message:  "Invalid request body",
	},
}

// GetAllCodes returns all registered error codes.
func GetAllCodes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// GetTemplate returns the template for an error code.
func GetTemplate(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}
