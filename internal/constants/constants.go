package constants

import "time"

// File and directory permissions.
const (
	// ConfigDirPerm is the permission for configuration directories.
	ConfigDirPerm = 0750

	// ConfigFilePerm is the permission for configuration files.
	ConfigFilePerm = 0600
)

// HTTP and network defaults.
const (
	// DefaultHTTPTimeout is the default timeout for HTTP requests.
	DefaultHTTPTimeout = 30 * time.Second

	// DefaultRetryWaitMin is the minimum wait between retries.
	DefaultRetryWaitMin = 1 * time.Second

	// DefaultRetryWaitMax is the maximum wait between retries.
	DefaultRetryWaitMax = 10 * time.Second
)

// API defaults.
const (
	// DefaultAPIPrefix is the mount path content routes live under.
	DefaultAPIPrefix = "/api"

	// LoginPath is the users-permissions local login route, relative to
	// the API prefix.
	LoginPath = "/auth/local"

	// ContentTypeUIDPrefix prefixes derived content-type uids.
	ContentTypeUIDPrefix = "api::"
)

// Display and output limits.
const (
	// MaxTableCellWidth truncates long values in table output.
	MaxTableCellWidth = 60

	// JSONIndent is the indentation used for JSON output.
	JSONIndent = "  "
)
