package shared

import "fmt"

var (
	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")
	ErrUnknownProvider    = fmt.Errorf("unknown music provider")

	// Export pipeline errors
	//
	// ErrTransientSearch is scoped to a single entry; every other error in this group is fatal to the export.
	ErrAuthDenied       = fmt.Errorf("provider authorization denied")
	ErrAuthBackend      = fmt.Errorf("credential backend unavailable")
	ErrAuth             = fmt.Errorf("provider rejected credential")
	ErrTransientSearch  = fmt.Errorf("catalog search failed")
	ErrNoMatches        = fmt.Errorf("no tracks matched")
	ErrCreate           = fmt.Errorf("playlist creation failed")
	ErrCommit           = fmt.Errorf("adding tracks failed")
	ErrExportInProgress = fmt.Errorf("export already in progress")

	// API and persistence errors
	ErrAPIRequest      = fmt.Errorf("API request failed")
	ErrExportNotFound  = fmt.Errorf("export record not found")
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)
