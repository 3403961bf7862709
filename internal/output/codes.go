// Package output provides JSON/terminal output formatting and error handling.
package output

// Exit codes for the CLI.
const (
	ExitOK            = 0 // Success
	ExitUsage         = 1 // Invalid arguments or configuration
	ExitTokenNotFound = 2 // No stored token for requested character
	ExitAuth          = 3 // Bad, expired, or revoked credentials
	ExitCallback      = 4 // OAuth callback state mismatch or malformed callback
	ExitRateLimit     = 5 // ESI throttling (420/429)
	ExitServer        = 6 // Upstream 5xx
	ExitNetwork       = 7 // Connection/DNS error
	ExitAPI           = 8 // Other 4xx or timeout
)

// Error codes for the JSON envelope.
const (
	CodeUsage         = "usage"
	CodeTokenNotFound = "token_not_found"
	CodeAuth          = "auth_required"
	CodeCallback      = "callback"
	CodeRateLimit     = "rate_limit"
	CodeServer        = "server_error"
	CodeNetwork       = "network"
	CodeAPI           = "api_error"
)

// ExitCodeFor returns the exit code for a given error code.
func ExitCodeFor(code string) int {
	switch code {
	case CodeUsage:
		return ExitUsage
	case CodeTokenNotFound:
		return ExitTokenNotFound
	case CodeAuth:
		return ExitAuth
	case CodeCallback:
		return ExitCallback
	case CodeRateLimit:
		return ExitRateLimit
	case CodeServer:
		return ExitServer
	case CodeNetwork:
		return ExitNetwork
	case CodeAPI:
		return ExitAPI
	default:
		return ExitAPI
	}
}
