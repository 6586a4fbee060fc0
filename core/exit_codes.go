package core

// Exit codes for the application.
//
// Input problems (bad path, no PDFs, wrong argument count) print a message
// and still exit with ExitCodeSuccess, as the tool always has.
const (
	// ExitCodeSuccess indicates a normal exit (exit code 0)
	ExitCodeSuccess = 0

	// ExitCodeError indicates a failure the user must fix, such as an
	// unreadable config file or an unwritable report directory (exit code 1)
	ExitCodeError = 1

	// ExitCodeSIGINT indicates termination due to SIGINT (Ctrl+C)
	// Convention: 128 + 2 (SIGINT) = 130
	ExitCodeSIGINT = 130
)

// ExitCodeName returns a human-readable name for an exit code.
func ExitCodeName(code int) string {
	switch code {
	case ExitCodeSuccess:
		return "success"
	case ExitCodeError:
		return "error"
	case ExitCodeSIGINT:
		return "interrupted (SIGINT)"
	default:
		return "unknown"
	}
}
