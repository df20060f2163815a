package server

import "fmt"

// ANSI escapes for the DEV console: the route table at startup and the
// per-request line.
const (
	ansiRed     = "\033[31m"
	ansiGreen   = "\033[32m"
	ansiYellow  = "\033[33m"
	ansiBlue    = "\033[34m"
	ansiMagenta = "\033[35m"
	ansiCyan    = "\033[36m"
	ansiGray    = "\033[90m"
	ansiReset   = "\033[0m"
)

func methodColour(method string) string {
	switch method {
	case "GET":
		return ansiGreen
	case "POST":
		return ansiBlue
	case "PUT":
		return ansiCyan
	case "DELETE":
		return ansiYellow
	case "PATCH":
		return ansiMagenta
	}
	return ansiGray
}

// statusColour follows the status class: redirects stand out from pages because
// the session guard issues most of them.
func statusColour(status int) string {
	switch status / 100 {
	case 2:
		return ansiGreen
	case 3:
		return ansiCyan
	case 4:
		return ansiYellow
	case 5:
		return ansiRed
	}
	return ansiGray
}

func paint(colour, format string, args ...any) string {
	return colour + fmt.Sprintf(format, args...) + ansiReset
}
