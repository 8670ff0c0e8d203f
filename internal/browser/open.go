// Package browser opens URLs in the user's browser.
package browser

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"
)

// Open opens the specified URL in the user's default browser. A non-empty
// BROWSER environment variable names the command to use instead.
func Open(url string) error {
	name, args, err := command(runtime.GOOS, os.Getenv("BROWSER"), url)
	if err != nil {
		return err
	}
	return exec.Command(name, args...).Start()
}

func command(goos, override, url string) (string, []string, error) {
	if fields := strings.Fields(override); len(fields) > 0 {
		return fields[0], append(fields[1:], url), nil
	}
	switch goos {
	case "darwin":
		return "open", []string{url}, nil
	case "linux", "freebsd", "openbsd", "netbsd":
		return "xdg-open", []string{url}, nil
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler", url}, nil
	default:
		return "", nil, fmt.Errorf("unsupported OS: %s", goos)
	}
}
