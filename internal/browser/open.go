// Package browser opens URLs (block-explorer pages, docs links) in the
// user's default browser.
package browser

import (
	"fmt"
	"os/exec"
	"runtime"
)

// Open launches the default browser on the given URL. The command is started,
// not waited on; the TUI keeps the terminal.
func Open(url string) error {
	switch runtime.GOOS {
	case "darwin":
		return exec.Command("open", url).Start()
	case "linux":
		return exec.Command("xdg-open", url).Start()
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", url).Start()
	default:
		return fmt.Errorf("unsupported OS: %s", runtime.GOOS)
	}
}
