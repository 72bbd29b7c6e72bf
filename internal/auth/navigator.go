// ABOUTME: Navigator hands the provider consent URL to the user's browser
// ABOUTME: Uses the platform opener (xdg-open, open, rundll32)

package auth

import (
	"fmt"
	"os/exec"
	"runtime"
)

// Navigator leaves the local session for an external URL.
type Navigator interface {
	Open(url string) error
}

// BrowserNavigator opens URLs with the desktop's default browser.
type BrowserNavigator struct{}

func (BrowserNavigator) Open(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("open browser: %w", err)
	}
	go cmd.Wait()
	return nil
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(url string) error

func (f NavigatorFunc) Open(url string) error { return f(url) }
