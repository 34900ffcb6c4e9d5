// Copyright (C) 2026 Tanager ML (oss@tanagerml.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package tui

import (
	"fmt"
	"os/exec"
	"runtime"
)

// openURL hands a URL to the platform opener (or an explicit override), so
// audio previews play in whatever the user's system associates with the
// stream. The process is started and left alone; playback errors are the
// player's to report.
func openURL(opener, url string) error {
	if opener == "" {
		switch runtime.GOOS {
		case "darwin":
			opener = "open"
		case "windows":
			opener = "rundll32"
		default:
			opener = "xdg-open"
		}
	}

	var cmd *exec.Cmd
	if opener == "rundll32" {
		cmd = exec.Command(opener, "url.dll,FileProtocolHandler", url)
	} else {
		cmd = exec.Command(opener, url)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", opener, err)
	}
	// Reap the opener in the background so it never zombifies.
	go func() { _ = cmd.Wait() }()
	return nil
}
