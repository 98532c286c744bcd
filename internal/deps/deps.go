// Package deps reports the availability of the external tools animmuf
// shells out to.
package deps

import (
	"fmt"
	"os"
	"os/exec"
	"strings"

	"animmuf/internal/config"
)

// Requirement defines an external dependency animmuf relies on.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status reports the availability of a dependency.
type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	Detail      string
}

// Default returns the requirement list for the given configuration.
func Default(cfg *config.Config) []Requirement {
	reqs := []Requirement{
		{
			Name:        "FFmpeg",
			Command:     cfg.Render.FFmpegBinary,
			Description: "renders the frame sequence into the published animation",
		},
	}
	if cfg.Frames.FontPath != "" {
		reqs = append(reqs, Requirement{
			Name:        "Caption font",
			Command:     cfg.Frames.FontPath,
			Description: "TTF/OTF face used for the frame caption",
			Optional:    true,
		})
	}
	return reqs
}

// CheckBinaries evaluates the provided requirements and reports availability.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		cmd := strings.TrimSpace(req.Command)
		status := Status{
			Name:        req.Name,
			Command:     cmd,
			Description: strings.TrimSpace(req.Description),
			Optional:    req.Optional,
		}
		if cmd == "" {
			status.Detail = "command not configured"
			results = append(results, status)
			continue
		}
		if strings.Contains(cmd, string(os.PathSeparator)) {
			if _, err := os.Stat(cmd); err != nil {
				status.Detail = fmt.Sprintf("file %q not found", cmd)
				results = append(results, status)
				continue
			}
		} else if _, err := exec.LookPath(cmd); err != nil {
			status.Detail = fmt.Sprintf("binary %q not found", cmd)
			results = append(results, status)
			continue
		}
		status.Available = true
		results = append(results, status)
	}
	return results
}
