package action

import (
	"log/slog"

	"github.com/sethvargo/go-githubactions"
)

// Outputs writes step outputs to the file named by GITHUB_OUTPUT.
type Outputs struct {
	gha  *githubactions.Action
	path string
}

// NewOutputs returns an Outputs writing to path. An empty path disables
// outputs, which is the case outside of GitHub Actions.
func NewOutputs(path string) *Outputs {
	return &Outputs{
		path: path,
		gha: githubactions.New(githubactions.WithGetenv(func(key string) string {
			if key == "GITHUB_OUTPUT" {
				return path
			}
			return ""
		})),
	}
}

// Set records a step output.
func (o *Outputs) Set(name, value string) {
	if o == nil || o.path == "" {
		slog.Debug("No output file configured, skipping step output", "component", "action", "name", name)
		return
	}
	o.gha.SetOutput(name, value)
}
