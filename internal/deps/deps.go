// Package deps locates the external helpers redust hands work to and asks
// them for a version string when they support it.
package deps

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"
)

const probeTimeout = 5 * time.Second

// Helper names an executable from the [tools] config section.
type Helper struct {
	Name     string
	Command  string
	Optional bool
	// VersionArgs, when set, is run after a successful lookup and the first
	// line of stdout is reported as the version.
	VersionArgs []string
}

// Status is what a lookup found.
type Status struct {
	Name      string
	Command   string
	Path      string
	Version   string
	Optional  bool
	Available bool
	Detail    string
}

// Summary is a single human readable line for the doctor output.
func (s Status) Summary() string {
	if !s.Available {
		return s.Detail
	}
	if s.Version != "" {
		return fmt.Sprintf("%s (%s)", s.Path, s.Version)
	}
	return s.Path
}

// Locate resolves every helper. A helper with a blank command, a command
// missing from PATH, or a file without execute permission is unavailable.
func Locate(ctx context.Context, helpers []Helper) []Status {
	results := make([]Status, 0, len(helpers))
	for _, h := range helpers {
		results = append(results, locate(ctx, h))
	}
	return results
}

func locate(ctx context.Context, h Helper) Status {
	cmd := strings.TrimSpace(h.Command)
	status := Status{Name: h.Name, Command: cmd, Optional: h.Optional}
	if cmd == "" {
		status.Detail = "not configured"
		return status
	}
	path, err := exec.LookPath(cmd)
	if err != nil {
		if info, statErr := os.Stat(cmd); statErr == nil && !info.IsDir() && info.Mode().Perm()&0o111 == 0 {
			status.Detail = fmt.Sprintf("%s is not executable", cmd)
		} else {
			status.Detail = fmt.Sprintf("binary %q not found", cmd)
		}
		return status
	}
	status.Path = path
	status.Available = true
	if len(h.VersionArgs) > 0 {
		status.Version = probeVersion(ctx, path, h.VersionArgs)
	}
	return status
}

// probeVersion never fails the lookup; helpers without a version command
// simply report none.
func probeVersion(ctx context.Context, path string, args []string) string {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()
	out, err := exec.CommandContext(ctx, path, args...).Output()
	if err != nil {
		return ""
	}
	scanner := bufio.NewScanner(bytes.NewReader(out))
	if scanner.Scan() {
		return strings.TrimSpace(scanner.Text())
	}
	return ""
}
