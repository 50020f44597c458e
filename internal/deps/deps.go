package deps

import (
	"os/exec"
	"strings"
)

// Tool describes an external program aulavoz shells out to.
type Tool struct {
	Name        string
	VersionFlag string
	Purpose     string
	Required    bool
}

// Status represents the installation status of a tool
type Status struct {
	Tool      Tool
	Installed bool
	Path      string
	Version   string
}

// Tools lists the helpers used by the recorder and the desktop notifier.
var Tools = []Tool{
	{Name: "pw-record", VersionFlag: "--version", Purpose: "microphone capture", Required: true},
	{Name: "notify-send", VersionFlag: "--version", Purpose: "desktop notifications"},
}

var lookPath = exec.LookPath

var versionOf = func(path, flag string) (string, error) {
	out, err := exec.Command(path, flag).Output()
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// Check looks t up on PATH and reads the first line of its version output.
func Check(t Tool) Status {
	path, err := lookPath(t.Name)
	if err != nil {
		return Status{Tool: t}
	}

	status := Status{Tool: t, Installed: true, Path: path}
	if t.VersionFlag == "" {
		return status
	}
	if out, err := versionOf(path, t.VersionFlag); err == nil {
		first, _, _ := strings.Cut(out, "\n")
		status.Version = strings.TrimSpace(first)
	}
	return status
}

// CheckAll checks every entry of Tools in order.
func CheckAll() []Status {
	statuses := make([]Status, 0, len(Tools))
	for _, t := range Tools {
		statuses = append(statuses, Check(t))
	}
	return statuses
}

// Missing reports the required tools that are not installed.
func Missing(statuses []Status) []string {
	var names []string
	for _, s := range statuses {
		if s.Tool.Required && !s.Installed {
			names = append(names, s.Tool.Name)
		}
	}
	return names
}
