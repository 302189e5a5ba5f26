package plugin

import (
	"fmt"
	"os/exec"
	"strings"

	"gopkg.in/yaml.v3"
)

// RequirementKind names what a requirement refers to.
type RequirementKind string

const (
	// RequirementExe is an executable that must be on PATH.
	RequirementExe RequirementKind = "exe"
)

func (k RequirementKind) valid() bool {
	return k == RequirementExe
}

// Requirement is something a plugin needs from the host system, written in
// manifests as "<kind>:<name>", e.g. "exe:sdcv".
type Requirement struct {
	Kind RequirementKind
	Name string
}

func (r Requirement) String() string {
	return string(r.Kind) + ":" + r.Name
}

// ParseRequirement parses the "<kind>:<name>" form.
func ParseRequirement(s string) (Requirement, error) {
	kind, name, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok || strings.TrimSpace(name) == "" {
		return Requirement{}, fmt.Errorf("requirement %q must look like kind:name", s)
	}
	r := Requirement{Kind: RequirementKind(kind), Name: strings.TrimSpace(name)}
	if !r.Kind.valid() {
		return Requirement{}, fmt.Errorf("requirement %q: unknown kind %q (valid: exe)", s, kind)
	}
	return r, nil
}

// Check reports whether the requirement is satisfied on this system.
func (r Requirement) Check() error {
	switch r.Kind {
	case RequirementExe:
		if _, err := exec.LookPath(r.Name); err != nil {
			return fmt.Errorf("executable %q not found on PATH", r.Name)
		}
		return nil
	default:
		return fmt.Errorf("unknown requirement kind %q", r.Kind)
	}
}

// Requirements is a list of requirements.
//
// Accepted formats:
//   - string array: requirements: [exe:sdcv]
//   - object array: requirements: [{kind: exe, name: sdcv}]
type Requirements []Requirement

func (rs *Requirements) UnmarshalYAML(n *yaml.Node) error {
	if n == nil {
		*rs = nil
		return nil
	}
	if n.Kind != yaml.SequenceNode {
		return fmt.Errorf("requirements must be a sequence")
	}

	out := make([]Requirement, 0, len(n.Content))
	for _, item := range n.Content {
		switch item.Kind {
		case yaml.ScalarNode:
			r, err := ParseRequirement(item.Value)
			if err != nil {
				return err
			}
			out = append(out, r)
		case yaml.MappingNode:
			var tmp struct {
				Kind string `yaml:"kind"`
				Name string `yaml:"name"`
			}
			if err := item.Decode(&tmp); err != nil {
				return fmt.Errorf("invalid requirement object: %w", err)
			}
			r, err := ParseRequirement(tmp.Kind + ":" + tmp.Name)
			if err != nil {
				return err
			}
			out = append(out, r)
		default:
			return fmt.Errorf("invalid requirement entry (must be string or object)")
		}
	}

	*rs = out
	return nil
}

// Manifest defines the structure of a plugin's manifest.yaml file.
type Manifest struct {
	Name         string       `yaml:"name"`
	Version      string       `yaml:"version"`
	Title        string       `yaml:"title"`
	Badge        string       `yaml:"badge,omitempty"`
	Description  string       `yaml:"description,omitempty"`
	Entrypoint   string       `yaml:"entrypoint"`
	Realtime     bool         `yaml:"realtime,omitempty"`
	Requirements Requirements `yaml:"requirements,omitempty"`
}

// Plugin represents a discovered and validated plugin.
type Plugin struct {
	Name         string // Plugin name from manifest
	Path         string // Absolute path to plugin directory
	Entrypoint   string // Absolute path to entrypoint executable
	Version      string
	Title        string // Shown by the host in its plugin list
	Badge        string
	Description  string
	Realtime     bool // Host may query the plugin as the user types
	Requirements Requirements
}

// MissingRequirements returns the requirements not satisfied on this system,
// keyed by their manifest form.
func (p *Plugin) MissingRequirements() map[string]error {
	missing := make(map[string]error)
	for _, r := range p.Requirements {
		if err := r.Check(); err != nil {
			missing[r.String()] = err
		}
	}
	return missing
}
