package plugin

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

const manifestFilename = "manifest.yaml"

// Registry holds discovered plugins indexed by name.
type Registry struct {
	plugins map[string]*Plugin
}

// NewRegistry creates an empty plugin registry.
func NewRegistry() *Registry {
	return &Registry{
		plugins: make(map[string]*Plugin),
	}
}

// Get retrieves a plugin by name.
func (r *Registry) Get(name string) (*Plugin, bool) {
	p, ok := r.plugins[name]
	return p, ok
}

// All returns the registered plugins sorted by name.
func (r *Registry) All() []*Plugin {
	out := make([]*Plugin, 0, len(r.plugins))
	for _, p := range r.plugins {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Add registers a plugin in the registry.
func (r *Registry) Add(plugin *Plugin) error {
	if _, exists := r.plugins[plugin.Name]; exists {
		return fmt.Errorf("plugin %q already registered", plugin.Name)
	}
	r.plugins[plugin.Name] = plugin
	return nil
}

// DiscoverMany scans multiple plugin roots for manifest.yaml files.
// Roots are processed in input order; duplicate plugin names keep the first
// discovered plugin. Invalid manifests are logged and skipped.
func DiscoverMany(pluginRoots []string, logger *slog.Logger) (*Registry, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	absRoots := make([]string, 0, len(pluginRoots))
	seenRoots := make(map[string]struct{}, len(pluginRoots))
	for _, root := range pluginRoots {
		root = strings.TrimSpace(root)
		if root == "" {
			continue
		}
		absRoot, err := filepath.Abs(root)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve plugin root %q: %w", root, err)
		}
		info, err := os.Stat(absRoot)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, fmt.Errorf("plugin root does not exist: %s", absRoot)
			}
			return nil, fmt.Errorf("failed to stat plugin root %s: %w", absRoot, err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("plugin root is not a directory: %s", absRoot)
		}
		if _, ok := seenRoots[absRoot]; ok {
			continue
		}
		seenRoots[absRoot] = struct{}{}
		absRoots = append(absRoots, absRoot)
	}
	if len(absRoots) == 0 {
		return nil, fmt.Errorf("at least one plugin root is required")
	}

	registry := NewRegistry()
	for _, root := range absRoots {
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				return walkErr
			}
			if d.IsDir() || d.Name() != manifestFilename {
				return nil
			}

			pluginPath := filepath.Dir(path)
			plugin, err := loadPlugin(pluginPath)
			if err != nil {
				logger.Warn("failed to load plugin", "root", root, "path", pluginPath, "error", err)
				return nil
			}

			if err := registry.Add(plugin); err != nil {
				existing, _ := registry.Get(plugin.Name)
				logger.Warn("duplicate plugin ignored (keeping first discovered)",
					"plugin", plugin.Name,
					"ignored_path", plugin.Path,
					"kept_path", existing.Path,
					"error", err,
				)
				return nil
			}

			logger.Debug("loaded plugin", "plugin", plugin.Name, "path", plugin.Path, "version", plugin.Version)
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to scan plugin root %s: %w", root, err)
		}
	}

	return registry, nil
}

// LoadManifest reads and validates the manifest in pluginPath.
func LoadManifest(pluginPath string) (*Manifest, error) {
	data, err := os.ReadFile(filepath.Join(pluginPath, manifestFilename))
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	var manifest Manifest
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("failed to parse manifest YAML: %w", err)
	}

	if err := validateManifest(&manifest); err != nil {
		return nil, fmt.Errorf("invalid manifest: %w", err)
	}
	return &manifest, nil
}

func loadPlugin(pluginPath string) (*Plugin, error) {
	manifest, err := LoadManifest(pluginPath)
	if err != nil {
		return nil, err
	}

	title := manifest.Title
	if title == "" {
		title = manifest.Name
	}

	return &Plugin{
		Name:         manifest.Name,
		Path:         pluginPath,
		Entrypoint:   filepath.Join(pluginPath, manifest.Entrypoint),
		Version:      manifest.Version,
		Title:        title,
		Badge:        manifest.Badge,
		Description:  manifest.Description,
		Realtime:     manifest.Realtime,
		Requirements: manifest.Requirements,
	}, nil
}

// validateManifest checks required manifest fields.
func validateManifest(m *Manifest) error {
	if strings.TrimSpace(m.Name) == "" {
		return fmt.Errorf("name is required")
	}
	if strings.ContainsAny(m.Name, `/\ `) {
		return fmt.Errorf("name %q must not contain slashes or spaces", m.Name)
	}
	if m.Entrypoint == "" {
		return fmt.Errorf("entrypoint is required")
	}
	if filepath.IsAbs(m.Entrypoint) || strings.Contains(m.Entrypoint, "..") {
		return fmt.Errorf("entrypoint contains path traversal: %s", m.Entrypoint)
	}
	return nil
}

// CheckEntrypoint verifies the entrypoint exists inside the plugin directory,
// is executable, and that the directory is not world-writable. Plugins are
// discovered from source trees before they are built, so this is checked at
// run time rather than during discovery.
func (p *Plugin) CheckEntrypoint() error {
	resolvedEntrypoint, err := filepath.EvalSymlinks(p.Entrypoint)
	if err != nil {
		return fmt.Errorf("entrypoint not found: %w", err)
	}
	resolvedPluginPath, err := filepath.EvalSymlinks(p.Path)
	if err != nil {
		return fmt.Errorf("failed to resolve plugin path symlink: %w", err)
	}

	if !strings.HasPrefix(resolvedEntrypoint, resolvedPluginPath+string(os.PathSeparator)) {
		return fmt.Errorf("entrypoint %s is not under plugin directory %s", resolvedEntrypoint, resolvedPluginPath)
	}

	info, err := os.Stat(resolvedEntrypoint)
	if err != nil {
		return fmt.Errorf("entrypoint not found: %w", err)
	}
	if info.IsDir() || info.Mode()&0111 == 0 {
		return fmt.Errorf("entrypoint is not executable: %s", resolvedEntrypoint)
	}

	pluginInfo, err := os.Stat(resolvedPluginPath)
	if err != nil {
		return fmt.Errorf("plugin directory not found: %w", err)
	}
	if pluginInfo.Mode().Perm()&0002 != 0 {
		return fmt.Errorf("plugin directory is world-writable: %s", resolvedPluginPath)
	}

	return nil
}
