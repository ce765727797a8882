package condition

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"autobid/internal/logger"

	"github.com/fsnotify/fsnotify"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Template describes one condition accepted by the admin surface: a name, a
// human description, and a JSON schema for the configured value.
type Template struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Schema      map[string]any `yaml:"schema"`

	schemaCompiled *jsonschema.Schema
}

type templateFile struct {
	Conditions map[string]Template `yaml:"conditions"`
}

// TemplateRegistry validates agent condition maps against the declared
// templates. The backing file is watched and hot reloaded.
type TemplateRegistry struct {
	path string
	v    *viper.Viper

	mu        sync.RWMutex
	templates map[string]Template
	loadedAt  time.Time
}

// NewTemplateRegistry reads the condition template file and starts watching
// it for changes.
func NewTemplateRegistry(path string) (*TemplateRegistry, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("condition template registry requires a path")
	}
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read condition templates failed: %w", err)
	}
	r := &TemplateRegistry{path: path, v: v}
	if err := r.reload(); err != nil {
		return nil, err
	}
	v.OnConfigChange(func(fsnotify.Event) {
		if err := r.reload(); err != nil {
			logger.Errorf("condition template reload failed: %v", err)
		}
	})
	v.WatchConfig()
	return r, nil
}

func (r *TemplateRegistry) reload() error {
	raw, err := os.ReadFile(r.path)
	if err != nil {
		return fmt.Errorf("read condition templates failed: %w", err)
	}
	var cfg templateFile
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return fmt.Errorf("parse condition templates failed: %w", err)
	}
	templates := make(map[string]Template, len(cfg.Conditions))
	for name, tpl := range cfg.Conditions {
		tpl.Name = strings.TrimSpace(tpl.Name)
		if tpl.Name == "" {
			tpl.Name = strings.TrimSpace(name)
		}
		tpl.Description = strings.TrimSpace(tpl.Description)
		if len(tpl.Schema) > 0 {
			compiled, err := compileSchema(tpl.Schema)
			if err != nil {
				logger.Errorf("condition template schema compile failed name=%s: %v", tpl.Name, err)
			} else {
				tpl.schemaCompiled = compiled
			}
		}
		templates[tpl.Name] = tpl
	}
	r.mu.Lock()
	r.templates = templates
	r.loadedAt = time.Now()
	r.mu.Unlock()
	logger.Infof("condition templates loaded count=%d file=%s", len(templates), filepath.Base(r.path))
	return nil
}

// Template returns the template registered under name.
func (r *TemplateRegistry) Template(name string) (Template, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tpl, ok := r.templates[strings.TrimSpace(name)]
	return tpl, ok
}

// Known reports whether name is a declared condition.
func (r *TemplateRegistry) Known(name string) bool {
	_, ok := r.Template(name)
	return ok
}

// Validate checks one configured condition value against its template schema.
// Unknown names are rejected.
func (r *TemplateRegistry) Validate(name string, value any) error {
	tpl, ok := r.Template(name)
	if !ok {
		return fmt.Errorf("unknown condition: %s", name)
	}
	if tpl.schemaCompiled == nil {
		return nil
	}
	if err := tpl.schemaCompiled.Validate(sanitizeValue(value)); err != nil {
		return fmt.Errorf("condition %s: %w", name, err)
	}
	return nil
}

// ValidateAll validates a full agent conditions map.
func (r *TemplateRegistry) ValidateAll(conditions map[string]any) error {
	for name, value := range conditions {
		if err := r.Validate(name, value); err != nil {
			return err
		}
	}
	return nil
}

func compileSchema(data map[string]any) (*jsonschema.Schema, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", strings.NewReader(string(raw))); err != nil {
		return nil, err
	}
	return compiler.Compile("schema.json")
}

// sanitizeValue converts string-typed numbers to float64 recursively so that
// agents configured through loosely typed clients still validate.
func sanitizeValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, child := range val {
			out[k] = sanitizeValue(child)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, child := range val {
			out[i] = sanitizeValue(child)
		}
		return out
	case json.Number:
		if f, err := val.Float64(); err == nil {
			return f
		}
		return val.String()
	case string:
		s := strings.TrimSpace(val)
		if s == "" {
			return val
		}
		if num, err := strconv.ParseFloat(s, 64); err == nil {
			return num
		}
		return val
	default:
		return val
	}
}
