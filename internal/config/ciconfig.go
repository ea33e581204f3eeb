package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"text/template"

	"gopkg.in/yaml.v3"

	cierrors "git.home.luguber.info/inful/cirrusrun/internal/errors"
)

// DefaultCIConfig is the build definition read when no path is configured.
const DefaultCIConfig = ".cirrus.yml"

// LookupFunc resolves an environment variable.
type LookupFunc func(name string) (string, bool)

type loadOptions struct {
	lookup   LookupFunc
	template bool
}

// LoadOption tunes LoadCIConfig.
type LoadOption func(*loadOptions)

// WithLookup replaces os.LookupEnv as the source of template variables.
func WithLookup(fn LookupFunc) LoadOption {
	return func(o *loadOptions) {
		if fn != nil {
			o.lookup = fn
		}
	}
}

// WithoutTemplate sends the file as is, for configs that contain literal "{{".
func WithoutTemplate() LoadOption {
	return func(o *loadOptions) { o.template = false }
}

// LoadCIConfig reads the build definition at path, renders it as a template and
// checks that the result is a YAML mapping. The rendered text is returned verbatim
// so the server sees exactly what was validated.
func LoadCIConfig(path string, opts ...LoadOption) (string, error) {
	o := loadOptions{lookup: os.LookupEnv, template: true}
	for _, opt := range opts {
		opt(&o)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", cierrors.ConfigNotFound(path)
		}
		return "", cierrors.ConfigInvalid(path, err)
	}

	body := string(raw)
	if o.template {
		body, err = RenderCIConfig(path, body, o.lookup)
		if err != nil {
			return "", cierrors.ConfigInvalid(path, err)
		}
	}
	if err := ValidateCIConfig(body); err != nil {
		return "", cierrors.ConfigInvalid(path, err)
	}
	return body, nil
}

// RenderCIConfig executes body as a text/template. Templates see two helpers:
//
//	{{ env "NAME" }}            fails when NAME is unset
//	{{ envOr "NAME" "default" }} falls back when NAME is unset or empty
func RenderCIConfig(name, body string, lookup LookupFunc) (string, error) {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	funcs := template.FuncMap{
		"env": func(key string) (string, error) {
			v, ok := lookup(key)
			if !ok {
				return "", fmt.Errorf("environment variable %s is not set", key)
			}
			return v, nil
		},
		"envOr": func(key, fallback string) string {
			if v, ok := lookup(key); ok && v != "" {
				return v
			}
			return fallback
		},
	}

	tpl, err := template.New(name).Funcs(funcs).Option("missingkey=error").Parse(body)
	if err != nil {
		return "", fmt.Errorf("parse config template: %w", err)
	}
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, nil); err != nil {
		return "", fmt.Errorf("render config template: %w", err)
	}
	return buf.String(), nil
}

// ValidateCIConfig reports whether body is a non-empty YAML mapping.
func ValidateCIConfig(body string) error {
	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(body), &doc); err != nil {
		return fmt.Errorf("invalid YAML: %w", err)
	}
	if len(doc.Content) == 0 {
		return errors.New("config is empty")
	}
	if root := doc.Content[0]; root.Kind != yaml.MappingNode {
		return fmt.Errorf("config must be a mapping, got %s at line %d", kindName(root.Kind), root.Line)
	}
	return nil
}

func kindName(k yaml.Kind) string {
	switch k {
	case yaml.SequenceNode:
		return "sequence"
	case yaml.ScalarNode:
		return "scalar"
	case yaml.AliasNode:
		return "alias"
	default:
		return "document"
	}
}
