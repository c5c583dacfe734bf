/*
Package template loads the externally supplied map metadata that is merged
verbatim into a converted map, things like kingdoms, spawn points and global
settings.

The contents are not interpreted, a template is just a document of string
keys to arbitrary values. Templates may be written as JSON or YAML and can
optionally be checked against a JSON Schema.
*/
package template

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/ioutil"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

// Format is the encoding of a template source.
type Format int

const (
	// JSON templates are decoded with numbers kept as json.Number so they
	// are written back out unchanged.
	JSON Format = iota
	// YAML templates
	YAML
)

// FormatFromPath guesses the format from the file extension, defaulting to
// JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return YAML
	}
	return JSON
}

// LoadError is returned when a template can't be read or decoded.
type LoadError struct {
	File string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("template: %s: %v", e.File, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

var errNotObject = errors.New("top level value is not an object")

// Template is an opaque map document.
type Template map[string]interface{}

func (t Template) Has(key string) bool {
	_, ok := t[key]
	return ok
}

func (t Template) Keys() []string {
	keys := make([]string, 0, len(t))
	for k := range t {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

var errNotFinite = errors.New("NaN and infinite numbers can't be stored in a map")

// normalize converts YAML decoded values into types encoding/json can write.
func normalize(v interface{}) (interface{}, error) {
	var err error
	switch v := v.(type) {
	case map[string]interface{}:
		for k, e := range v {
			if v[k], err = normalize(e); err != nil {
				return nil, fmt.Errorf("%s: %w", k, err)
			}
		}
		return v, nil
	case map[interface{}]interface{}:
		m := make(map[string]interface{}, len(v))
		for k, e := range v {
			key := fmt.Sprint(k)
			if m[key], err = normalize(e); err != nil {
				return nil, fmt.Errorf("%s: %w", key, err)
			}
		}
		return m, nil
	case []interface{}:
		for i, e := range v {
			if v[i], err = normalize(e); err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
		}
		return v, nil
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, errNotFinite
		}
	case float32:
		if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
			return nil, errNotFinite
		}
	}
	return v, nil
}

// Load decodes a template from r. name is only used in errors.
func Load(r io.Reader, name string, format Format) (Template, error) {
	b, err := ioutil.ReadAll(r)
	if err != nil {
		return nil, &LoadError{File: name, Err: err}
	}

	var v interface{}
	switch format {
	case YAML:
		if err := yaml.Unmarshal(b, &v); err != nil {
			return nil, &LoadError{File: name, Err: err}
		}
		if v, err = normalize(v); err != nil {
			return nil, &LoadError{File: name, Err: err}
		}
	default:
		d := json.NewDecoder(bytes.NewReader(b))
		d.UseNumber()
		if err := d.Decode(&v); err != nil {
			return nil, &LoadError{File: name, Err: err}
		}
		if d.More() {
			return nil, &LoadError{File: name, Err: errors.New("trailing data after object")}
		}
	}

	switch m := v.(type) {
	case map[string]interface{}:
		return Template(m), nil
	case nil:
		// An empty YAML document
		return Template{}, nil
	}
	return nil, &LoadError{File: name, Err: errNotObject}
}

// LoadFile decodes the template at path, choosing the format from its
// extension.
func LoadFile(path string) (Template, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &LoadError{File: path, Err: err}
	}
	defer f.Close()

	return Load(f, path, FormatFromPath(path))
}

// CompileSchema compiles the JSON Schema at path.
func CompileSchema(path string) (*jsonschema.Schema, error) {
	s, err := jsonschema.Compile(path)
	if err != nil {
		return nil, &LoadError{File: path, Err: err}
	}
	return s, nil
}

// LoadSchema compiles a JSON Schema read from r. name identifies the schema
// in errors and for resolving relative references.
func LoadSchema(r io.Reader, name string) (*jsonschema.Schema, error) {
	c := jsonschema.NewCompiler()
	if err := c.AddResource(name, r); err != nil {
		return nil, &LoadError{File: name, Err: err}
	}
	s, err := c.Compile(name)
	if err != nil {
		return nil, &LoadError{File: name, Err: err}
	}
	return s, nil
}

// Validate checks the template against s.
func (t Template) Validate(s *jsonschema.Schema) error {
	// Round trip through JSON so YAML sourced values look the same as JSON
	// sourced ones to the validator
	b, err := json.Marshal(t)
	if err != nil {
		return err
	}
	d := json.NewDecoder(bytes.NewReader(b))
	d.UseNumber()
	var v interface{}
	if err := d.Decode(&v); err != nil {
		return err
	}
	return s.Validate(v)
}
