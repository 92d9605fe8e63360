// Package config loads service configuration from struct-tag defaults, an
// optional YAML or JSON file, and environment variables, in that order of
// increasing priority.
//
// # Struct Tags
//
//   - `env:"NAME"` reads the field from environment variable NAME. On a
//     nested struct the tag becomes a prefix for the struct's fields.
//   - `envDefault:"value"` sets the field when it is still zero.
//   - `required:"true"` fails [Loader.Load] when the field is zero after
//     all layers were applied.
//
// File values are decoded with the `yaml` or `json` tags.
//
// # Usage
//
//	type ServiceConfig struct {
//	    Addr   string        `env:"ADDR" envDefault:":8080" yaml:"addr"`
//	    Sentry sentry.Config `yaml:"sentry"`
//	}
//
//	cfg := config.MustLoad[ServiceConfig](
//	    config.New().WithEnvPrefix("WIDGETS").WithFile("widgets.yaml"),
//	)
//
// Supported field types are strings, bools, signed and unsigned integers,
// floats, [time.Duration] and string slices (comma separated), including
// named types over those kinds.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	sserr "github.com/StricklySoft/stricklysoft-sentry/pkg/errors"
)

// durationType distinguishes time.Duration from plain int64 fields.
var durationType = reflect.TypeOf(time.Duration(0))

// Loader resolves configuration layers into a struct. It is not safe for
// concurrent use.
type Loader struct {
	envPrefix string
	filePath  string
}

// New creates a Loader that reads environment variables only.
func New() *Loader {
	return &Loader{}
}

// WithEnvPrefix prefixes every environment variable name with the
// uppercased prefix and an underscore: with prefix "widgets" a field
// tagged `env:"ADDR"` reads WIDGETS_ADDR.
func (l *Loader) WithEnvPrefix(prefix string) *Loader {
	l.envPrefix = strings.ToUpper(prefix)
	return l
}

// WithFile sets a .yaml, .yml or .json file to load between defaults and
// the environment. A missing file is skipped. Paths containing ".." are
// rejected by [Loader.Load].
func (l *Loader) WithFile(path string) *Loader {
	l.filePath = path
	return l
}

// Load fills cfg, which must be a non-nil pointer to a struct, and then
// validates it (required tags, then [Validator]). Loading failures carry
// [sserr.CodeInternalConfiguration]; validation failures carry
// [sserr.CodeValidationRequired] or [sserr.CodeValidation].
func (l *Loader) Load(cfg any) error {
	rv := reflect.ValueOf(cfg)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return sserr.New(sserr.CodeInternalConfiguration,
			"config: Load requires a non-nil pointer to a struct")
	}
	rv = rv.Elem()
	if rv.Kind() != reflect.Struct {
		return sserr.New(sserr.CodeInternalConfiguration,
			"config: Load requires a pointer to a struct")
	}

	if err := walk(rv, "", applyDefault); err != nil {
		return err
	}
	if l.filePath != "" {
		if err := l.loadFile(cfg); err != nil {
			return err
		}
	}
	if err := walk(rv, l.envPrefix, applyEnv); err != nil {
		return err
	}
	return validate(cfg, rv)
}

// MustLoad loads a T and panics on failure. Intended for main.
func MustLoad[T any](loader *Loader) T {
	var cfg T
	if err := loader.Load(&cfg); err != nil {
		panic(fmt.Sprintf("config: MustLoad failed: %v", err))
	}
	return cfg
}

func (l *Loader) loadFile(cfg any) error {
	if strings.Contains(l.filePath, "..") {
		return sserr.New(sserr.CodeInternalConfiguration,
			"config: file path must not contain directory traversal (..) sequences")
	}

	data, err := os.ReadFile(l.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return sserr.Wrapf(err, sserr.CodeInternalConfiguration,
			"config: failed to read file %q", l.filePath)
	}

	switch ext := strings.ToLower(filepath.Ext(l.filePath)); ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	case ".json":
		err = json.Unmarshal(data, cfg)
	default:
		return sserr.Newf(sserr.CodeInternalConfiguration,
			"config: unsupported file extension %q (use .yaml, .yml, or .json)", ext)
	}
	if err != nil {
		return sserr.Wrapf(err, sserr.CodeInternalConfiguration,
			"config: failed to parse file %q", l.filePath)
	}
	return nil
}

// fieldFunc is applied to every settable leaf field. envKey is the
// field's env tag joined with the accumulated prefix, or "" when the field
// has no env tag.
type fieldFunc func(field reflect.Value, sf reflect.StructField, envKey string) error

// walk visits the leaf fields of rv, descending into nested structs.
// A nested struct's env tag extends the prefix of its fields.
func walk(rv reflect.Value, prefix string, fn fieldFunc) error {
	rt := rv.Type()
	for i := range rt.NumField() {
		field := rv.Field(i)
		sf := rt.Field(i)
		if !field.CanSet() {
			continue
		}

		tag := sf.Tag.Get("env")
		if field.Kind() == reflect.Struct && sf.Type != durationType {
			if err := walk(field, joinKey(prefix, tag), fn); err != nil {
				return err
			}
			continue
		}

		envKey := ""
		if tag != "" {
			envKey = joinKey(prefix, tag)
		}
		if err := fn(field, sf, envKey); err != nil {
			return err
		}
	}
	return nil
}

func joinKey(prefix, name string) string {
	switch {
	case prefix == "":
		return name
	case name == "":
		return prefix
	default:
		return prefix + "_" + name
	}
}

func applyDefault(field reflect.Value, sf reflect.StructField, _ string) error {
	def, ok := sf.Tag.Lookup("envDefault")
	if !ok || def == "" || !field.IsZero() {
		return nil
	}
	if err := setField(field, def); err != nil {
		return sserr.Wrapf(err, sserr.CodeInternalConfiguration,
			"config: failed to apply default for field %q", sf.Name)
	}
	return nil
}

func applyEnv(field reflect.Value, sf reflect.StructField, envKey string) error {
	if envKey == "" {
		return nil
	}
	val, ok := os.LookupEnv(envKey)
	if !ok {
		return nil
	}
	if err := setField(field, val); err != nil {
		return sserr.Wrapf(err, sserr.CodeInternalConfiguration,
			"config: failed to set field %q from env var %q", sf.Name, envKey)
	}
	return nil
}

// setField parses value into field according to the field's kind.
func setField(field reflect.Value, value string) error {
	if field.Type() == durationType {
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("cannot parse duration %q: %w", value, err)
		}
		field.SetInt(int64(d))
		return nil
	}

	switch field.Kind() {
	case reflect.String:
		field.SetString(value)

	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("cannot parse bool %q: %w", value, err)
		}
		field.SetBool(b)

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(value, 10, field.Type().Bits())
		if err != nil {
			return fmt.Errorf("cannot parse integer %q: %w", value, err)
		}
		field.SetInt(n)

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(value, 10, field.Type().Bits())
		if err != nil {
			return fmt.Errorf("cannot parse unsigned integer %q: %w", value, err)
		}
		field.SetUint(n)

	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(value, field.Type().Bits())
		if err != nil {
			return fmt.Errorf("cannot parse float %q: %w", value, err)
		}
		field.SetFloat(f)

	case reflect.Slice:
		if field.Type().Elem().Kind() != reflect.String {
			return fmt.Errorf("unsupported slice element type %s", field.Type().Elem().Kind())
		}
		parts := strings.Split(value, ",")
		// MakeSlice keeps named slice types settable.
		slice := reflect.MakeSlice(field.Type(), len(parts), len(parts))
		for i, p := range parts {
			slice.Index(i).SetString(strings.TrimSpace(p))
		}
		field.Set(slice)

	default:
		return fmt.Errorf("unsupported field type %s", field.Kind())
	}
	return nil
}
