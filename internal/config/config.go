package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"unicode"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// EnvPrefix is prepended to every `env` tag when reading the environment.
const EnvPrefix = "DSRNODE_"

// LoadConfig fills the tagged fields of opts, a pointer to a flat struct.
//
// Precedence, lowest to highest: TOML file named by the Config field, .env
// files next to it, process environment, flags explicitly set on cmd. A
// missing config file is not an error. A malformed file or dotenv file is
// reported, but the remaining stages still run so env and CLI values apply.
func LoadConfig(opts any, cmd *cobra.Command) error {
	v := reflect.ValueOf(opts).Elem()
	t := v.Type()

	changedFlags := make(map[string]bool)
	if cmd != nil {
		cmd.Flags().VisitAll(func(f *pflag.Flag) {
			if f.Changed {
				changedFlags[f.Name] = true
			}
		})
	}

	var configPath string
	if f := v.FieldByName("Config"); f.IsValid() && f.Kind() == reflect.String {
		configPath = f.String()
	}

	var errs []error

	if configPath != "" {
		if data, readErr := os.ReadFile(configPath); readErr == nil {
			var config map[string]any
			if err := toml.Unmarshal(data, &config); err != nil {
				errs = append(errs, fmt.Errorf("failed to parse TOML config %s: %w", configPath, err))
			} else {
				for i := 0; i < v.NumField(); i++ {
					fieldType := t.Field(i)
					if changedFlags[fieldNameToFlag(fieldType.Name)] {
						continue
					}
					if tomlPath := fieldType.Tag.Get("toml"); tomlPath != "" {
						if value := getNestedValue(config, tomlPath); value != nil {
							setFieldValue(v.Field(i), value)
						}
					}
				}
			}
		}
	}

	if err := LoadEnvFiles(envDir(configPath)); err != nil {
		errs = append(errs, err)
	}

	for i := 0; i < v.NumField(); i++ {
		fieldType := t.Field(i)
		if changedFlags[fieldNameToFlag(fieldType.Name)] {
			continue
		}
		if envKey := fieldType.Tag.Get("env"); envKey != "" {
			if envValue := os.Getenv(EnvPrefix + envKey); envValue != "" {
				setFieldValueFromString(v.Field(i), envValue)
			}
		}
	}

	return errors.Join(errs...)
}

// ReloadLoader returns a Watcher loader that rebuilds options from base on
// every change. base must hold flag defaults plus CLI values, captured before
// the first LoadConfig, so keys removed from the file fall back to their
// defaults while env and changed flags keep winning over the file.
func ReloadLoader[T any](base T, cmd *cobra.Command) func(path string) (T, error) {
	return func(path string) (T, error) {
		opts := base
		if v := reflect.ValueOf(&opts).Elem(); v.Kind() == reflect.Struct {
			if f := v.FieldByName("Config"); f.IsValid() && f.CanSet() && f.Kind() == reflect.String {
				f.SetString(path)
			}
		}
		if err := LoadConfig(&opts, cmd); err != nil {
			return opts, err
		}
		return opts, nil
	}
}

func envDir(configPath string) string {
	if configPath == "" {
		return "."
	}
	return filepath.Dir(configPath)
}

// fieldNameToFlag converts a struct field name to a CLI flag name.
// Example: "LoggingLevel" -> "logging-level", "Port" -> "port".
func fieldNameToFlag(fieldName string) string {
	var result []rune
	for i, r := range fieldName {
		if i > 0 && unicode.IsUpper(r) {
			result = append(result, '-')
		}
		result = append(result, unicode.ToLower(r))
	}
	return string(result)
}

// getNestedValue retrieves a value from nested map using dot notation.
func getNestedValue(data map[string]any, path string) any {
	parts := strings.Split(path, ".")
	current := data

	for i, part := range parts {
		if i == len(parts)-1 {
			return current[part]
		}
		next, ok := current[part].(map[string]any)
		if !ok {
			return nil
		}
		current = next
	}
	return nil
}

func setFieldValue(field reflect.Value, value any) {
	if !field.CanSet() {
		return
	}

	switch field.Kind() {
	case reflect.String:
		if s, ok := value.(string); ok {
			field.SetString(s)
		}
	case reflect.Bool:
		if b, ok := value.(bool); ok {
			field.SetBool(b)
		}
	case reflect.Int:
		switch n := value.(type) {
		case int64:
			field.SetInt(n)
		case int:
			field.SetInt(int64(n))
		}
	case reflect.Slice:
		if field.Type().Elem().Kind() != reflect.String {
			return
		}
		if arr, ok := value.([]any); ok {
			slice := make([]string, 0, len(arr))
			for _, item := range arr {
				if s, strOk := item.(string); strOk {
					slice = append(slice, s)
				}
			}
			field.Set(reflect.ValueOf(slice))
		}
	}
}

// setFieldValueFromString sets a field from an environment value. Slices are
// comma-separated.
func setFieldValueFromString(field reflect.Value, value string) {
	if !field.CanSet() {
		return
	}

	switch field.Kind() {
	case reflect.String:
		field.SetString(value)
	case reflect.Bool:
		if b, err := strconv.ParseBool(value); err == nil {
			field.SetBool(b)
		}
	case reflect.Int:
		if i, err := strconv.ParseInt(value, 10, 64); err == nil {
			field.SetInt(i)
		}
	case reflect.Slice:
		if field.Type().Elem().Kind() == reflect.String {
			parts := strings.Split(value, ",")
			slice := make([]string, len(parts))
			for i, part := range parts {
				slice[i] = strings.TrimSpace(part)
			}
			field.Set(reflect.ValueOf(slice))
		}
	}
}
