// Package config loads YAML configuration files with environment
// variable expansion. Placeholders use ${VAR} or ${VAR:default} syntax,
// which keeps secrets out of the file while defaults stay visible.
package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

var (
	ErrReadFile  = errors.New("config: failed to read file")
	ErrUnmarshal = errors.New("config: failed to unmarshal")
)

var placeholderRe = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?::([^}]*))?\}`)

// Load reads the YAML file at path, expands ${VAR} placeholders from
// the environment, and unmarshals the result into a value of type T.
func Load[T any](path string) (T, error) {
	var cfg T

	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Join(ErrReadFile, err)
	}

	if err := yaml.Unmarshal(expand(raw), &cfg); err != nil {
		return cfg, errors.Join(ErrUnmarshal, err)
	}
	return cfg, nil
}

// MustLoad is Load for simple applications where a broken configuration
// is fatal at startup.
func MustLoad[T any](path string) T {
	cfg, err := Load[T](path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	return cfg
}

func expand(raw []byte) []byte {
	return placeholderRe.ReplaceAllFunc(raw, func(m []byte) []byte {
		groups := placeholderRe.FindSubmatch(m)
		name, def := string(groups[1]), string(groups[2])
		if v, ok := os.LookupEnv(name); ok {
			return []byte(v)
		}
		if strings.Contains(string(m), ":") {
			return []byte(def)
		}
		return []byte("")
	})
}
