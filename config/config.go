// Package config loads the settings of a simulation run from YAML files and
// environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sarchlab/cachemap/mapping"
	"gopkg.in/yaml.v3"
)

// Environment variables read by ApplyEnv.
const (
	EnvMode       = "CACHEMAP_MODE"
	EnvTotalLines = "CACHEMAP_TOTAL_LINES"
	EnvSetSize    = "CACHEMAP_SET_SIZE"
	EnvTrace      = "CACHEMAP_TRACE"
	EnvRecord     = "CACHEMAP_RECORD"
)

// Config describes one simulation run.
type Config struct {
	Mode       string   `yaml:"mode"`
	TotalLines int      `yaml:"total_lines"`
	SetSize    int      `yaml:"set_size"`
	Trace      []uint64 `yaml:"trace"`
	RecordPath string   `yaml:"record"`
}

// Default returns the classroom example: five direct-mapped lines and the
// trace 33, 11, 3, 5.
func Default() Config {
	return Config{
		Mode:       "direct",
		TotalLines: 5,
		SetSize:    1,
		Trace:      []uint64{33, 11, 3, 5},
	}
}

// Load reads a YAML file on top of the defaults.
func Load(path string) (Config, error) {
	c := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return c, err
	}

	err = yaml.Unmarshal(data, &c)
	if err != nil {
		return c, fmt.Errorf("parsing %s: %w", path, err)
	}

	return c, nil
}

// ApplyEnv loads envFile if it exists and overrides the fields whose
// variables are set. An empty envFile only reads the process environment.
func (c *Config) ApplyEnv(envFile string) error {
	if envFile != "" {
		err := godotenv.Load(envFile)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("loading %s: %w", envFile, err)
		}
	}

	if v, ok := os.LookupEnv(EnvMode); ok {
		c.Mode = v
	}

	if err := lookupInt(EnvTotalLines, &c.TotalLines); err != nil {
		return err
	}

	if err := lookupInt(EnvSetSize, &c.SetSize); err != nil {
		return err
	}

	if v, ok := os.LookupEnv(EnvTrace); ok {
		trace, err := ParseTrace(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvTrace, err)
		}

		c.Trace = trace
	}

	if v, ok := os.LookupEnv(EnvRecord); ok {
		c.RecordPath = v
	}

	return nil
}

func lookupInt(name string, dst *int) error {
	v, ok := os.LookupEnv(name)
	if !ok {
		return nil
	}

	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}

	*dst = n

	return nil
}

// Geometry returns the cache geometry of the run.
func (c Config) Geometry() mapping.Geometry {
	return mapping.Geometry{
		TotalLines: c.TotalLines,
		SetSize:    c.SetSize,
	}
}

// ParseTrace reads addresses separated by commas or white space. Addresses
// are decimal unless they carry a 0x prefix. Leading zeros do not switch to
// octal.
func ParseTrace(s string) ([]uint64, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n'
	})

	trace := make([]uint64, 0, len(fields))
	for _, f := range fields {
		addr, err := parseAddress(f)
		if err != nil {
			return nil, fmt.Errorf("invalid address %q: %w", f, err)
		}

		trace = append(trace, addr)
	}

	return trace, nil
}

func parseAddress(f string) (uint64, error) {
	if hex, ok := strings.CutPrefix(strings.ToLower(f), "0x"); ok {
		return strconv.ParseUint(hex, 16, 64)
	}

	return strconv.ParseUint(f, 10, 64)
}
