// Package config loads the migration tool settings from flags, environment
// and an optional config file.
package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/patrg444/Cygni/pkg/manifest"
	"github.com/spf13/viper"
	"k8s.io/apimachinery/pkg/util/validation"
)

// EnvPrefix prefixes every environment override, e.g. FARGATE2K8S_OUTPUT_DIR
const EnvPrefix = "FARGATE2K8S"

// Keys shared by flags, environment variables and the config file
const (
	KeyOutputDir       = "output-dir"
	KeyNamespace       = "namespace"
	KeyStdout          = "stdout"
	KeyMetricsTextfile = "metrics-textfile"
	KeyPort            = "port"
)

// Config holds the configuration of a migration run
type Config struct {
	OutputDir       string
	Namespace       string
	Stdout          bool
	MetricsTextfile string
	Port            string
}

// NewViper returns a viper instance reading FARGATE2K8S_* environment
// variables and, when configFile is set, that file.
func NewViper(configFile string) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault(KeyOutputDir, manifest.DefaultOutputDir)
	v.SetDefault(KeyPort, "8080")

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
		}
	}
	return v, nil
}

// Load builds a validated Config from v
func Load(v *viper.Viper) (*Config, error) {
	c := &Config{
		OutputDir:       v.GetString(KeyOutputDir),
		Namespace:       v.GetString(KeyNamespace),
		Stdout:          v.GetBool(KeyStdout),
		MetricsTextfile: v.GetString(KeyMetricsTextfile),
		Port:            v.GetString(KeyPort),
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.OutputDir == "" {
		return fmt.Errorf("output directory cannot be empty")
	}
	if c.Namespace != "" {
		if errs := validation.IsDNS1123Label(c.Namespace); len(errs) > 0 {
			return fmt.Errorf("invalid namespace %q: %s", c.Namespace, strings.Join(errs, ", "))
		}
	}
	if c.Port != "" {
		port, err := strconv.Atoi(c.Port)
		if err != nil || port < 1 || port > 65535 {
			return fmt.Errorf("invalid port %q", c.Port)
		}
	}
	return nil
}
