package config

import (
	"os"
	"strconv"

	"github.com/cockroachdb/errors"
	"github.com/yashagw/craneopt/internal/cost"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Catalog   CatalogConfig   `yaml:"catalog"`
	Optimizer OptimizerConfig `yaml:"optimizer"`
}

type ServerConfig struct {
	Port string `yaml:"port"` // TCP listen port (e.g. 8080)
}

// CatalogConfig names where relation statistics come from. Both sources may
// be given; entries from the SQLite database replace same-named file entries.
type CatalogConfig struct {
	Path   string `yaml:"path"`   // statistics YAML file
	SQLite string `yaml:"sqlite"` // database to analyse
}

type OptimizerConfig struct {
	JoinDistinctPolicy string `yaml:"join_distinct_policy"` // min or max
	Verbose            bool   `yaml:"verbose"`
}

const (
	DefaultPort = "8080"

	// EnvConfig names the config file when no path is passed to Load.
	EnvConfig = "CRANEOPT_CONFIG"
	// EnvPort overrides server.port.
	EnvPort = "PORT"
)

var defaultPaths = []string{"configs/craneopt.yaml", "craneopt.yaml"}

// Load reads configPath, or the file named by CRANEOPT_CONFIG, or the first
// default path that exists. Defaults fill whatever the file leaves out and
// the PORT environment variable wins over the file.
func Load(configPath string) (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port: DefaultPort,
		},
		Optimizer: OptimizerConfig{
			JoinDistinctPolicy: cost.JoinDistinctMin.String(),
		},
	}

	if configPath == "" {
		configPath = os.Getenv(EnvConfig)
	}

	if configPath == "" {
		for _, p := range defaultPaths {
			data, err := os.ReadFile(p)
			if err == nil {
				if err := decode(data, cfg); err != nil {
					return cfg, errors.Wrapf(err, "config %s", p)
				}
				break
			}
		}
	} else {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return cfg, errors.Wrap(err, "read config")
		}
		if err := decode(data, cfg); err != nil {
			return cfg, errors.Wrapf(err, "config %s", configPath)
		}
	}

	if port := os.Getenv(EnvPort); port != "" {
		cfg.Server.Port = port
	}
	applyDefaults(cfg)
	return cfg, cfg.Validate()
}

func decode(data []byte, cfg *Config) error {
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return errors.Wrap(err, "decode yaml")
	}
	return nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == "" {
		cfg.Server.Port = DefaultPort
	}
	if cfg.Optimizer.JoinDistinctPolicy == "" {
		cfg.Optimizer.JoinDistinctPolicy = cost.JoinDistinctMin.String()
	}
}

// Validate checks the values Load cannot repair.
func (c *Config) Validate() error {
	port, err := strconv.Atoi(c.Server.Port)
	if err != nil || port <= 0 || port > 65535 {
		return errors.Newf("server.port: invalid port %q", c.Server.Port)
	}
	if _, err := c.JoinDistinctPolicy(); err != nil {
		return errors.Wrap(err, "optimizer.join_distinct_policy")
	}
	return nil
}

// JoinDistinctPolicy returns the parsed optimizer.join_distinct_policy.
func (c *Config) JoinDistinctPolicy() (cost.JoinDistinctPolicy, error) {
	return cost.ParseJoinDistinctPolicy(c.Optimizer.JoinDistinctPolicy)
}
