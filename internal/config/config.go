// Package config loads pipeline settings from an optional YAML file with
// environment overrides for the deployment-dependent values.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v2"
)

type QdrantConfig struct {
	Host       string `yaml:"host"`
	Port       int    `yaml:"port"`
	Collection string `yaml:"collection"`
}

type PipelineConfig struct {
	BaseDir        string `yaml:"base_dir"`
	FetchDelayMS   int    `yaml:"fetch_delay_ms"`
	RetrievalCount int    `yaml:"retrieval_count"`
}

type ServerConfig struct {
	Port int `yaml:"port"`
}

type Config struct {
	Pipeline PipelineConfig `yaml:"pipeline"`
	Qdrant   QdrantConfig   `yaml:"qdrant"`
	Server   ServerConfig   `yaml:"server"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Pipeline: PipelineConfig{
			BaseDir:        ".",
			FetchDelayMS:   2000,
			RetrievalCount: 5,
		},
		Qdrant: QdrantConfig{
			Host:       "localhost",
			Port:       6334,
			Collection: "laptop_knowledge",
		},
		Server: ServerConfig{
			Port: 8000,
		},
	}
}

// Load reads the YAML file at path, layered over Default. A missing file
// is not an error; a present but unreadable or malformed file is.
// Environment overrides (QDRANT_HOST, QDRANT_PORT, PORT) apply last.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// defaults only
	case err != nil:
		return nil, fmt.Errorf("read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	if host := os.Getenv("QDRANT_HOST"); host != "" {
		c.Qdrant.Host = host
	}
	if port := os.Getenv("QDRANT_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			c.Qdrant.Port = p
		}
	}
	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			c.Server.Port = p
		}
	}
}

// FetchInterval converts the configured delay into a duration.
func (c *Config) FetchInterval() time.Duration {
	return time.Duration(c.Pipeline.FetchDelayMS) * time.Millisecond
}
