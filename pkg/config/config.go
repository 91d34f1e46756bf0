package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config represents the daemon configuration. It is bootstrap input only:
// the runtime channel configuration lives in the store and is never written
// back here.
type Config struct {
	Device    DeviceConfig    `yaml:"device"`
	HTTP      HTTPConfig      `yaml:"http"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	SerialOut SerialOutConfig `yaml:"serial_out"`
	Sampling  SamplingConfig  `yaml:"sampling"`
	Log       LogConfig       `yaml:"log"`
}

// DeviceConfig selects the converter front-end.
type DeviceConfig struct {
	Port string `yaml:"port"`
	Baud int    `yaml:"baud"`
	Mock bool   `yaml:"mock"`
}

// HTTPConfig contains the protocol surface listener address.
type HTTPConfig struct {
	Addr string `yaml:"addr"`
}

// MetricsConfig contains the Prometheus listener address.
type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

// SerialOutConfig contains the telemetry line stream output.
type SerialOutConfig struct {
	Port    string `yaml:"port"`
	Baud    int    `yaml:"baud"`
	Enabled bool   `yaml:"enabled"`
}

// SamplingConfig contains the bootstrap sampling parameters applied to the
// store at startup.
type SamplingConfig struct {
	RateHz   int `yaml:"rate_hz"`
	DataRate int `yaml:"data_rate"`
}

// LogConfig contains logging parameters.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns a default configuration with sensible values.
func Default() *Config {
	return &Config{
		Device: DeviceConfig{
			Port: "/dev/ttyUSB0",
			Baud: 115200,
		},
		HTTP: HTTPConfig{
			Addr: ":8080",
		},
		Metrics: MetricsConfig{
			Addr: ":9090",
		},
		SerialOut: SerialOutConfig{
			Baud:    115200,
			Enabled: false,
		},
		Sampling: SamplingConfig{
			RateHz:   100,
			DataRate: 1600,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load loads configuration from a YAML file. If the file doesn't exist or
// fields are missing, it uses default values.
func Load(filename string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.ensureDefaults()
	return cfg, nil
}

// Save saves the configuration to a YAML file.
func (c *Config) Save(filename string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// ensureDefaults ensures that all required fields have default values if missing.
func (c *Config) ensureDefaults() {
	def := Default()

	if c.Device.Port == "" {
		c.Device.Port = def.Device.Port
	}
	if c.Device.Baud == 0 {
		c.Device.Baud = def.Device.Baud
	}
	if c.HTTP.Addr == "" {
		c.HTTP.Addr = def.HTTP.Addr
	}
	if c.Metrics.Addr == "" {
		c.Metrics.Addr = def.Metrics.Addr
	}
	if c.SerialOut.Baud == 0 {
		c.SerialOut.Baud = def.SerialOut.Baud
	}
	if c.Sampling.RateHz == 0 {
		c.Sampling.RateHz = def.Sampling.RateHz
	}
	if c.Sampling.DataRate == 0 {
		c.Sampling.DataRate = def.Sampling.DataRate
	}
	if c.Log.Level == "" {
		c.Log.Level = def.Log.Level
	}
	if c.Log.Format == "" {
		c.Log.Format = def.Log.Format
	}
}
