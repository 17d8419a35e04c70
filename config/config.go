package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/ChristianF88/radix256/bench"
)

var DefaultSizes = []int{1_000, 10_000, 100_000, 1_000_000}

const (
	DefaultRounds  = 1
	DefaultSeed    = 42
	DefaultAddr    = ":5044"
	DefaultTimeout = 30 * time.Second
)

type BenchConfig struct {
	Sizes      []int    `toml:"sizes"`
	Rounds     int      `toml:"rounds"`
	Seed       uint64   `toml:"seed"`
	Workers    int      `toml:"workers"`
	Algorithms []string `toml:"algorithms"`
	Verify     bool     `toml:"verify"`
}

type OutputConfig struct {
	PlotPath string `toml:"plotPath"`
}

type ServeConfig struct {
	Addr    string        `toml:"addr"`
	Timeout time.Duration `toml:"timeout"`
	OutFile string        `toml:"outFile"`
}

type Config struct {
	Bench  *BenchConfig  `toml:"bench"`
	Output *OutputConfig `toml:"output"`
	Serve  *ServeConfig  `toml:"serve"`
}

// Default returns a configuration with every section populated.
func Default() *Config {
	return &Config{
		Bench:  DefaultBench(),
		Output: &OutputConfig{},
		Serve:  DefaultServe(),
	}
}

func DefaultBench() *BenchConfig {
	return &BenchConfig{
		Sizes:      append([]int(nil), DefaultSizes...),
		Rounds:     DefaultRounds,
		Seed:       DefaultSeed,
		Workers:    runtime.GOMAXPROCS(0),
		Algorithms: bench.AlgorithmNames(),
		Verify:     true,
	}
}

func DefaultServe() *ServeConfig {
	return &ServeConfig{
		Addr:    DefaultAddr,
		Timeout: DefaultTimeout,
	}
}

func LoadConfig(configPath string) (*Config, error) {
	configData, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return ParseConfig(string(configData))
}

// ParseConfig decodes TOML text. Missing sections and keys keep their
// defaults.
func ParseConfig(data string) (*Config, error) {
	var rawConfig map[string]any
	if _, err := toml.Decode(data, &rawConfig); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	config := Default()
	for key, value := range rawConfig {
		section, ok := value.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("section %q must be a table", key)
		}
		var err error
		switch key {
		case "bench":
			err = parseBenchConfig(section, config.Bench)
		case "output":
			err = parseOutputConfig(section, config.Output)
		case "serve":
			err = parseServeConfig(section, config.Serve)
		default:
			err = fmt.Errorf("unknown section")
		}
		if err != nil {
			return nil, fmt.Errorf("parsing [%s]: %w", key, err)
		}
	}
	return config, nil
}

func parseBenchConfig(m map[string]any, config *BenchConfig) error {
	if v, ok := m["sizes"]; ok {
		arr, ok := v.([]any)
		if !ok {
			return fmt.Errorf("sizes must be an array of integers")
		}
		config.Sizes = config.Sizes[:0]
		for _, item := range arr {
			i, ok := item.(int64)
			if !ok {
				return fmt.Errorf("invalid size %v", item)
			}
			config.Sizes = append(config.Sizes, int(i))
		}
	}
	if v, ok := m["rounds"].(int64); ok {
		config.Rounds = int(v)
	}
	if v, ok := m["seed"].(int64); ok {
		if v < 0 {
			return fmt.Errorf("seed must not be negative, got %d", v)
		}
		config.Seed = uint64(v)
	}
	if v, ok := m["workers"].(int64); ok {
		config.Workers = int(v)
	}
	if v, ok := m["algorithms"].([]any); ok {
		config.Algorithms = nil
		for _, item := range v {
			if str, ok := item.(string); ok {
				config.Algorithms = append(config.Algorithms, str)
			}
		}
	}
	if v, ok := m["verify"].(bool); ok {
		config.Verify = v
	}
	return nil
}

func parseOutputConfig(m map[string]any, config *OutputConfig) error {
	if v, ok := m["plotPath"].(string); ok {
		config.PlotPath = v
	}
	return nil
}

func parseServeConfig(m map[string]any, config *ServeConfig) error {
	if v, ok := m["addr"].(string); ok {
		config.Addr = v
	}
	if v, ok := m["timeout"].(string); ok {
		duration, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid timeout %q: %w", v, err)
		}
		config.Timeout = duration
	}
	if v, ok := m["outFile"].(string); ok {
		config.OutFile = v
	}
	return nil
}

func (c *Config) ValidateBench() error {
	if c.Bench == nil {
		return fmt.Errorf("bench configuration section is required")
	}
	b := c.Bench

	if len(b.Sizes) == 0 {
		return fmt.Errorf("at least one size is required")
	}
	for _, size := range b.Sizes {
		if size <= 0 || size > bench.MaxSize {
			return fmt.Errorf("size %d outside 1..%d", size, bench.MaxSize)
		}
	}
	if b.Rounds < 1 {
		return fmt.Errorf("rounds must be at least 1, got %d", b.Rounds)
	}
	if b.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", b.Workers)
	}
	if _, err := bench.LookupAlgorithms(b.Algorithms); err != nil {
		return err
	}

	if c.Output != nil {
		if err := ValidatePlotPath(c.Output.PlotPath); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) ValidateServe() error {
	if c.Serve == nil {
		return fmt.Errorf("serve configuration section is required")
	}
	if c.Serve.Addr == "" {
		return fmt.Errorf("addr is required in serve configuration")
	}
	if c.Serve.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %v", c.Serve.Timeout)
	}
	if c.Serve.OutFile != "" {
		dir := filepath.Dir(c.Serve.OutFile)
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			return fmt.Errorf("outFile directory does not exist: %s", dir)
		}
	}
	return nil
}

// ValidatePlotPath checks that the directory of a non-empty plot path exists.
func ValidatePlotPath(plotPath string) error {
	if plotPath != "" {
		plotDir := filepath.Dir(plotPath)
		if plotDir == "." {
			plotDir, _ = os.Getwd()
		}
		if _, err := os.Stat(plotDir); os.IsNotExist(err) {
			return fmt.Errorf("plot directory does not exist: %s", plotDir)
		}
	}
	return nil
}

// BenchOptions converts the bench section into runner options.
func (c *Config) BenchOptions() (bench.Options, error) {
	algos, err := bench.LookupAlgorithms(c.Bench.Algorithms)
	if err != nil {
		return bench.Options{}, err
	}
	return bench.Options{
		Sizes:      append([]int(nil), c.Bench.Sizes...),
		Rounds:     c.Bench.Rounds,
		Seed:       c.Bench.Seed,
		Workers:    c.Bench.Workers,
		Algorithms: algos,
		Verify:     c.Bench.Verify,
	}, nil
}
