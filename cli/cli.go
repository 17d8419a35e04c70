package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ChristianF88/radix256/bench"
	"github.com/ChristianF88/radix256/config"
	"github.com/ChristianF88/radix256/version"
	cli "github.com/urfave/cli/v2"
)

// parseDate attempts to parse the build date
func parseDate(d string) time.Time {
	t, err := time.Parse(time.RFC3339, d)
	if err != nil {
		return time.Now()
	}
	return t
}

// Shared flag definitions to eliminate duplication
var (
	// Configuration flags
	configFlag = &cli.StringFlag{
		Name:  "config",
		Usage: "Path to configuration file (mutually exclusive with other flags)",
	}

	// Benchmark flags
	sizesFlag = &cli.StringFlag{
		Name:  "sizes",
		Usage: "Comma-separated input sizes, K and M suffixes allowed (e.g., '1K,100K,1M')",
	}
	roundsFlag = &cli.IntFlag{
		Name:  "rounds",
		Usage: "Number of timed rounds per algorithm and size",
		Value: config.DefaultRounds,
	}
	seedFlag = &cli.Uint64Flag{
		Name:  "seed",
		Usage: "Seed for the key generator",
		Value: config.DefaultSeed,
	}
	workersFlag = &cli.IntFlag{
		Name:  "workers",
		Usage: "Goroutines used to generate keys (default: GOMAXPROCS)",
	}
	algorithmsFlag = &cli.StringFlag{
		Name:  "algorithms",
		Usage: "Comma-separated algorithms to run (" + strings.Join(bench.AlgorithmNames(), ", ") + ")",
	}
	noVerifyFlag = &cli.BoolFlag{
		Name:  "noVerify",
		Usage: "Skip checking every output against the std baseline",
		Value: false,
	}

	// Output flags
	plotPathFlag = &cli.StringFlag{
		Name:  "plotPath",
		Usage: "Path where to save the timing chart (e.g., '/path/to/bench.html'). If not provided, no plot will be generated.",
	}
	compactFlag = &cli.BoolFlag{
		Name:  "compact",
		Usage: "Output compact JSON (no pretty printing)",
		Value: false,
	}
	plainFlag = &cli.BoolFlag{
		Name:  "plain",
		Usage: "Output plain text format for easy readability",
		Value: false,
	}
	tuiFlag = &cli.BoolFlag{
		Name:  "tui",
		Usage: "Launch TUI (Terminal User Interface) mode",
		Value: false,
	}

	// Key file flags
	fileFlag = &cli.StringFlag{
		Name:  "file",
		Usage: "Path to a key file (flat little-endian uint32 array)",
	}
	countFlag = &cli.IntFlag{
		Name:  "count",
		Usage: "Number of keys to generate",
		Value: 1_000_000,
	}
	checkFlag = &cli.BoolFlag{
		Name:  "check",
		Usage: "Verify the file is sorted afterwards",
		Value: false,
	}

	// Serve flags
	addrFlag = &cli.StringFlag{
		Name:  "addr",
		Usage: "Address the lumberjack listener binds to",
		Value: config.DefaultAddr,
	}
	timeoutFlag = &cli.DurationFlag{
		Name:  "timeout",
		Usage: "Read timeout for client connections",
		Value: config.DefaultTimeout,
	}
	outFileFlag = &cli.StringFlag{
		Name:  "outFile",
		Usage: "Append sorted results to this file instead of stdout",
	}
)

// Shared validation functions
func validateConfigModeFlags(c *cli.Context, allowedFlags []string, flagsToCheck []string) error {
	allowed := make(map[string]bool)
	for _, flag := range allowedFlags {
		allowed[flag] = true
	}

	for _, flag := range flagsToCheck {
		if c.IsSet(flag) && !allowed[flag] {
			return fmt.Errorf("when using --config, only %v flags are allowed", allowedFlags)
		}
	}
	return nil
}

// parseSizes parses "1000,10K,1M" into sizes.
func parseSizes(input string) ([]int, error) {
	var sizes []int
	for _, part := range strings.Split(input, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		multiplier := 1
		switch {
		case strings.HasSuffix(part, "K") || strings.HasSuffix(part, "k"):
			multiplier = 1_000
			part = part[:len(part)-1]
		case strings.HasSuffix(part, "M") || strings.HasSuffix(part, "m"):
			multiplier = 1_000_000
			part = part[:len(part)-1]
		}

		n, err := strconv.Atoi(strings.ReplaceAll(part, "_", ""))
		if err != nil {
			return nil, fmt.Errorf("invalid size %q: %w", part, err)
		}
		if n <= 0 || n > bench.MaxSize/multiplier {
			return nil, fmt.Errorf("size %q outside 1..%d", part, bench.MaxSize)
		}
		sizes = append(sizes, n*multiplier)
	}
	if len(sizes) == 0 {
		return nil, fmt.Errorf("no sizes given")
	}
	return sizes, nil
}

func parseAlgorithms(input string) []string {
	var names []string
	for _, part := range strings.Split(input, ",") {
		if part = strings.TrimSpace(part); part != "" {
			names = append(names, part)
		}
	}
	return names
}

// Command handler functions to reduce deep nesting

var benchFlagNames = []string{
	"sizes", "rounds", "seed", "workers", "algorithms", "noVerify",
	"plotPath", "tui", "compact", "plain",
}

// handleBenchCommand processes the bench command
func handleBenchCommand(c *cli.Context) error {
	outputConfig := OutputConfig{
		Compact: c.Bool("compact"),
		Plain:   c.Bool("plain"),
		TUI:     c.Bool("tui"),
	}
	if outputConfig.TUI && (outputConfig.Compact || outputConfig.Plain) {
		return fmt.Errorf("--tui cannot be combined with --compact or --plain")
	}

	configPath := c.String("config")
	if configPath != "" {
		return handleBenchConfigMode(c, configPath, outputConfig)
	}
	return handleBenchFlagsMode(c, outputConfig)
}

// handleBenchConfigMode handles bench command when using config file
func handleBenchConfigMode(c *cli.Context, configPath string, outputConfig OutputConfig) error {
	if err := validateConfigModeFlags(c, []string{"tui", "compact", "plain"}, benchFlagNames); err != nil {
		return err
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := cfg.ValidateBench(); err != nil {
		return fmt.Errorf("invalid bench configuration: %w", err)
	}

	return Bench(cfg, outputConfig)
}

// handleBenchFlagsMode handles bench command when using CLI flags only
func handleBenchFlagsMode(c *cli.Context, outputConfig OutputConfig) error {
	cfg := config.Default()

	if c.IsSet("sizes") {
		sizes, err := parseSizes(c.String("sizes"))
		if err != nil {
			return err
		}
		cfg.Bench.Sizes = sizes
	}
	if c.IsSet("algorithms") {
		cfg.Bench.Algorithms = parseAlgorithms(c.String("algorithms"))
	}
	if c.IsSet("workers") {
		cfg.Bench.Workers = c.Int("workers")
	}
	cfg.Bench.Rounds = c.Int("rounds")
	cfg.Bench.Seed = c.Uint64("seed")
	cfg.Bench.Verify = !c.Bool("noVerify")
	cfg.Output.PlotPath = c.String("plotPath")

	if err := cfg.ValidateBench(); err != nil {
		return err
	}

	return Bench(cfg, outputConfig)
}

// handleGenCommand writes a random key file
func handleGenCommand(c *cli.Context) error {
	if !c.IsSet("file") {
		return fmt.Errorf("file is required")
	}
	count := c.Int("count")
	if count < 0 || count > bench.MaxSize {
		return fmt.Errorf("count %d outside 0..%d", count, bench.MaxSize)
	}
	return Generate(c.String("file"), count, c.Uint64("seed"))
}

// handleSortCommand sorts a key file in place
func handleSortCommand(c *cli.Context) error {
	if !c.IsSet("file") {
		return fmt.Errorf("file is required")
	}
	return SortKeyFile(c.String("file"), c.Bool("check"), OutputConfig{
		Compact: c.Bool("compact"),
		Plain:   c.Bool("plain"),
	})
}

// handleServeCommand processes the serve command
func handleServeCommand(c *cli.Context) error {
	configPath := c.String("config")
	if configPath != "" {
		return handleServeConfigMode(c, configPath)
	}
	return handleServeFlagsMode(c)
}

// handleServeConfigMode handles serve command when using config file
func handleServeConfigMode(c *cli.Context, configPath string) error {
	if err := validateConfigModeFlags(c, nil, []string{"addr", "timeout", "outFile"}); err != nil {
		return err
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := cfg.ValidateServe(); err != nil {
		return fmt.Errorf("invalid serve configuration: %w", err)
	}

	fmt.Println("Running sort service from config file:")
	return Serve(cfg.Serve)
}

// handleServeFlagsMode handles serve command when using CLI flags only
func handleServeFlagsMode(c *cli.Context) error {
	cfg := &config.Config{
		Serve: &config.ServeConfig{
			Addr:    c.String("addr"),
			Timeout: c.Duration("timeout"),
			OutFile: c.String("outFile"),
		},
	}
	if err := cfg.ValidateServe(); err != nil {
		return err
	}

	fmt.Println("Running sort service with CLI flags:")
	return Serve(cfg.Serve)
}

var App = &cli.App{
	Name:     "radix256",
	Usage:    "Sort uint32 keys with a base-256 LSD radix sort and benchmark it",
	Version:  version.Version,
	Compiled: parseDate(version.Date),
	Commands: []*cli.Command{
		{
			Name:  "bench",
			Usage: "Benchmark the radix sort against comparison sorts",
			Flags: []cli.Flag{
				// Configuration
				configFlag,
				// Benchmark flags
				sizesFlag,
				roundsFlag,
				seedFlag,
				workersFlag,
				algorithmsFlag,
				noVerifyFlag,
				// Output flags
				plotPathFlag,
				compactFlag,
				plainFlag,
				tuiFlag,
			},
			Action: handleBenchCommand,
		},
		{
			Name:  "gen",
			Usage: "Write a file of random keys",
			Flags: []cli.Flag{
				fileFlag,
				countFlag,
				seedFlag,
			},
			Action: handleGenCommand,
		},
		{
			Name:  "sort",
			Usage: "Sort a key file in place",
			Flags: []cli.Flag{
				fileFlag,
				checkFlag,
				compactFlag,
				plainFlag,
			},
			Action: handleSortCommand,
		},
		{
			Name:  "serve",
			Usage: "Run the lumberjack sort service",
			Flags: []cli.Flag{
				configFlag,
				addrFlag,
				timeoutFlag,
				outFileFlag,
			},
			Action: handleServeCommand,
		},
	},
}
