package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// CLIConfig holds command-line configuration
type CLIConfig struct {
	ConfigPath  string
	Knowledge   string
	Target      string
	Available   string
	Routes      int
	LogLevel    string
	LogFormat   string
	ShowVersion bool
	ShowHelp    bool
}

func parseFlags() *CLIConfig {
	cfg := &CLIConfig{}

	flag.StringVar(&cfg.ConfigPath, "config",
		getEnv("MAPPER_CONFIG", ""),
		"Path to configuration file, defaults apply when empty (env: MAPPER_CONFIG)")

	flag.StringVar(&cfg.Knowledge, "knowledge",
		getEnv("MAPPER_KNOWLEDGE", ""),
		"Path to YAML knowledge document (env: MAPPER_KNOWLEDGE)")

	flag.StringVar(&cfg.Target, "target", "",
		"Target concept IRI to resolve")

	flag.StringVar(&cfg.Available, "available", "",
		"Comma-separated concept IRIs with known values")

	flag.IntVar(&cfg.Routes, "routes",
		getEnvInt("MAPPER_ROUTES", 1),
		"Number of ranked plans to print (env: MAPPER_ROUTES)")

	flag.StringVar(&cfg.LogLevel, "log-level",
		getEnv("MAPPER_LOG_LEVEL", "info"),
		"Log level: debug, info, warn, error (env: MAPPER_LOG_LEVEL)")

	flag.StringVar(&cfg.LogFormat, "log-format",
		getEnv("MAPPER_LOG_FORMAT", "text"),
		"Log format: json, text (env: MAPPER_LOG_FORMAT)")

	flag.BoolVar(&cfg.ShowVersion, "version", false, "Show version information")
	flag.BoolVar(&cfg.ShowVersion, "v", false, "Show version information")
	flag.BoolVar(&cfg.ShowHelp, "help", false, "Show help information")
	flag.BoolVar(&cfg.ShowHelp, "h", false, "Show help information")

	flag.Usage = func() {
		printDetailedHelp()
	}

	flag.Parse()

	return cfg
}

func validateFlags(cfg *CLIConfig) error {
	// Skip validation for special flags
	if cfg.ShowVersion || cfg.ShowHelp {
		return nil
	}

	if cfg.Knowledge == "" {
		return fmt.Errorf("missing required flag: -knowledge")
	}
	if _, err := os.Stat(cfg.Knowledge); err != nil {
		return fmt.Errorf("knowledge file not found: %s", cfg.Knowledge)
	}

	if cfg.Target == "" {
		return fmt.Errorf("missing required flag: -target")
	}

	if cfg.Routes < 1 {
		return fmt.Errorf("invalid route count: %d", cfg.Routes)
	}

	validLevels := []string{"debug", "info", "warn", "error"}
	if !contains(validLevels, cfg.LogLevel) {
		return fmt.Errorf("invalid log level: %s", cfg.LogLevel)
	}

	validFormats := []string{"json", "text"}
	if !contains(validFormats, cfg.LogFormat) {
		return fmt.Errorf("invalid log format: %s", cfg.LogFormat)
	}

	return nil
}

// availableConcepts splits the -available flag value, dropping empty
// entries so a trailing comma is harmless.
func availableConcepts(raw string) []string {
	var concepts []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			concepts = append(concepts, part)
		}
	}
	return concepts
}

func printDetailedHelp() {
	_, _ = fmt.Fprintf(os.Stderr, `%s - Mapping Route Resolver

Usage: %s [options]

Options:
`, appName, os.Args[0])
	flag.PrintDefaults()
	_, _ = fmt.Fprintf(os.Stderr, `
Examples:
  # Resolve the cheapest plan for a target concept
  %s -knowledge knowledge.yaml -target http://onto.example/Temperature \
      -available http://onto.example/TemperatureCelsius

  # Print the three cheapest plans
  %s -knowledge knowledge.yaml -target http://onto.example/Energy \
      -available http://onto.example/Mass,http://onto.example/Velocity -routes 3

  # Run with environment variables
  export MAPPER_KNOWLEDGE=/etc/mapper/knowledge.yaml
  export MAPPER_LOG_LEVEL=debug
  %s -target http://onto.example/Energy -available http://onto.example/Mass

Version: %s
Build: %s
`, os.Args[0], os.Args[0], os.Args[0], Version, BuildTime)
}

// Environment variable helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// Utility function to check if slice contains string
func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
