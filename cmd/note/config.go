package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/matsen/note/internal/config"
	"github.com/spf13/cobra"
)

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configSetCmd)
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or change configuration",
	Long: `Show or change configuration.

Usage:
  note config                          # Show all config
  note config path                     # Print the config file location
  note config set db-path ~/notes.db   # Set a value

Keys:
  db-path           Path to the notes database (default ~/.notes.db)
  lock-timeout      How long a write waits for the lock (e.g. 5s)
  lock-stale-after  Age after which a lock file is considered abandoned
  color             auto, always or never
  time-format       Go time layout for listings (default 06.01.02 15:04)

NOTE_DB and --db override db-path for a single run.`,
	Args: cobra.NoArgs,
	RunE: runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show all configuration values",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file path",
	Args:  cobra.NoArgs,
	RunE:  runConfigPath,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE:  runConfigSet,
}

// UpdateResponse is the JSON response for config set.
type UpdateResponse struct {
	Status string `json:"status"`
	Key    string `json:"key"`
	Value  string `json:"value"`
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	c, err := loadConfig()
	if err != nil {
		return err
	}

	if jsonOutput {
		return outputJSON(c)
	}
	fmt.Fprintf(stdout, "db-path:          %s\n", c.DBPath)
	fmt.Fprintf(stdout, "lock-timeout:     %s\n", c.LockTimeout)
	fmt.Fprintf(stdout, "lock-stale-after: %s\n", c.LockStaleAfter)
	fmt.Fprintf(stdout, "color:            %s\n", c.Color)
	fmt.Fprintf(stdout, "time-format:      %s\n", c.TimeFormat)
	return nil
}

func runConfigPath(cmd *cobra.Command, args []string) error {
	path := config.Path()
	if jsonOutput {
		return outputJSON(StatusResponse{Status: "ok", Path: path})
	}
	fmt.Fprintln(stdout, path)
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key, value := normalizeKey(args[0]), args[1]

	// Start from the file alone so per-run overrides are not persisted.
	c, err := config.LoadFile(config.Path())
	if err != nil {
		return configError{err}
	}
	if err := setConfigValue(c, key, value); err != nil {
		return configError{err}
	}
	if err := c.Validate(); err != nil {
		return configError{err}
	}
	if err := c.Save(config.Path()); err != nil {
		return err
	}

	if jsonOutput {
		return outputJSON(UpdateResponse{Status: "updated", Key: key, Value: value})
	}
	fmt.Fprintf(stdout, "Updated %s to %s\n", key, value)
	return nil
}

// setConfigValue assigns one configuration key from its string form.
func setConfigValue(c *config.Config, key, value string) error {
	switch key {
	case "db-path":
		c.DBPath = value
	case "lock-timeout", "lock-stale-after":
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration for %s: %q", key, value)
		}
		if key == "lock-timeout" {
			c.LockTimeout = d
		} else {
			c.LockStaleAfter = d
		}
	case "color":
		c.Color = value
	case "time-format":
		c.TimeFormat = value
	default:
		return fmt.Errorf("unknown configuration key: %s", key)
	}
	return nil
}

// normalizeKey converts key formats (db-path, db_path, DB_PATH) to consistent format
func normalizeKey(key string) string {
	key = strings.ToLower(key)
	key = strings.ReplaceAll(key, "_", "-")
	return key
}
