package config

import (
	"errors"
	"fmt"
)

// Policy names accepted by [dedup].policy.
const (
	PolicyKeepNewest = "keep-newest"
	PolicyKeepOldest = "keep-oldest"
	PolicyKeepInRoot = "keep-in-root"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateScan(); err != nil {
		return err
	}
	if err := c.validateFingerprint(); err != nil {
		return err
	}
	if err := c.validateReconcile(); err != nil {
		return err
	}
	if err := c.validateDedup(); err != nil {
		return err
	}
	if err := c.validateWatch(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validatePaths() error {
	if c.Paths.StateDir == "" {
		return errors.New("paths.state_dir must be set")
	}
	if c.Paths.LogDir == "" {
		return errors.New("paths.log_dir must be set")
	}
	return nil
}

func (c *Config) validateScan() error {
	if len(c.Scan.Extensions) == 0 {
		return errors.New("scan.extensions must list at least one suffix")
	}
	if c.Scan.MinSizeBytes < 0 {
		return errors.New("scan.min_size_bytes must not be negative")
	}
	return nil
}

func (c *Config) validateFingerprint() error {
	if c.Fingerprint.PrefixBytes <= 0 {
		return errors.New("fingerprint.prefix_bytes must be positive")
	}
	return nil
}

func (c *Config) validateReconcile() error {
	if c.Reconcile.Workers < 1 {
		return errors.New("reconcile.workers must be at least 1")
	}
	if c.Reconcile.SimilarityFloor < 0 || c.Reconcile.SimilarityFloor > 1 {
		return errors.New("reconcile.similarity_floor must be between 0 and 1")
	}
	return nil
}

func (c *Config) validateDedup() error {
	switch c.Dedup.Policy {
	case PolicyKeepNewest, PolicyKeepOldest:
		return nil
	case PolicyKeepInRoot:
		if c.Dedup.PreferredRoot == "" {
			return errors.New("dedup.preferred_root is required for policy keep-in-root")
		}
		return nil
	default:
		return fmt.Errorf("dedup.policy: unsupported value %q", c.Dedup.Policy)
	}
}

func (c *Config) validateWatch() error {
	if c.Watch.DebounceSeconds < 0 {
		return errors.New("watch.debounce_seconds must not be negative")
	}
	if c.Watch.RescanMinutes < 0 {
		return errors.New("watch.rescan_minutes must not be negative")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
}
