package render

import (
	"fmt"
	"time"
)

// Default timings. SettleDelay is a heuristic margin, not a guarantee: no
// signal distinguishes a settled diagram from one still reflowing.
const (
	DefaultNavigationTimeout = 30 * time.Second
	DefaultNetworkIdle       = 500 * time.Millisecond
	DefaultDiagramTimeout    = 30 * time.Second
	DefaultPollInterval      = 100 * time.Millisecond
	DefaultSettleDelay       = 500 * time.Millisecond
)

// Config holds the timings of one render. It is passed by value into the
// orchestrator; nothing here is read from package state.
type Config struct {
	NavigationTimeout time.Duration // bound on Loading -> NetworkIdle
	NetworkIdle       time.Duration // quiet window that counts as network idle
	DiagramTimeout    time.Duration // bound on AwaitingDiagrams
	PollInterval      time.Duration // delay between completion checks
	SettleDelay       time.Duration // fixed wait before capture
}

// DefaultConfig returns the production timings.
func DefaultConfig() Config {
	return Config{
		NavigationTimeout: DefaultNavigationTimeout,
		NetworkIdle:       DefaultNetworkIdle,
		DiagramTimeout:    DefaultDiagramTimeout,
		PollInterval:      DefaultPollInterval,
		SettleDelay:       DefaultSettleDelay,
	}
}

// Validate checks that every bound is usable.
func (c Config) Validate() error {
	if c.NavigationTimeout <= 0 {
		return fmt.Errorf("%w: navigation timeout must be positive, got %v", ErrInvalidConfig, c.NavigationTimeout)
	}
	if c.NetworkIdle <= 0 {
		return fmt.Errorf("%w: network idle window must be positive, got %v", ErrInvalidConfig, c.NetworkIdle)
	}
	if c.DiagramTimeout <= 0 {
		return fmt.Errorf("%w: diagram timeout must be positive, got %v", ErrInvalidConfig, c.DiagramTimeout)
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("%w: poll interval must be positive, got %v", ErrInvalidConfig, c.PollInterval)
	}
	if c.PollInterval > c.DiagramTimeout {
		return fmt.Errorf("%w: poll interval %v exceeds diagram timeout %v", ErrInvalidConfig, c.PollInterval, c.DiagramTimeout)
	}
	if c.SettleDelay < 0 {
		return fmt.Errorf("%w: settle delay cannot be negative, got %v", ErrInvalidConfig, c.SettleDelay)
	}
	return nil
}
