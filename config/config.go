package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
)

// Invalid date policies
const (
	InvalidDatesFail = "fail"
	InvalidDatesSkip = "skip"
	InvalidDatesKeep = "keep"
)

// TomlSite represents the site section of the configuration
type TomlSite struct {
	Title       string `toml:"title"`
	Description string `toml:"description"`
	// Origin is the scheme and host posts are published under, e.g. https://x2f.dev
	Origin          string `toml:"origin"`
	ID              string `toml:"id"`
	CopyrightHolder string `toml:"copyright_holder"`
}

// TomlAuthor represents the feed author
type TomlAuthor struct {
	Name  string `toml:"name"`
	Email string `toml:"email"`
	Link  string `toml:"link"`
}

// TomlFeed holds settings for the feed build itself
type TomlFeed struct {
	Generator    string `toml:"generator"`
	Concurrency  int    `toml:"concurrency"`
	InvalidDates string `toml:"invalid_dates"`
	Path         string `toml:"path"`
}

// Config represents the top-level configuration. It is loaded once at
// startup and must not be modified afterwards.
type Config struct {
	Site   TomlSite   `toml:"site"`
	Author TomlAuthor `toml:"author"`
	Feed   TomlFeed   `toml:"feed"`
}

// Default returns the configuration used when no file overrides a value
func Default() Config {
	return Config{
		Site: TomlSite{
			Title:           "Leah Lundqvist's Blog",
			Description:     "My personal sliver of the web",
			Origin:          "https://x2f.dev",
			ID:              "https://x2f.dev/",
			CopyrightHolder: "Leah Lundqvist",
		},
		Author: TomlAuthor{
			Name:  "Leah Lundqvist",
			Email: "leah@pigeon.sh",
			Link:  "https://x2f.dev",
		},
		Feed: TomlFeed{
			Generator:    "blogfeed",
			Concurrency:  4,
			InvalidDates: InvalidDatesFail,
			Path:         "/feed",
		},
	}
}

// LoadConfig reads the TOML file at path on top of the defaults
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	return Parse(data)
}

// Parse decodes TOML data on top of the defaults and validates the result
func Parse(data []byte) (*Config, error) {
	config := Default()
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	config.Site.Origin = strings.TrimRight(config.Site.Origin, "/")
	if config.Feed.Concurrency <= 0 {
		config.Feed.Concurrency = 1
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate checks the values a feed cannot be built without
func (c *Config) Validate() error {
	u, err := url.Parse(c.Site.Origin)
	if err != nil {
		return fmt.Errorf("invalid site origin %q: %w", c.Site.Origin, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("site origin %q must be an absolute http(s) URL", c.Site.Origin)
	}

	if c.Site.Title == "" {
		return errors.New("site title is required")
	}

	if c.Author.Email == "" {
		return errors.New("author email is required")
	}

	switch c.Feed.InvalidDates {
	case InvalidDatesFail, InvalidDatesSkip, InvalidDatesKeep:
	default:
		return fmt.Errorf("unknown invalid_dates policy %q", c.Feed.InvalidDates)
	}

	if !strings.HasPrefix(c.Feed.Path, "/") {
		return fmt.Errorf("feed path %q must start with /", c.Feed.Path)
	}

	return nil
}
