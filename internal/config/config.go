// Package config loads the cfp-search YAML configuration.
//
// A missing config file is not an error: DefaultConfig is used instead. Partially filled
// files are completed by Normalize.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/pfrederiksen/cfp-search/internal/event"
	"github.com/pfrederiksen/cfp-search/internal/fetch"
	"github.com/pfrederiksen/cfp-search/internal/filter"
	"github.com/pfrederiksen/cfp-search/internal/logger"
	"github.com/pfrederiksen/cfp-search/internal/reference"
	"github.com/pfrederiksen/cfp-search/internal/scraper"
	"gopkg.in/yaml.v3"
)

// Config is the top-level application configuration.
type Config struct {
	// Listen is the HTTP listen address for the web UI.
	Listen string `yaml:"listen" json:"listen"`

	// SearchURL is the WikiCFP tool.search endpoint.
	SearchURL string `yaml:"search_url" json:"search_url"`

	// SiteURL is the scheme and host detail-page links are resolved against.
	SiteURL string `yaml:"site_url" json:"site_url"`

	// ReferenceURL is the country/region CSV.
	ReferenceURL string `yaml:"reference_url" json:"reference_url"`

	UserAgent string        `yaml:"user_agent" json:"user_agent"`
	Timeout   time.Duration `yaml:"timeout" json:"timeout"`

	// Retries bounds extra attempts for failed upstream fetches. Negative disables retries.
	Retries int `yaml:"retries" json:"retries"`

	// Workers bounds concurrent detail-page fetches. 1 fetches them one at a time.
	Workers int `yaml:"workers" json:"workers"`

	// LinkCacheTTL is how long serve reuses a resolved CFP link. Negative disables the cache.
	LinkCacheTTL time.Duration `yaml:"link_cache_ttl" json:"link_cache_ttl"`

	LogLevel string `yaml:"log_level" json:"log_level"`

	// DefaultTypes and DefaultRegions preselect the type and region filters.
	DefaultTypes   []string `yaml:"default_types" json:"default_types"`
	DefaultRegions []string `yaml:"default_regions" json:"default_regions"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	c := &Config{}
	c.Normalize()
	return c
}

// Normalize fills in missing/zero values with defaults.
func (c *Config) Normalize() {
	if c.Listen == "" {
		c.Listen = "127.0.0.1:8080"
	}
	if c.SearchURL == "" {
		c.SearchURL = scraper.DefaultSearchURL
	}
	if c.SiteURL == "" {
		c.SiteURL = scraper.DefaultSiteURL
	}
	if c.ReferenceURL == "" {
		c.ReferenceURL = reference.DefaultURL
	}
	if c.UserAgent == "" {
		c.UserAgent = fetch.DefaultUserAgent
	}
	if c.Timeout <= 0 {
		c.Timeout = fetch.DefaultTimeout
	}
	if c.Retries == 0 {
		c.Retries = fetch.DefaultRetries
	}
	if c.Workers <= 0 {
		c.Workers = scraper.DefaultWorkers
	}
	if c.LinkCacheTTL == 0 {
		c.LinkCacheTTL = scraper.DefaultLinkCacheTTL
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if len(c.DefaultTypes) == 0 {
		for _, t := range event.AllTypes {
			c.DefaultTypes = append(c.DefaultTypes, string(t))
		}
	}
	if len(c.DefaultRegions) == 0 {
		c.DefaultRegions = append([]string(nil), filter.DefaultRegions...)
	}
}

// Validate checks values Normalize cannot repair.
func (c *Config) Validate() error {
	if _, err := logger.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if _, err := c.Filter(); err != nil {
		return err
	}
	return nil
}

// Filter builds the default type/region filter.
func (c *Config) Filter() (*filter.Filter, error) {
	f := &filter.Filter{}
	for _, s := range c.DefaultTypes {
		t, err := event.ParseType(s)
		if err != nil {
			return nil, fmt.Errorf("default_types: %w", err)
		}
		f.Types = append(f.Types, t)
	}
	for _, s := range c.DefaultRegions {
		r, err := filter.ParseRegion(s)
		if err != nil {
			return nil, fmt.Errorf("default_regions: %w", err)
		}
		f.Regions = append(f.Regions, r)
	}
	return f, nil
}

// Load reads the config at path. An empty path or a missing file yields the defaults.
func Load(path string) (*Config, error) {
	if strings.TrimSpace(path) == "" {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.Normalize()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return &cfg, nil
}
