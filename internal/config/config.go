// Package config loads the roster engine's runtime configuration.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/wardroster/engine/internal/domain"
)

// WorkerConfig seeds the roster of an empty database.
type WorkerConfig struct {
	Name     string `json:"name" yaml:"name"`
	Category string `json:"category" yaml:"category"`
}

// PolicyConfig overrides the default ward policy. Zero values keep the
// default; pointer fields distinguish an explicit zero.
type PolicyConfig struct {
	DailyCaps          map[string]int `json:"daily_caps" yaml:"daily_caps"`
	WeekendCaps        map[string]int `json:"weekend_caps" yaml:"weekend_caps"`
	ExtraCodes         []string       `json:"extra_codes" yaml:"extra_codes"`
	NightBlockCap      int            `json:"night_block_cap" yaml:"night_block_cap"`
	NightBlockNights   int            `json:"night_block_nights" yaml:"night_block_nights"`
	NightBlockRest     *int           `json:"night_block_rest" yaml:"night_block_rest"`
	RestAfterNights    int            `json:"rest_after_nights" yaml:"rest_after_nights"`
	MaxConsecutiveWork int            `json:"max_consecutive_work" yaml:"max_consecutive_work"`
	WorkerCapSlack     *int           `json:"worker_cap_slack" yaml:"worker_cap_slack"`
	TailLength         int            `json:"tail_length" yaml:"tail_length"`
	HeadNurseMode      bool           `json:"head_nurse_mode" yaml:"head_nurse_mode"`
	AnnualLeave        float64        `json:"annual_leave" yaml:"annual_leave"`
	CarryOverLeave     *float64       `json:"carry_over_leave" yaml:"carry_over_leave"`
}

// Config holds the engine's runtime configuration.
type Config struct {
	DBPath             string         `json:"db_path" yaml:"db_path"`
	ListenAddr         string         `json:"listen_addr" yaml:"listen_addr"`
	RateLimitPerMinute int            `json:"rate_limit_per_minute" yaml:"rate_limit_per_minute"`
	Workers            []WorkerConfig `json:"workers" yaml:"workers"`
	Policy             PolicyConfig   `json:"policy" yaml:"policy"`
}

// Load reads a JSON or YAML config file, applies defaults, and validates.
// Files ending in .yaml or .yml are parsed as YAML.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config YAML: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config JSON: %w", err)
		}
	}

	cfg.applyDefaults()

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Discover resolves the config path: explicit path, then the env variable,
// then config.json or config.yaml next to the executable or in the cwd.
// It returns "" when nothing is found.
func Discover(explicit, envVar string) string {
	if explicit != "" {
		return explicit
	}
	if v := os.Getenv(envVar); v != "" {
		return v
	}
	var dirs []string
	if exe, err := os.Executable(); err == nil {
		dirs = append(dirs, filepath.Dir(exe))
	}
	dirs = append(dirs, ".")
	for _, dir := range dirs {
		for _, name := range []string{"config.json", "config.yaml", "config.yml"} {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate
			}
		}
	}
	return ""
}

func (c *Config) applyDefaults() {
	if c.ListenAddr == "" {
		c.ListenAddr = ":9810"
	}
	if c.RateLimitPerMinute == 0 {
		c.RateLimitPerMinute = 30
	}
	for i := range c.Workers {
		if c.Workers[i].Category == "" {
			c.Workers[i].Category = string(domain.CategoryGeneral)
		}
	}
}

func (c *Config) validate() error {
	var problems []string

	if c.DBPath == "" {
		problems = append(problems, "db_path is required")
	}
	if c.RateLimitPerMinute < 0 {
		problems = append(problems, "rate_limit_per_minute must not be negative")
	}

	seen := map[string]bool{}
	for _, w := range c.Workers {
		if strings.TrimSpace(w.Name) == "" {
			problems = append(problems, "worker name is required")
			continue
		}
		if seen[w.Name] {
			problems = append(problems, fmt.Sprintf("duplicate worker %q", w.Name))
		}
		seen[w.Name] = true
		switch domain.Category(w.Category) {
		case domain.CategoryGeneral, domain.CategoryHeadNurse:
		default:
			problems = append(problems, fmt.Sprintf("worker %q has unknown category %q", w.Name, w.Category))
		}
	}

	if c.Policy.AnnualLeave < 0 {
		problems = append(problems, "policy.annual_leave must not be negative")
	}
	if err := c.ToPolicy().Validate(); err != nil {
		problems = append(problems, err.Error())
	}

	if len(problems) > 0 {
		return &domain.EngineError{
			Code:    domain.ErrConfigInvalid.Code,
			Message: fmt.Sprintf("%s: %v", domain.ErrConfigInvalid.Message, problems),
		}
	}
	return nil
}

// ToPolicy layers the policy block over domain.DefaultPolicy.
func (c *Config) ToPolicy() domain.Policy {
	p := domain.DefaultPolicy()
	pc := c.Policy

	if pc.DailyCaps != nil {
		p.DailyCaps = toCaps(pc.DailyCaps)
	}
	if pc.WeekendCaps != nil {
		p.WeekendCaps = toCaps(pc.WeekendCaps)
	}
	for _, code := range pc.ExtraCodes {
		p.PreservedCodes = append(p.PreservedCodes, domain.DutyCode(code))
	}
	if pc.NightBlockCap != 0 {
		p.NightBlockCap = pc.NightBlockCap
	}
	if pc.NightBlockNights != 0 {
		p.NightBlockNights = pc.NightBlockNights
	}
	if pc.NightBlockRest != nil {
		p.NightBlockRest = *pc.NightBlockRest
	}
	if pc.RestAfterNights != 0 {
		p.RestAfterNights = pc.RestAfterNights
	}
	if pc.MaxConsecutiveWork != 0 {
		p.MaxConsecutiveWork = pc.MaxConsecutiveWork
	}
	if pc.WorkerCapSlack != nil {
		p.WorkerCapSlack = *pc.WorkerCapSlack
	}
	if pc.TailLength != 0 {
		p.TailLength = pc.TailLength
	}
	p.HeadNurseMode = pc.HeadNurseMode
	if pc.AnnualLeave != 0 {
		p.AnnualLeave = decimal.NewFromFloat(pc.AnnualLeave)
	}
	if pc.CarryOverLeave != nil {
		p.CarryOverLeave = decimal.NewFromFloat(*pc.CarryOverLeave)
	}
	return p
}

// RosterWorkers converts the configured seed roster.
func (c *Config) RosterWorkers() []domain.Worker {
	out := make([]domain.Worker, 0, len(c.Workers))
	for _, w := range c.Workers {
		out = append(out, domain.Worker{Name: w.Name, Category: domain.Category(w.Category)})
	}
	return out
}

func toCaps(in map[string]int) map[domain.DutyCode]int {
	out := make(map[domain.DutyCode]int, len(in))
	for k, v := range in {
		out[domain.DutyCode(k)] = v
	}
	return out
}
