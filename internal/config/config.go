package config

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/statikfintechllc/personal-pennies/internal/journal"
	"gopkg.in/yaml.v3"
)

type Config struct {
	// DataDir is where the journal store keeps its record files.
	DataDir string `yaml:"data_dir"`

	Account journal.AccountConfig `yaml:"account"`

	Sources []SourceReference `yaml:"sources"`

	Matching   Matching   `yaml:"matching"`
	Validation Validation `yaml:"validation"`
	Analytics  Analytics  `yaml:"analytics"`
	Reports    Reports    `yaml:"reports"`
}

type Matching struct {
	// Mode selects the pairing strategy: "sequential" (default) or
	// "fifo".
	Mode string `yaml:"mode"`
}

type Validation struct {
	MaxSanePrice float64 `yaml:"max_sane_price"`
}

type Analytics struct {
	RiskFreeRate float64 `yaml:"risk_free_rate"`
}

type Reports struct {
	Dir         string `yaml:"dir"`
	JSON        string `yaml:"json"`
	Excel       string `yaml:"excel"`
	Chart       string `yaml:"chart"`
	ChartWidth  int    `yaml:"chart_width"`
	ChartHeight int    `yaml:"chart_height"`
}

func Read(r io.Reader) (*Config, error) {
	var cfg Config
	d := yaml.NewDecoder(r)
	if err := d.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("unable to parse config file: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func ReadFromFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read config file: %w", err)
	}
	defer f.Close()

	return Read(f)
}

func (c *Config) applyDefaults() {
	if c.DataDir == "" {
		c.DataDir = "data"
	}
	if c.Matching.Mode == "" {
		c.Matching.Mode = "sequential"
	}
	if c.Reports.Dir == "" {
		c.Reports.Dir = "reports"
	}
	if c.Reports.ChartWidth == 0 {
		c.Reports.ChartWidth = 900
	}
	if c.Reports.ChartHeight == 0 {
		c.Reports.ChartHeight = 300
	}
}

func (c *Config) Validate() error {
	if c.Matching.Mode != "sequential" && c.Matching.Mode != "fifo" {
		return fmt.Errorf("matching.mode must be 'sequential' or 'fifo', got %q", c.Matching.Mode)
	}
	if c.Validation.MaxSanePrice < 0 {
		return fmt.Errorf("validation.max_sane_price cannot be negative, got %v", c.Validation.MaxSanePrice)
	}
	if c.Account.StartingBalance < 0 {
		return fmt.Errorf("account.starting_balance cannot be negative, got %v", c.Account.StartingBalance)
	}
	for i, s := range c.Sources {
		if s.Source == nil {
			return fmt.Errorf("sources[%d] has no recognized source", i)
		}
	}
	return nil
}

// source configs

// FileExport points at a downloaded broker export. Format is an
// optional hint; when empty the file's header row decides.
type FileExport struct {
	Path   string `yaml:"path"`
	Format string `yaml:"format"`
}

// Alpaca holds API credentials for syncing fills directly from an
// Alpaca account.
type Alpaca struct {
	BaseUrl string `yaml:"base_url"`
	ApiKey  string `yaml:"api_key"`
	Secret  string `yaml:"secret"`
}

type Source interface{}

type SourceReference struct {
	Source Source
}

func (w *SourceReference) UnmarshalYAML(value *yaml.Node) error {
	if len(value.Content) == 0 {
		return nil
	}

	if value.Kind != yaml.MappingNode || len(value.Content) != 2 {
		return errors.New("invalid source yaml format")
	}

	key := value.Content[0].Value
	switch key {
	case "file":
		var file FileExport
		if err := value.Content[1].Decode(&file); err != nil {
			return fmt.Errorf("failed parsing file source config: %w", err)
		}
		w.Source = file
	case "alpaca":
		var alpaca Alpaca
		if err := value.Content[1].Decode(&alpaca); err != nil {
			return fmt.Errorf("failed parsing alpaca source config: %w", err)
		}
		w.Source = alpaca
	default:
		return fmt.Errorf("unknown source type: %s", key)
	}

	return nil
}
