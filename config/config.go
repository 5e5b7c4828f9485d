package config

import (
	"fmt"
	"os"
	"time"

	"go.yaml.in/yaml/v2"
)

const (
	// DefaultSeparator is the column separator rendered between adjacent
	// columns of the extracted table text.
	DefaultSeparator = "  "

	// AlignLeft and AlignCentered are the accepted column alignment names.
	AlignLeft     = "left"
	AlignCentered = "centered"
)

// Fetch download defaults.
const (
	DefaultUserAgent         = "ratreview/1.0"
	DefaultFetchTimeout      = 60 * time.Second
	DefaultMaxRetries        = 3
	DefaultInitialDelay      = time.Second
	DefaultMaxDelay          = 30 * time.Second
	DefaultBackoffMultiplier = 2.0
	DefaultRequestsPerSecond = 1.0
)

// Config describes the expected shape of a review document: its column
// layout and the legend sentences that define the compliance marks. The
// zero value is not usable; start from New.
type Config struct {
	// Separator between adjacent columns. Defaults to two spaces.
	Separator string `yaml:"separator"`

	// Columns is the ordered multi-line header template.
	Columns []Column `yaml:"columns"`

	// Legend holds the literal sentences that identify legend lines.
	Legend Legend `yaml:"legend"`

	// Fetch controls how review documents are downloaded.
	Fetch FetchConfig `yaml:"fetch"`
}

// FetchConfig controls document downloads: client identity, timeouts and
// the retry/backoff policy for transient failures. Zero values fall back
// to the package defaults.
type FetchConfig struct {
	// UserAgent sent with every download request.
	UserAgent string `yaml:"user_agent"`

	// Timeout for a single download request.
	Timeout time.Duration `yaml:"timeout"`

	// MaxRetries after the initial attempt.
	MaxRetries *int `yaml:"max_retries"`

	// InitialDelay before the first retry; later retries back off
	// exponentially by Multiplier up to MaxDelay.
	InitialDelay time.Duration `yaml:"initial_delay"`
	MaxDelay     time.Duration `yaml:"max_delay"`
	Multiplier   float64       `yaml:"multiplier"`

	// RequestsPerSecond paces requests to the source site.
	RequestsPerSecond float64 `yaml:"requests_per_second"`
}

// GetUserAgent returns the configured user agent or the default.
func (f FetchConfig) GetUserAgent() string {
	if f.UserAgent != "" {
		return f.UserAgent
	}
	return DefaultUserAgent
}

// GetTimeout returns the configured request timeout or the default.
func (f FetchConfig) GetTimeout() time.Duration {
	if f.Timeout > 0 {
		return f.Timeout
	}
	return DefaultFetchTimeout
}

// GetMaxRetries returns the configured retry count or the default.
// Explicitly setting zero disables retries.
func (f FetchConfig) GetMaxRetries() int {
	if f.MaxRetries != nil && *f.MaxRetries >= 0 {
		return *f.MaxRetries
	}
	return DefaultMaxRetries
}

// GetInitialDelay returns the configured initial retry delay or the default.
func (f FetchConfig) GetInitialDelay() time.Duration {
	if f.InitialDelay > 0 {
		return f.InitialDelay
	}
	return DefaultInitialDelay
}

// GetMaxDelay returns the configured backoff cap or the default.
func (f FetchConfig) GetMaxDelay() time.Duration {
	if f.MaxDelay > 0 {
		return f.MaxDelay
	}
	return DefaultMaxDelay
}

// GetMultiplier returns the configured backoff multiplier or the default.
func (f FetchConfig) GetMultiplier() float64 {
	if f.Multiplier > 1 {
		return f.Multiplier
	}
	return DefaultBackoffMultiplier
}

// GetRequestsPerSecond returns the configured request rate or the default.
func (f FetchConfig) GetRequestsPerSecond() float64 {
	if f.RequestsPerSecond > 0 {
		return f.RequestsPerSecond
	}
	return DefaultRequestsPerSecond
}

// Column configures one expected table column.
type Column struct {
	// Name uniquely identifies the column.
	Name string `yaml:"name"`

	// Labels is the header label fragment per header line, top to bottom;
	// empty where the column has no label on that line.
	Labels []string `yaml:"labels"`

	// Align is "left" or "centered".
	Align string `yaml:"align"`

	// StartAdjust shifts the column's slicing start offset. Negative values
	// widen the column to the left.
	StartAdjust int `yaml:"start_adjust"`
}

// Legend configures the sentences recognized, by substring containment, as
// indicator legend lines.
type Legend struct {
	Compliant        string `yaml:"compliant"`
	Noncompliant     string `yaml:"noncompliant"`
	MultipleProducts string `yaml:"multiple_products"`
	ProteinStudies   string `yaml:"protein_studies"`
}

// New returns the configuration for the TGA rapid antigen test post-market
// review document.
func New() *Config {
	return &Config{
		Separator: DefaultSeparator,
		Columns: []Column{
			{Name: "artg", Labels: []string{"ARTG"}, Align: AlignLeft},
			{Name: "sponsor", Labels: []string{"Sponsor"}, Align: AlignLeft},
			{Name: "manufacturer", Labels: []string{"Manufacturer"}, Align: AlignLeft},
			{Name: "name", Labels: []string{"Test Kit name"}, Align: AlignLeft},
			{Name: "batch", Labels: []string{"TGA testing", "", "Batch number"}, Align: AlignCentered},
			{Name: "wild", Labels: []string{"TGA", "testing", "", "Wild type", "analytical", "sensitivity"}, Align: AlignCentered},
			{Name: "delta", Labels: []string{"TGA", "testing", "", "Delta", "analytical", "sensitivity"}, Align: AlignCentered},
			{Name: "omicron", Labels: []string{"TGA", "testing", "", "Omicron", "analytical", "sensitivity"}, Align: AlignCentered},
			// The rendered device quality column is narrower than its values;
			// slicing starts three characters early to compensate.
			{Name: "quality", Labels: []string{"TGA", "testing", "", "Device", "quality"}, Align: AlignCentered, StartAdjust: -3},
			{Name: "provided", Labels: []string{"Manufacturer", "provided evidence"}, Align: AlignLeft},
		},
		Legend: Legend{
			Compliant: "Compliant with the WHO guidelines " +
				"(LOD within range 100-1000 TCID50/mL) during TGA validation",
			Noncompliant: "Non-compliant with the WHO guidelines " +
				"(LOD does not fall within the range 100-1000 TCID50/mL) during TGA validation",
			MultipleProducts: "Where multiple RATs are included under the one (1) ARTG number " +
				"and have the same product composition, they have",
			ProteinStudies: "In manufacturer provided evidence, " +
				"variants that have only been tested with recombinant protein studies.",
		},
	}
}

// Load reads configuration from a YAML file. Omitted fields keep the
// defaults from New.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg := New()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// GetSeparator returns the column separator, defaulting to two spaces.
func (c *Config) GetSeparator() string {
	if c.Separator != "" {
		return c.Separator
	}
	return DefaultSeparator
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if len(c.Columns) == 0 {
		return fmt.Errorf("at least one column is required")
	}
	names := make(map[string]bool, len(c.Columns))
	for i, col := range c.Columns {
		if col.Name == "" {
			return fmt.Errorf("columns[%d]: name cannot be empty", i)
		}
		if names[col.Name] {
			return fmt.Errorf("columns[%d]: duplicate name %q", i, col.Name)
		}
		names[col.Name] = true
		if col.Align != AlignLeft && col.Align != AlignCentered {
			return fmt.Errorf("columns[%d](%s): align must be %q or %q", i, col.Name, AlignLeft, AlignCentered)
		}
		labeled := false
		for _, label := range col.Labels {
			if label != "" {
				labeled = true
			}
		}
		if !labeled {
			return fmt.Errorf("columns[%d](%s): at least one label fragment is required", i, col.Name)
		}
	}
	if c.Legend.Compliant == "" || c.Legend.Noncompliant == "" {
		return fmt.Errorf("legend: compliant and noncompliant sentences are required")
	}
	if c.Legend.MultipleProducts == "" {
		return fmt.Errorf("legend: multiple_products sentence is required")
	}
	return nil
}
