// =============================================================================
// Oficina Recibos - Configuration Module
// =============================================================================
//
// This module loads the application configuration from a single YAML file.
// Every setting has a default, so the tool also runs without any file: a
// missing config.yaml is not an error.
//
// EXAMPLE (config.yaml):
//
//   store_file: ./dados/recibos.xlsx
//   output_dir: ./recibos_gerados
//   draft_file: ./dados/rascunho.yaml
//   logo_file: ./resources/logo.png
//   log_level: info
//   output_name_format: "recibo_{receipt}_{uuid}.pdf"
//   keep_documents: true
//   open_documents: true
//   postal_lookup:
//     base_url: https://viacep.com.br/ws
//     timeout: 5s
//   shop:
//     name: CR Soluções Automotivas
//     ...
//
// =============================================================================

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ginjaninja78/oficina-recibos/internal/types"
	"gopkg.in/yaml.v3"
)

// DefaultPath is the configuration file used when none is given.
const DefaultPath = "config.yaml"

// =============================================================================
// MAIN CONFIGURATION STRUCTURE
// =============================================================================

// MainConfig holds the global application configuration.
type MainConfig struct {
	// =========================================================================
	// FILE SETTINGS
	// =========================================================================

	// StoreFile is the workbook holding every receipt.
	// Default: "./dados/recibos.xlsx"
	StoreFile string `yaml:"store_file"`

	// OutputDir is the directory where generated documents are written.
	// Default: "./recibos_gerados"
	OutputDir string `yaml:"output_dir"`

	// DraftFile keeps the receipt being edited between commands.
	// Default: "./dados/rascunho.yaml"
	DraftFile string `yaml:"draft_file"`

	// LogoFile is an optional PNG or JPEG printed in the document header.
	// A missing file only produces a warning.
	// Default: "./resources/logo.png"
	LogoFile string `yaml:"logo_file"`

	// =========================================================================
	// LOGGING SETTINGS
	// =========================================================================

	// LogFile is an optional log file, in addition to stderr.
	// Default: "" (stderr only)
	LogFile string `yaml:"log_file"`

	// LogLevel controls the verbosity of logging.
	// Valid values: "debug", "info", "warn", "error"
	// Default: "info"
	LogLevel string `yaml:"log_level"`

	// =========================================================================
	// DOCUMENT SETTINGS
	// =========================================================================

	// OutputNameFormat defines the file name of generated documents.
	// Placeholders:
	//   {receipt}   - Receipt number
	//   {uuid}      - A random UUID
	//   {timestamp} - Current timestamp (YYYYMMDD_HHMMSS)
	//   {date}      - Current date (YYYYMMDD)
	//
	// Default: "recibo_{receipt}_{uuid}.pdf"
	OutputNameFormat string `yaml:"output_name_format"`

	// KeepDocuments keeps generated documents after the program exits.
	// When false they are treated as temporary files and removed at exit.
	// Default: true
	KeepDocuments *bool `yaml:"keep_documents"`

	// OpenDocuments opens each generated document with the default viewer.
	// Default: true
	OpenDocuments *bool `yaml:"open_documents"`

	// =========================================================================
	// POSTAL LOOKUP
	// =========================================================================

	// PostalLookup configures the address completion service.
	PostalLookup PostalLookupConfig `yaml:"postal_lookup"`

	// =========================================================================
	// SHOP IDENTITY
	// =========================================================================

	// Shop identifies the workshop on printed documents.
	Shop types.ShopInfo `yaml:"shop"`
}

// PostalLookupConfig configures the postal code service.
type PostalLookupConfig struct {
	// BaseURL is the service root; requests go to {base_url}/{cep}/json/.
	// Default: "https://viacep.com.br/ws"
	BaseURL string `yaml:"base_url"`

	// Timeout bounds each lookup.
	// Default: 5s
	Timeout time.Duration `yaml:"timeout"`
}

// Keep reports whether generated documents outlive the process.
func (c *MainConfig) Keep() bool {
	return c.KeepDocuments == nil || *c.KeepDocuments
}

// Open reports whether generated documents are opened after export.
func (c *MainConfig) Open() bool {
	return c.OpenDocuments == nil || *c.OpenDocuments
}

// DefaultShop is the workshop printed when the configuration names none.
var DefaultShop = types.ShopInfo{
	Name:       "CR Soluções Automotivas",
	Address:    "Estrada do barro vermelho 341 - Rocha Miranda - RJ",
	PostalCode: "21540-500",
	Phone:      "(21) 99757-0103 / 97125-0490",
	Email:      "thiagosoarescruz01@gmail.com",
	TaxID:      "48.969.894/0001-59",
}

// =============================================================================
// CONFIGURATION LOADING FUNCTIONS
// =============================================================================

// LoadMainConfig loads the main configuration from a YAML file.
//
// PARAMETERS:
//   - configPath: The path to the main configuration file. A missing file
//     yields the defaults.
//
// RETURNS:
//   - A pointer to the MainConfig struct.
//   - An error if the file cannot be read or parsed, or a directory cannot
//     be created.
func LoadMainConfig(configPath string) (*MainConfig, error) {
	var config MainConfig

	// Read the configuration file.
	data, err := os.ReadFile(configPath)
	switch {
	case errors.Is(err, os.ErrNotExist):
		// Defaults only.
	case err != nil:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	default:
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	// Apply default values.
	applyMainConfigDefaults(&config)

	// Validate the configuration.
	if err := validateMainConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// applyMainConfigDefaults sets default values for any unset configuration options.
func applyMainConfigDefaults(config *MainConfig) {
	if config.StoreFile == "" {
		config.StoreFile = "./dados/recibos.xlsx"
	}
	if config.OutputDir == "" {
		config.OutputDir = "./recibos_gerados"
	}
	if config.DraftFile == "" {
		config.DraftFile = "./dados/rascunho.yaml"
	}
	if config.LogoFile == "" {
		config.LogoFile = "./resources/logo.png"
	}
	if config.LogLevel == "" {
		config.LogLevel = "info"
	}
	if config.OutputNameFormat == "" {
		config.OutputNameFormat = "recibo_{receipt}_{uuid}.pdf"
	}
	if config.PostalLookup.BaseURL == "" {
		config.PostalLookup.BaseURL = "https://viacep.com.br/ws"
	}
	if config.PostalLookup.Timeout == 0 {
		config.PostalLookup.Timeout = 5 * time.Second
	}
	if config.Shop == (types.ShopInfo{}) {
		config.Shop = DefaultShop
	}
}

// validateMainConfig validates the main configuration.
func validateMainConfig(config *MainConfig) error {
	switch config.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level must be one of debug, info, warn, error, got %q", config.LogLevel)
	}
	if config.PostalLookup.Timeout < 0 {
		return fmt.Errorf("postal_lookup.timeout must not be negative")
	}

	// Create the directories the tool writes to.
	dirs := []string{
		filepath.Dir(config.StoreFile),
		config.OutputDir,
	}
	for _, dir := range dirs {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return fmt.Errorf("failed to create directory %s: %w", dir, err)
			}
		}
	}

	return nil
}
