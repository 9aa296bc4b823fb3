// Package voyageconfig holds the on-disk configuration for the voyage
// scheduler and API server: the vessel profile, the re-solve cadence, and
// the ambient service settings (logging, persistence, HTTP, Modbus).
package voyageconfig

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"
)

// Config is the scheduler's full on-disk configuration.
type Config struct {
	// Re-solve cadence
	ResolveInterval   time.Duration `json:"resolve_interval" yaml:"resolve_interval"`
	PortLinkInterval  time.Duration `json:"port_link_interval" yaml:"port_link_interval"`
	SolveTimeout      time.Duration `json:"solve_timeout" yaml:"solve_timeout"`
	DryRun            bool          `json:"dry_run" yaml:"dry_run"`

	// Vessel profile
	VesselType              string  `json:"vessel_type" yaml:"vessel_type"`
	GrossTonnage             float64 `json:"gross_tonnage" yaml:"gross_tonnage"`
	CapacityKWh              float64 `json:"capacity_kwh" yaml:"capacity_kwh"`
	PerContainerKWh          float64 `json:"per_container_kwh" yaml:"per_container_kwh"`
	MinOperatingSOCFraction  float64 `json:"min_operating_soc_fraction" yaml:"min_operating_soc_fraction"`
	MinFinalSOCFraction      float64 `json:"min_final_soc_fraction" yaml:"min_final_soc_fraction"`
	MaxChargeAcceptKWhPerHr  float64 `json:"max_charge_accept_kwh_per_hr" yaml:"max_charge_accept_kwh_per_hr"`
	LadenSpeedKn             float64 `json:"laden_speed_kn" yaml:"laden_speed_kn"`
	UnladenSpeedKn           float64 `json:"unladen_speed_kn" yaml:"unladen_speed_kn"`
	LadenConsumptionPerNM    float64 `json:"laden_consumption_per_nm" yaml:"laden_consumption_per_nm"`
	UnladenConsumptionPerNM  float64 `json:"unladen_consumption_per_nm" yaml:"unladen_consumption_per_nm"`

	// DP discretization
	SOCStepKWh  float64 `json:"soc_step_kwh" yaml:"soc_step_kwh"`
	TimeQuantHr float64 `json:"time_quant_hr" yaml:"time_quant_hr"`

	// Route reference data
	RouteFile string `json:"route_file" yaml:"route_file"`

	// Logging
	LogLevel  string `json:"log_level" yaml:"log_level"`
	LogFormat string `json:"log_format" yaml:"log_format"`

	// Location, used for the dashboard's sunrise/sunset and solar-angle info
	Latitude  float64 `json:"latitude" yaml:"latitude"`
	Longitude float64 `json:"longitude" yaml:"longitude"`

	// Persistence
	PostgresConnString string `json:"postgres_conn_string" yaml:"postgres_conn_string"`
	SQLitePath         string `json:"sqlite_path" yaml:"sqlite_path"`

	// Port-controller Modbus link
	PortLinkAddress string        `json:"port_link_address" yaml:"port_link_address"`
	PortLinkTimeout time.Duration `json:"port_link_timeout" yaml:"port_link_timeout"`

	// HTTP API
	HTTPAddr        string `json:"http_addr" yaml:"http_addr"`
	HealthCheckPort int    `json:"health_check_port" yaml:"health_check_port"`
	AllowedOrigins  []string `json:"allowed_origins" yaml:"allowed_origins"`
}

// DefaultConfig returns a configuration with reasonable defaults for a
// mid-size coastal container feeder.
func DefaultConfig() *Config {
	return &Config{
		ResolveInterval:         30 * time.Minute,
		PortLinkInterval:        1 * time.Minute,
		SolveTimeout:            30 * time.Second,
		DryRun:                  false,
		VesselType:              "container",
		GrossTonnage:            12000,
		CapacityKWh:             12000,
		PerContainerKWh:         3000,
		MinOperatingSOCFraction: 0.1,
		MinFinalSOCFraction:     0.15,
		MaxChargeAcceptKWhPerHr: 1000,
		LadenSpeedKn:            12,
		UnladenSpeedKn:          14,
		LadenConsumptionPerNM:   245,
		UnladenConsumptionPerNM: 180,
		SOCStepKWh:              100,
		TimeQuantHr:             0.25,
		RouteFile:               "route.json",
		LogLevel:                "info",
		LogFormat:               "text",
		Latitude:                51.5,
		Longitude:               -0.12,
		PostgresConnString:      "",
		SQLitePath:              "voyage.db",
		PortLinkAddress:         "",
		PortLinkTimeout:         5 * time.Second,
		HTTPAddr:                ":8080",
		HealthCheckPort:         0,
		AllowedOrigins:          []string{"*"},
	}
}

// LoadConfig loads configuration from a JSON file.
func LoadConfig(filename string) (*Config, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	return LoadConfigFromReader(file)
}

// LoadConfigFromReader loads configuration from an io.Reader of JSON.
func LoadConfigFromReader(reader io.Reader) (*Config, error) {
	config := DefaultConfig()

	decoder := json.NewDecoder(reader)
	if err := decoder.Decode(config); err != nil {
		return nil, fmt.Errorf("failed to decode config JSON: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// SaveConfig saves the configuration to a JSON file.
func (c *Config) SaveConfig(filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer file.Close()

	return c.SaveConfigToWriter(file)
}

// SaveConfigToWriter saves the configuration as indented JSON.
func (c *Config) SaveConfigToWriter(writer io.Writer) error {
	encoder := json.NewEncoder(writer)
	encoder.SetIndent("", "  ")

	if err := encoder.Encode(c); err != nil {
		return fmt.Errorf("failed to encode config JSON: %w", err)
	}
	return nil
}

// Validate checks the configuration's invariants.
func (c *Config) Validate() error {
	if c.ResolveInterval <= 0 {
		return fmt.Errorf("resolve_interval must be greater than 0, got: %s", c.ResolveInterval)
	}
	if c.SolveTimeout <= 0 {
		return fmt.Errorf("solve_timeout must be greater than 0, got: %s", c.SolveTimeout)
	}
	if c.CapacityKWh <= 0 {
		return fmt.Errorf("capacity_kwh must be positive, got: %f", c.CapacityKWh)
	}
	if c.PerContainerKWh <= 0 {
		return fmt.Errorf("per_container_kwh must be positive, got: %f", c.PerContainerKWh)
	}
	if c.MinOperatingSOCFraction < 0 || c.MinOperatingSOCFraction > 1 {
		return fmt.Errorf("min_operating_soc_fraction must be within [0, 1], got: %f", c.MinOperatingSOCFraction)
	}
	if c.MinFinalSOCFraction < c.MinOperatingSOCFraction || c.MinFinalSOCFraction > 1 {
		return fmt.Errorf("min_final_soc_fraction must be within [min_operating_soc_fraction, 1], got: %f", c.MinFinalSOCFraction)
	}
	if c.SOCStepKWh <= 0 {
		return fmt.Errorf("soc_step_kwh must be positive, got: %f", c.SOCStepKWh)
	}
	if c.TimeQuantHr <= 0 {
		return fmt.Errorf("time_quant_hr must be positive, got: %f", c.TimeQuantHr)
	}
	if c.RouteFile == "" {
		return fmt.Errorf("route_file cannot be empty")
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log_level: %s, must be one of: debug, info, warn, error", c.LogLevel)
	}
	validLogFormats := map[string]bool{"text": true, "json": true}
	if !validLogFormats[c.LogFormat] {
		return fmt.Errorf("invalid log_format: %s, must be one of: text, json", c.LogFormat)
	}
	if c.Latitude < -90 || c.Latitude > 90 {
		return fmt.Errorf("latitude must be between -90 and 90, got: %f", c.Latitude)
	}
	if c.Longitude < -180 || c.Longitude > 180 {
		return fmt.Errorf("longitude must be between -180 and 180, got: %f", c.Longitude)
	}
	if c.HealthCheckPort < 0 || c.HealthCheckPort > 65535 {
		return fmt.Errorf("health_check_port must be between 0 and 65535, got: %d", c.HealthCheckPort)
	}
	if c.PostgresConnString == "" && c.SQLitePath == "" {
		return fmt.Errorf("one of postgres_conn_string or sqlite_path must be set")
	}
	return nil
}

// MarshalJSON renders time.Duration fields as Go duration strings.
func (c *Config) MarshalJSON() ([]byte, error) {
	type Alias Config
	return json.Marshal(&struct {
		*Alias
		ResolveInterval  string `json:"resolve_interval"`
		PortLinkInterval string `json:"port_link_interval"`
		SolveTimeout     string `json:"solve_timeout"`
		PortLinkTimeout  string `json:"port_link_timeout"`
	}{
		Alias:            (*Alias)(c),
		ResolveInterval:  c.ResolveInterval.String(),
		PortLinkInterval: c.PortLinkInterval.String(),
		SolveTimeout:     c.SolveTimeout.String(),
		PortLinkTimeout:  c.PortLinkTimeout.String(),
	})
}

// UnmarshalJSON parses time.Duration fields from Go duration strings.
func (c *Config) UnmarshalJSON(data []byte) error {
	type Alias Config
	aux := &struct {
		*Alias
		ResolveInterval  string `json:"resolve_interval"`
		PortLinkInterval string `json:"port_link_interval"`
		SolveTimeout     string `json:"solve_timeout"`
		PortLinkTimeout  string `json:"port_link_timeout"`
	}{
		Alias: (*Alias)(c),
	}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	var err error
	if aux.ResolveInterval != "" {
		if c.ResolveInterval, err = time.ParseDuration(aux.ResolveInterval); err != nil {
			return fmt.Errorf("invalid resolve_interval: %w", err)
		}
	}
	if aux.PortLinkInterval != "" {
		if c.PortLinkInterval, err = time.ParseDuration(aux.PortLinkInterval); err != nil {
			return fmt.Errorf("invalid port_link_interval: %w", err)
		}
	}
	if aux.SolveTimeout != "" {
		if c.SolveTimeout, err = time.ParseDuration(aux.SolveTimeout); err != nil {
			return fmt.Errorf("invalid solve_timeout: %w", err)
		}
	}
	if aux.PortLinkTimeout != "" {
		if c.PortLinkTimeout, err = time.ParseDuration(aux.PortLinkTimeout); err != nil {
			return fmt.Errorf("invalid port_link_timeout: %w", err)
		}
	}
	return nil
}

// String returns an indented JSON representation of the config.
func (c *Config) String() string {
	data, _ := json.MarshalIndent(c, "", "  ")
	return string(data)
}
