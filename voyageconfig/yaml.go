package voyageconfig

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// yamlAlias mirrors Config but spells out durations as strings, since
// yaml.v3 has no built-in time.Duration support.
type yamlAlias struct {
	ResolveInterval  string `yaml:"resolve_interval"`
	PortLinkInterval string `yaml:"port_link_interval"`
	SolveTimeout     string `yaml:"solve_timeout"`
	PortLinkTimeout  string `yaml:"port_link_timeout"`
	DryRun           bool   `yaml:"dry_run"`

	VesselType              string  `yaml:"vessel_type"`
	GrossTonnage             float64 `yaml:"gross_tonnage"`
	CapacityKWh              float64 `yaml:"capacity_kwh"`
	PerContainerKWh          float64 `yaml:"per_container_kwh"`
	MinOperatingSOCFraction  float64 `yaml:"min_operating_soc_fraction"`
	MinFinalSOCFraction      float64 `yaml:"min_final_soc_fraction"`
	MaxChargeAcceptKWhPerHr  float64 `yaml:"max_charge_accept_kwh_per_hr"`
	LadenSpeedKn             float64 `yaml:"laden_speed_kn"`
	UnladenSpeedKn           float64 `yaml:"unladen_speed_kn"`
	LadenConsumptionPerNM    float64 `yaml:"laden_consumption_per_nm"`
	UnladenConsumptionPerNM  float64 `yaml:"unladen_consumption_per_nm"`

	SOCStepKWh  float64 `yaml:"soc_step_kwh"`
	TimeQuantHr float64 `yaml:"time_quant_hr"`

	RouteFile string `yaml:"route_file"`

	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`

	Latitude  float64 `yaml:"latitude"`
	Longitude float64 `yaml:"longitude"`

	PostgresConnString string `yaml:"postgres_conn_string"`
	SQLitePath         string `yaml:"sqlite_path"`

	PortLinkAddress string `yaml:"port_link_address"`

	HTTPAddr        string   `yaml:"http_addr"`
	HealthCheckPort int      `yaml:"health_check_port"`
	AllowedOrigins  []string `yaml:"allowed_origins"`
}

func (c *Config) toYAMLAlias() yamlAlias {
	return yamlAlias{
		ResolveInterval:         c.ResolveInterval.String(),
		PortLinkInterval:        c.PortLinkInterval.String(),
		SolveTimeout:            c.SolveTimeout.String(),
		PortLinkTimeout:         c.PortLinkTimeout.String(),
		DryRun:                  c.DryRun,
		VesselType:              c.VesselType,
		GrossTonnage:            c.GrossTonnage,
		CapacityKWh:             c.CapacityKWh,
		PerContainerKWh:         c.PerContainerKWh,
		MinOperatingSOCFraction: c.MinOperatingSOCFraction,
		MinFinalSOCFraction:     c.MinFinalSOCFraction,
		MaxChargeAcceptKWhPerHr: c.MaxChargeAcceptKWhPerHr,
		LadenSpeedKn:            c.LadenSpeedKn,
		UnladenSpeedKn:          c.UnladenSpeedKn,
		LadenConsumptionPerNM:   c.LadenConsumptionPerNM,
		UnladenConsumptionPerNM: c.UnladenConsumptionPerNM,
		SOCStepKWh:              c.SOCStepKWh,
		TimeQuantHr:             c.TimeQuantHr,
		RouteFile:               c.RouteFile,
		LogLevel:                c.LogLevel,
		LogFormat:               c.LogFormat,
		Latitude:                c.Latitude,
		Longitude:               c.Longitude,
		PostgresConnString:      c.PostgresConnString,
		SQLitePath:              c.SQLitePath,
		PortLinkAddress:         c.PortLinkAddress,
		HTTPAddr:                c.HTTPAddr,
		HealthCheckPort:         c.HealthCheckPort,
		AllowedOrigins:          c.AllowedOrigins,
	}
}

func (c *Config) fromYAMLAlias(a yamlAlias) error {
	var err error
	if c.ResolveInterval, err = time.ParseDuration(a.ResolveInterval); err != nil {
		return fmt.Errorf("invalid resolve_interval: %w", err)
	}
	if c.PortLinkInterval, err = time.ParseDuration(a.PortLinkInterval); err != nil {
		return fmt.Errorf("invalid port_link_interval: %w", err)
	}
	if c.SolveTimeout, err = time.ParseDuration(a.SolveTimeout); err != nil {
		return fmt.Errorf("invalid solve_timeout: %w", err)
	}
	if a.PortLinkTimeout != "" {
		if c.PortLinkTimeout, err = time.ParseDuration(a.PortLinkTimeout); err != nil {
			return fmt.Errorf("invalid port_link_timeout: %w", err)
		}
	}

	c.DryRun = a.DryRun
	c.VesselType = a.VesselType
	c.GrossTonnage = a.GrossTonnage
	c.CapacityKWh = a.CapacityKWh
	c.PerContainerKWh = a.PerContainerKWh
	c.MinOperatingSOCFraction = a.MinOperatingSOCFraction
	c.MinFinalSOCFraction = a.MinFinalSOCFraction
	c.MaxChargeAcceptKWhPerHr = a.MaxChargeAcceptKWhPerHr
	c.LadenSpeedKn = a.LadenSpeedKn
	c.UnladenSpeedKn = a.UnladenSpeedKn
	c.LadenConsumptionPerNM = a.LadenConsumptionPerNM
	c.UnladenConsumptionPerNM = a.UnladenConsumptionPerNM
	c.SOCStepKWh = a.SOCStepKWh
	c.TimeQuantHr = a.TimeQuantHr
	c.RouteFile = a.RouteFile
	c.LogLevel = a.LogLevel
	c.LogFormat = a.LogFormat
	c.Latitude = a.Latitude
	c.Longitude = a.Longitude
	c.PostgresConnString = a.PostgresConnString
	c.SQLitePath = a.SQLitePath
	c.PortLinkAddress = a.PortLinkAddress
	c.HTTPAddr = a.HTTPAddr
	c.HealthCheckPort = a.HealthCheckPort
	c.AllowedOrigins = a.AllowedOrigins
	return nil
}

// LoadConfigYAML loads configuration from a YAML file, applying the same
// defaults and validation as LoadConfig.
func LoadConfigYAML(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	alias := config.toYAMLAlias()
	if err := yaml.Unmarshal(data, &alias); err != nil {
		return nil, fmt.Errorf("failed to decode config YAML: %w", err)
	}
	if err := config.fromYAMLAlias(alias); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return config, nil
}

// SaveConfigYAML saves the configuration to a YAML file.
func (c *Config) SaveConfigYAML(filename string) error {
	data, err := yaml.Marshal(c.toYAMLAlias())
	if err != nil {
		return fmt.Errorf("failed to encode config YAML: %w", err)
	}
	return os.WriteFile(filename, data, 0o644)
}
