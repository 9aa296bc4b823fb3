package voyageconfig

import (
	"bytes"
	"strings"
	"testing"
)

func TestDefaultConfigValidates(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate, got: %v", err)
	}
}

func TestConfigJSONRoundTrip(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ResolveInterval = 45 * cfg.ResolveInterval / 30 // arbitrary distinct value derived from default

	var buf bytes.Buffer
	if err := cfg.SaveConfigToWriter(&buf); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	loaded, err := LoadConfigFromReader(&buf)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if loaded.ResolveInterval != cfg.ResolveInterval {
		t.Errorf("expected resolve_interval %v, got %v", cfg.ResolveInterval, loaded.ResolveInterval)
	}
	if loaded.CapacityKWh != cfg.CapacityKWh {
		t.Errorf("expected capacity_kwh %v, got %v", cfg.CapacityKWh, loaded.CapacityKWh)
	}
}

func TestValidateRejectsBadFractions(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MinOperatingSOCFraction = 1.5
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected an error for out-of-range min_operating_soc_fraction")
	}
}

func TestValidateRequiresAPersistenceBackend(t *testing.T) {
	cfg := DefaultConfig()
	cfg.PostgresConnString = ""
	cfg.SQLitePath = ""
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "postgres_conn_string or sqlite_path") {
		t.Fatalf("expected a persistence-backend error, got: %v", err)
	}
}

func TestYAMLRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/voyage.yaml"

	cfg := DefaultConfig()
	cfg.VesselType = "ropax"
	if err := cfg.SaveConfigYAML(path); err != nil {
		t.Fatalf("save yaml failed: %v", err)
	}

	loaded, err := LoadConfigYAML(path)
	if err != nil {
		t.Fatalf("load yaml failed: %v", err)
	}
	if loaded.VesselType != "ropax" {
		t.Errorf("expected vessel_type ropax, got %s", loaded.VesselType)
	}
	if loaded.ResolveInterval != cfg.ResolveInterval {
		t.Errorf("expected resolve_interval %v, got %v", cfg.ResolveInterval, loaded.ResolveInterval)
	}
}
