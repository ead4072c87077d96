package latency

import (
	"encoding/json"
	"fmt"
	"os"
)

// TimingConfig holds the cycle costs of the core's execution units and
// the sizing of its front-end predictors. Values mirror the RTL
// defaults.
type TimingConfig struct {
	// MulLatency is the occupancy of the integer multiplier.
	// Default: 3 cycles.
	MulLatency int `json:"mul_latency"`

	// DivLatencyMin is the fixed setup cost of the iterative integer
	// divider. The divider retires one quotient bit per cycle on top
	// of this, so total latency depends on the dividend magnitude.
	// Default: 10 cycles.
	DivLatencyMin int `json:"div_latency_min"`

	// DivLatencyMax caps the integer divide latency.
	// Default: 42 cycles.
	DivLatencyMax int `json:"div_latency_max"`

	// FPAddLatency is the occupancy of the FP add/subtract path.
	// Default: 4 cycles.
	FPAddLatency int `json:"fp_add_latency"`

	// FPMulLatency is the occupancy of the FP multiplier.
	// Default: 4 cycles.
	FPMulLatency int `json:"fp_mul_latency"`

	// FPDivLatencyMin is the setup cost of the iterative FP divider;
	// the mantissa width of the dividend adds to it.
	// Default: 16 cycles.
	FPDivLatencyMin int `json:"fp_div_latency_min"`

	// FPDivLatencyMax caps the FP divide latency.
	// Default: 32 cycles.
	FPDivLatencyMax int `json:"fp_div_latency_max"`

	// FPSqrtLatency is the occupancy of the FP square-root unit.
	// Default: 16 cycles.
	FPSqrtLatency int `json:"fp_sqrt_latency"`

	// WFIWakeLatency is how long a WFI parks the pipeline before the
	// wake event arrives. With no external interrupt sources modeled
	// the wake is a fixed delay. Default: 8 cycles.
	WFIWakeLatency int `json:"wfi_wake_latency"`

	// BTBEntries is the number of branch target buffer entries; it
	// must be a power of two. Default: 64.
	BTBEntries int `json:"btb_entries"`

	// RASDepth is the return address stack depth. Default: 16.
	RASDepth int `json:"ras_depth"`
}

// DefaultTimingConfig returns a TimingConfig with the RTL's default
// unit timings.
func DefaultTimingConfig() *TimingConfig {
	return &TimingConfig{
		MulLatency:      3,
		DivLatencyMin:   10,
		DivLatencyMax:   42,
		FPAddLatency:    4,
		FPMulLatency:    4,
		FPDivLatencyMin: 16,
		FPDivLatencyMax: 32,
		FPSqrtLatency:   16,
		WFIWakeLatency:  8,
		BTBEntries:      64,
		RASDepth:        16,
	}
}

// LoadConfig loads a TimingConfig from a JSON file. Missing fields
// keep their defaults.
func LoadConfig(path string) (*TimingConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading timing config: %w", err)
	}

	config := DefaultTimingConfig()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parsing timing config: %w", err)
	}

	return config, nil
}

// SaveConfig writes the configuration to path as indented JSON.
func (c *TimingConfig) SaveConfig(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("serializing timing config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing timing config: %w", err)
	}

	return nil
}

// Validate checks that the configuration is internally consistent.
func (c *TimingConfig) Validate() error {
	if c.MulLatency <= 0 {
		return fmt.Errorf("mul_latency must be > 0")
	}
	if c.DivLatencyMin <= 0 {
		return fmt.Errorf("div_latency_min must be > 0")
	}
	if c.DivLatencyMin > c.DivLatencyMax {
		return fmt.Errorf("div_latency_min must be <= div_latency_max")
	}
	if c.FPAddLatency <= 0 || c.FPMulLatency <= 0 {
		return fmt.Errorf("fp add/mul latencies must be > 0")
	}
	if c.FPDivLatencyMin <= 0 {
		return fmt.Errorf("fp_div_latency_min must be > 0")
	}
	if c.FPDivLatencyMin > c.FPDivLatencyMax {
		return fmt.Errorf("fp_div_latency_min must be <= fp_div_latency_max")
	}
	if c.FPSqrtLatency <= 0 {
		return fmt.Errorf("fp_sqrt_latency must be > 0")
	}
	if c.WFIWakeLatency <= 0 {
		return fmt.Errorf("wfi_wake_latency must be > 0")
	}
	if c.BTBEntries <= 0 || c.BTBEntries&(c.BTBEntries-1) != 0 {
		return fmt.Errorf("btb_entries must be a power of two")
	}
	if c.RASDepth <= 0 {
		return fmt.Errorf("ras_depth must be > 0")
	}
	return nil
}

// Clone returns an independent copy, so callers can derive variant
// configurations without aliasing the original.
func (c *TimingConfig) Clone() *TimingConfig {
	clone := *c
	return &clone
}
