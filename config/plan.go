package config

import (
	"fmt"
	"io/ioutil"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"github.com/zsmartex/powermatch/types"
	yaml "gopkg.in/yaml.v2"
)

var Plan *PlanConfig

// Trigger is a day-of-month and wall clock time ("hh:mm:ss") in the plan's
// timezone.
type Trigger struct {
	Day int    `yaml:"day"`
	At  string `yaml:"at"`
}

type ScheduleConfig struct {
	Monthly    Trigger `yaml:"monthly"`
	Repurchase Trigger `yaml:"repurchase"`
}

// PlanConfig is the compensation plan. It is loaded once at start and never
// mutated afterwards.
type PlanConfig struct {
	Commissions            map[types.Tier]decimal.Decimal
	MaxCommissionsPerDay   int64
	MinimumRepurchaseTotal decimal.Decimal
	TDSPercent             decimal.Decimal
	PlatformChargePercent  decimal.Decimal
	TaxEnabled             bool
	BatchSize              int
	MaxTreeDepth           int
	Location               *time.Location
	Schedule               ScheduleConfig
}

type planFile struct {
	Commissions            map[types.Tier]string `yaml:"commissions"`
	MaxCommissionsPerDay   int64                 `yaml:"max_commissions_per_day"`
	MinimumRepurchaseTotal string                `yaml:"minimum_repurchase_total"`
	TDSPercent             string                `yaml:"tds_percent"`
	PlatformChargePercent  string                `yaml:"platform_charge_percent"`
	TaxEnabled             bool                  `yaml:"tax_enabled"`
	BatchSize              int                   `yaml:"batch_size"`
	MaxTreeDepth           int                   `yaml:"max_tree_depth"`
	Timezone               string                `yaml:"timezone"`
	Schedule               ScheduleConfig        `yaml:"schedule"`
}

func LoadPlanConfig() error {
	plan, err := LoadPlan(GetEnv("PLAN_CONFIG", "config/plan.yml"))
	if err != nil {
		return err
	}

	if tz := os.Getenv("TIMEZONE"); tz != "" {
		location, err := time.LoadLocation(tz)
		if err != nil {
			return err
		}
		plan.Location = location
	}
	plan.TaxEnabled = GetEnvAsBool("TDS_ENABLED", plan.TaxEnabled)

	Plan = plan

	return nil
}

func LoadPlan(path string) (*PlanConfig, error) {
	buf, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, err
	}

	return ParsePlan(buf)
}

func ParsePlan(buf []byte) (*PlanConfig, error) {
	raw := &planFile{
		BatchSize:    150,
		MaxTreeDepth: 100000,
		Timezone:     "UTC",
	}
	if err := yaml.Unmarshal(buf, raw); err != nil {
		return nil, err
	}

	plan := &PlanConfig{
		Commissions:          make(map[types.Tier]decimal.Decimal),
		MaxCommissionsPerDay: raw.MaxCommissionsPerDay,
		TaxEnabled:           raw.TaxEnabled,
		BatchSize:            raw.BatchSize,
		MaxTreeDepth:         raw.MaxTreeDepth,
		Schedule:             raw.Schedule,
	}

	for tier, rate := range raw.Commissions {
		value, err := decimal.NewFromString(rate)
		if err != nil {
			return nil, fmt.Errorf("commission for %s: %w", tier, err)
		}
		plan.Commissions[tier] = value
	}

	var err error
	if plan.MinimumRepurchaseTotal, err = parseAmount("minimum_repurchase_total", raw.MinimumRepurchaseTotal); err != nil {
		return nil, err
	}
	if plan.TDSPercent, err = parseAmount("tds_percent", raw.TDSPercent); err != nil {
		return nil, err
	}
	if plan.PlatformChargePercent, err = parseAmount("platform_charge_percent", raw.PlatformChargePercent); err != nil {
		return nil, err
	}
	if plan.Location, err = time.LoadLocation(raw.Timezone); err != nil {
		return nil, err
	}

	return plan, plan.Validate()
}

func parseAmount(name, value string) (decimal.Decimal, error) {
	if value == "" {
		return decimal.Zero, nil
	}

	amount, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s: %w", name, err)
	}

	return amount, nil
}

func (p *PlanConfig) Validate() error {
	for _, tier := range types.MatchingTiers {
		rate, ok := p.Commissions[tier]
		if !ok {
			return fmt.Errorf("commission for %s is missing", tier)
		}
		if rate.IsNegative() {
			return fmt.Errorf("commission for %s is negative", tier)
		}
	}

	hundred := decimal.NewFromInt(100)
	switch {
	case p.MaxCommissionsPerDay < 1:
		return fmt.Errorf("max_commissions_per_day must be at least 1")
	case p.MinimumRepurchaseTotal.IsNegative():
		return fmt.Errorf("minimum_repurchase_total is negative")
	case p.TDSPercent.IsNegative() || p.TDSPercent.GreaterThan(hundred):
		return fmt.Errorf("tds_percent must be within 0..100")
	case p.PlatformChargePercent.IsNegative() || p.PlatformChargePercent.GreaterThan(hundred):
		return fmt.Errorf("platform_charge_percent must be within 0..100")
	case p.BatchSize < 1:
		return fmt.Errorf("batch_size must be at least 1")
	case p.MaxTreeDepth < 1:
		return fmt.Errorf("max_tree_depth must be at least 1")
	}

	for name, trigger := range map[string]Trigger{"monthly": p.Schedule.Monthly, "repurchase": p.Schedule.Repurchase} {
		if trigger.Day < 1 || trigger.Day > 28 {
			return fmt.Errorf("schedule.%s.day must be within 1..28", name)
		}
		if _, err := time.Parse("15:04:05", trigger.At); err != nil {
			return fmt.Errorf("schedule.%s.at: %w", name, err)
		}
	}

	return nil
}

// CommissionRate returns the flat amount paid per matched unit of tier.
func (p *PlanConfig) CommissionRate(tier types.Tier) decimal.Decimal {
	return p.Commissions[tier]
}
