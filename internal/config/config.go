// Package config loads and validates PreApply's risk-scoring, shared-
// resource, and cost-alert configuration. All tunable analysis
// behavior is reached only through this schema; the configuration is read
// once at startup and passed as an immutable argument to every stage.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/akileshthuniki/preapply/internal/apperr"
)

const (
	configDirName  = ".preapply"
	configFileName = "config.yaml"
	envVarName     = "PREAPPLY_CONFIG"
)

// Config is the full risk-scoring/shared-resources/cost-alerts schema.
type Config struct {
	RiskScoring     RiskScoring     `yaml:"risk_scoring"`
	SharedResources SharedResources `yaml:"shared_resources"`
	CostAlerts      CostAlerts      `yaml:"cost_alerts"`
}

type RiskScoring struct {
	DataLoss       DataLossConfig       `yaml:"data_loss"`
	Security       SecurityConfig       `yaml:"security"`
	Infrastructure InfrastructureConfig `yaml:"infrastructure"`
	Cost           CostDimensionConfig  `yaml:"cost"`
	Interactions   InteractionsConfig   `yaml:"interactions"`
	BlastRadius    BlastRadiusConfig    `yaml:"blast_radius"`
	Thresholds     ThresholdsConfig     `yaml:"thresholds"`
}

type DataLossConfig struct {
	BaseWeight                 float64 `yaml:"base_weight"`
	DecayFactor                float64 `yaml:"decay_factor"`
	StateDestructiveMultiplier float64 `yaml:"state_destructive_multiplier"`
}

type SecurityConfig struct {
	BaseWeight          float64 `yaml:"base_weight"`
	DecayFactor         float64 `yaml:"decay_factor"`
	SensitivePortPenalty float64 `yaml:"sensitive_port_penalty"`
	SensitivePorts      []int   `yaml:"sensitive_ports"`
}

type InfrastructureConfig struct {
	SharedResourceBase float64 `yaml:"shared_resource_base"`
	CriticalMultiplier float64 `yaml:"critical_multiplier"`
}

type CostDimensionConfig struct {
	CreationWeight float64 `yaml:"creation_weight"`
	ScalingWeight  float64 `yaml:"scaling_weight"`
	DecayFactor    float64 `yaml:"decay_factor"`
}

type InteractionsConfig struct {
	DataSecurityBonus    float64 `yaml:"data_security_bonus"`
	DataSecurityData     float64 `yaml:"data_security_data_threshold"`
	DataSecuritySecurity float64 `yaml:"data_security_security_threshold"`

	InfraSecurityBonus     float64 `yaml:"infra_security_bonus"`
	InfraSecurityInfra     float64 `yaml:"infra_security_infra_threshold"`
	InfraSecuritySecurity  float64 `yaml:"infra_security_security_threshold"`

	DataInfraBonus     float64 `yaml:"data_infra_bonus"`
	DataInfraData      float64 `yaml:"data_infra_data_threshold"`
	DataInfraInfra     float64 `yaml:"data_infra_infra_threshold"`

	CostInfraBonus float64 `yaml:"cost_infra_bonus"`
	CostInfraCost  float64 `yaml:"cost_infra_cost_threshold"`
	CostInfraInfra float64 `yaml:"cost_infra_infra_threshold"`

	PerfectStormThreshold float64 `yaml:"perfect_storm_threshold"`
	PerfectStormBonus     float64 `yaml:"perfect_storm_bonus"`
	TwoDimBonus           float64 `yaml:"two_dim_bonus"`
}

type BlastRadiusConfig struct {
	Weights BlastRadiusWeights `yaml:"weights"`
}

type BlastRadiusWeights struct {
	Data           float64 `yaml:"data"`
	Security       float64 `yaml:"security"`
	Infrastructure float64 `yaml:"infrastructure"`
	Cost           float64 `yaml:"cost"`
}

type ThresholdsConfig struct {
	CriticalCatastrophic float64 `yaml:"critical_catastrophic"`
	Critical             float64 `yaml:"critical"`
	HighSevere           float64 `yaml:"high_severe"`
	High                 float64 `yaml:"high"`
	Medium               float64 `yaml:"medium"`
}

type SharedResources struct {
	CriticalTypes       []string `yaml:"critical_types"`
	SensitiveDeleteTypes []string `yaml:"sensitive_delete_types"`
}

type CostAlerts struct {
	HighCostTypes         []string        `yaml:"high_cost_types"`
	HighCostInstanceTypes []string        `yaml:"high_cost_instance_types"`
	InstanceCostTiers     []InstanceTier  `yaml:"instance_cost_tiers"`
}

// InstanceTier maps an instance-type prefix to a tier index; a higher tier
// index means a more expensive instance family.
type InstanceTier struct {
	Prefix string `yaml:"prefix"`
	Tier   int    `yaml:"tier"`
}

// Default returns the risk-scoring, shared-resource, and cost-alert
// defaults used when no config file is present.
func Default() *Config {
	return &Config{
		RiskScoring: RiskScoring{
			DataLoss: DataLossConfig{
				BaseWeight:                 50,
				DecayFactor:                0.85,
				StateDestructiveMultiplier: 0.6,
			},
			Security: SecurityConfig{
				BaseWeight:           40,
				DecayFactor:          0.90,
				SensitivePortPenalty: 20,
				SensitivePorts:       []int{22, 3389, 1433, 3306, 5432, 5439, 27017},
			},
			Infrastructure: InfrastructureConfig{
				SharedResourceBase: 30,
				CriticalMultiplier: 1.3,
			},
			Cost: CostDimensionConfig{
				CreationWeight: 15,
				ScalingWeight:  10,
				DecayFactor:    0.90,
			},
			Interactions: InteractionsConfig{
				DataSecurityBonus:    0.35,
				DataSecurityData:     40,
				DataSecuritySecurity: 40,

				InfraSecurityBonus:    0.30,
				InfraSecurityInfra:    60,
				InfraSecuritySecurity: 40,

				DataInfraBonus: 0.25,
				DataInfraData:  40,
				DataInfraInfra: 60,

				CostInfraBonus: 0.20,
				CostInfraCost:  30,
				CostInfraInfra: 60,

				PerfectStormThreshold: 35,
				PerfectStormBonus:     0.40,
				TwoDimBonus:           0.15,
			},
			BlastRadius: BlastRadiusConfig{
				Weights: BlastRadiusWeights{
					Data:           0.2,
					Security:       0.4,
					Infrastructure: 1.0,
					Cost:           0.5,
				},
			},
			Thresholds: ThresholdsConfig{
				CriticalCatastrophic: 200,
				Critical:             150,
				HighSevere:           100,
				High:                 70,
				Medium:               40,
			},
		},
		SharedResources: SharedResources{
			CriticalTypes: []string{
				"aws_vpc", "aws_lb", "aws_alb", "aws_nlb", "aws_subnet",
				"aws_eks_cluster", "aws_ecs_cluster", "aws_rds_cluster",
				"aws_elasticache_replication_group",
			},
			SensitiveDeleteTypes: []string{
				"aws_db_instance", "aws_rds_cluster", "aws_s3_bucket", "aws_dynamodb_table",
			},
		},
		CostAlerts: CostAlerts{
			HighCostTypes: []string{"aws_nat_gateway", "aws_eks_cluster", "aws_elasticache_replication_group"},
			HighCostInstanceTypes: []string{
				"m5.4xlarge", "m5.8xlarge", "m5.12xlarge", "r5.4xlarge", "r5.8xlarge",
				"c5.9xlarge", "c5.18xlarge", "x1e.xlarge",
			},
			InstanceCostTiers: []InstanceTier{
				{Prefix: "t3.", Tier: 0},
				{Prefix: "t2.", Tier: 0},
				{Prefix: "m5.large", Tier: 1},
				{Prefix: "m5.xlarge", Tier: 1},
				{Prefix: "m5.2xlarge", Tier: 2},
				{Prefix: "m5.4xlarge", Tier: 3},
				{Prefix: "m5.8xlarge", Tier: 4},
				{Prefix: "m5.12xlarge", Tier: 5},
				{Prefix: "r5.", Tier: 3},
				{Prefix: "c5.9xlarge", Tier: 4},
				{Prefix: "c5.18xlarge", Tier: 5},
			},
		},
	}
}

// FilePath resolves the config path by precedence:
// --config flag (flagPath, may be empty) wins over PREAPPLY_CONFIG, which
// wins over the default user path ~/.preapply/config.yaml.
func FilePath(flagPath string) (string, error) {
	if strings.TrimSpace(flagPath) != "" {
		return flagPath, nil
	}
	if envPath := strings.TrimSpace(os.Getenv(envVarName)); envPath != "" {
		return envPath, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, configDirName, configFileName), nil
}

// Load reads and validates the configuration at the resolved path. A
// missing file is not an error: Default() is returned. Malformed YAML or a
// schema violation is reported as a *apperr.Error of kind ConfigLoadError.
func Load(flagPath string) (*Config, error) {
	path, err := FilePath(flagPath)
	if err != nil {
		return nil, apperr.ConfigLoad("could not resolve config path", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return nil, apperr.ConfigLoad(fmt.Sprintf("could not read config at %s", path), err)
	}
	if len(strings.TrimSpace(string(raw))) == 0 {
		return Default(), nil
	}

	cfg := Default()
	if migrated, err := migrateLegacy(raw); err != nil {
		return nil, apperr.ConfigLoad("could not inspect legacy config keys", err)
	} else if migrated != nil {
		raw = migrated
	}

	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, apperr.ConfigLoad(fmt.Sprintf("could not parse config YAML at %s", path), err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, apperr.ConfigLoad("config failed validation", err)
	}
	return cfg, nil
}

// Save writes cfg to the resolved path, creating parent directories.
func Save(cfg *Config, flagPath string) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	path, err := FilePath(flagPath)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	b, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o600)
}

// Validate performs the field-by-field range checks that keep the scoring
// formula well-defined (no negative weights, decay in (0,1], etc).
func (c *Config) Validate() error {
	if c == nil {
		return fmt.Errorf("config is nil")
	}
	if err := validateDecay(c.RiskScoring.DataLoss.DecayFactor, "risk_scoring.data_loss.decay_factor"); err != nil {
		return err
	}
	if err := validateDecay(c.RiskScoring.Security.DecayFactor, "risk_scoring.security.decay_factor"); err != nil {
		return err
	}
	if err := validateDecay(c.RiskScoring.Cost.DecayFactor, "risk_scoring.cost.decay_factor"); err != nil {
		return err
	}
	if c.RiskScoring.DataLoss.BaseWeight < 0 {
		return fmt.Errorf("risk_scoring.data_loss.base_weight must be >= 0")
	}
	if c.RiskScoring.Security.BaseWeight < 0 {
		return fmt.Errorf("risk_scoring.security.base_weight must be >= 0")
	}
	if c.RiskScoring.Infrastructure.SharedResourceBase < 0 {
		return fmt.Errorf("risk_scoring.infrastructure.shared_resource_base must be >= 0")
	}
	if c.RiskScoring.Infrastructure.CriticalMultiplier < 1 {
		return fmt.Errorf("risk_scoring.infrastructure.critical_multiplier must be >= 1")
	}
	t := c.RiskScoring.Thresholds
	if !(t.Medium < t.High && t.High < t.HighSevere && t.HighSevere < t.Critical && t.Critical < t.CriticalCatastrophic) {
		return fmt.Errorf("risk_scoring.thresholds must be strictly increasing: medium < high < high_severe < critical < critical_catastrophic")
	}
	for _, tier := range c.CostAlerts.InstanceCostTiers {
		if strings.TrimSpace(tier.Prefix) == "" {
			return fmt.Errorf("cost_alerts.instance_cost_tiers entries must have a non-empty prefix")
		}
	}
	return nil
}

func validateDecay(d float64, field string) error {
	if d <= 0 || d > 1 {
		return fmt.Errorf("%s must be in (0, 1], got %v", field, d)
	}
	return nil
}

// migrateLegacy detects the pre-risk_scoring configuration shape (top-level
// blast_radius/shared_resources keys, no risk_scoring key at all) and, if
// found, rewrites the raw YAML bytes into the current schema before
// unmarshaling. Returns nil, nil when no migration is needed.
func migrateLegacy(raw []byte) ([]byte, error) {
	var probe map[string]yaml.Node
	if err := yaml.Unmarshal(raw, &probe); err != nil {
		return nil, err
	}
	_, hasRiskScoring := probe["risk_scoring"]
	legacyBlast, hasLegacyBlast := probe["blast_radius"]
	legacyShared, hasLegacyShared := probe["shared_resources"]
	if hasRiskScoring || (!hasLegacyBlast && !hasLegacyShared) {
		return nil, nil
	}

	cfg := Default()
	if hasLegacyBlast {
		blast := cfg.RiskScoring.BlastRadius
		if err := legacyBlast.Decode(&blast); err == nil {
			cfg.RiskScoring.BlastRadius = blast
		}
	}
	if hasLegacyShared {
		if err := legacyShared.Decode(&cfg.SharedResources); err != nil {
			return nil, err
		}
	}
	return yaml.Marshal(cfg)
}
