package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// EnvironmentConfig names the deployment environment a policy check is
// running against and the default enforcement mode for that environment,
// used by `policy check`'s enforcement-mode resolution.
type EnvironmentConfig struct {
	Name            string `yaml:"name"`
	EnforcementMode string `yaml:"enforcement_mode"`
}

const (
	EnforcementAuto   = "auto"
	EnforcementManual = "manual"

	envFileName = ".preapply-env.yaml"
	envVarEnv   = "PREAPPLY_ENV"
)

// LoadEnvironmentConfig resolves an EnvironmentConfig with this priority:
// an explicit path, a .preapply-env.yaml in the working directory or one of
// its three parents, the PREAPPLY_ENV variable ("name:mode" or bare
// "name"), or a development/auto default.
func LoadEnvironmentConfig(explicitPath string) (*EnvironmentConfig, error) {
	if strings.TrimSpace(explicitPath) != "" {
		return readEnvironmentFile(explicitPath)
	}

	if path, ok := findEnvironmentFileUpwards(); ok {
		return readEnvironmentFile(path)
	}

	if raw := strings.TrimSpace(os.Getenv(envVarEnv)); raw != "" {
		return parseEnvironmentVar(raw), nil
	}

	return &EnvironmentConfig{Name: "development", EnforcementMode: EnforcementAuto}, nil
}

func readEnvironmentFile(path string) (*EnvironmentConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading environment config %s: %w", path, err)
	}
	ec := &EnvironmentConfig{EnforcementMode: EnforcementAuto}
	if err := yaml.Unmarshal(raw, ec); err != nil {
		return nil, fmt.Errorf("parsing environment config %s: %w", path, err)
	}
	if !isValidMode(ec.EnforcementMode) {
		ec.EnforcementMode = EnforcementAuto
	}
	if strings.TrimSpace(ec.Name) == "" {
		ec.Name = "development"
	}
	return ec, nil
}

func findEnvironmentFileUpwards() (string, bool) {
	dir, err := os.Getwd()
	if err != nil {
		return "", false
	}
	for i := 0; i < 4; i++ {
		candidate := filepath.Join(dir, envFileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false
}

func parseEnvironmentVar(raw string) *EnvironmentConfig {
	name, mode, found := strings.Cut(raw, ":")
	if !found {
		return &EnvironmentConfig{Name: strings.TrimSpace(name), EnforcementMode: EnforcementAuto}
	}
	mode = strings.TrimSpace(mode)
	if !isValidMode(mode) {
		mode = EnforcementAuto
	}
	return &EnvironmentConfig{Name: strings.TrimSpace(name), EnforcementMode: mode}
}

func isValidMode(mode string) bool {
	return mode == EnforcementAuto || mode == EnforcementManual
}

// ResolveEnforcementMode applies the override precedence: an explicit CLI
// flag value always wins; otherwise the environment config's mode is used;
// otherwise "auto".
func ResolveEnforcementMode(env *EnvironmentConfig, override string) string {
	if isValidMode(override) {
		return override
	}
	if env != nil && isValidMode(env.EnforcementMode) {
		return env.EnforcementMode
	}
	return EnforcementAuto
}
