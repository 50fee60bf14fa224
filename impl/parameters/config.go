package parameters

import (
	"fmt"
	"github.com/spf13/viper"
	"strings"
)

const EnvPrefix = "OMSIM"

// SetDefaults registers the values of Default with v so that a partial
// config file or a bare command line still yields complete parameters.
func SetDefaults(v *viper.Viper) {
	defaults := Default()

	v.SetDefault("n", defaults.ProcessCount)
	v.SetDefault("f", defaults.FaultyProcesses)
	v.SetDefault("m", defaults.Rounds)
	v.SetDefault("experiments", defaults.Experiments)
	v.SetDefault("order", defaults.OriginalOrder)
	v.SetDefault("stop_on_failure", defaults.StopOnFailure)
	v.SetDefault("seed", defaults.Seed)
	v.SetDefault("traitor_policy", defaults.TraitorPolicy)
	v.SetDefault("flip_probability", defaults.FlipProbability)
}

// NewViper returns a viper instance with defaults and OMSIM_* environment
// variables wired. configFile may be empty.
func NewViper(configFile string) (*viper.Viper, error) {
	v := viper.New()
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if e := v.ReadInConfig(); e != nil {
			return nil, fmt.Errorf("read config %s: %w", configFile, e)
		}
	}
	return v, nil
}

// Load unmarshals and validates the parameters held by v.
func Load(v *viper.Viper) (*Parameters, error) {
	var p Parameters
	if e := v.Unmarshal(&p); e != nil {
		return nil, fmt.Errorf("decode parameters: %w", e)
	}
	if e := p.Validate(); e != nil {
		return nil, e
	}
	return &p, nil
}
