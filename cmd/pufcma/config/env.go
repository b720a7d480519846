package config

import (
	"fmt"
	"strconv"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "PUFCMA_"

// lookupFunc matches os.LookupEnv.
type lookupFunc func(key string) (string, bool)

// loadEnv applies PUFCMA_* overrides. A variable that is set but does not
// parse is an error rather than silently ignored.
func loadEnv(cfg *Config, lookup lookupFunc) error {
	strs := map[string]*string{
		"LOG_LEVEL":       &cfg.LogLevel,
		"TRANSFORM":       &cfg.Target.Transform,
		"TRACE_EXPORTER":  &cfg.Telemetry.TraceExporter,
		"METRIC_EXPORTER": &cfg.Telemetry.MetricExporter,
		"OTLP_ENDPOINT":   &cfg.Telemetry.OTLPEndpoint,
		"METRICS_ADDR":    &cfg.Telemetry.MetricsAddr,
	}
	ints := map[string]*int{
		"N":                   &cfg.Target.N,
		"K":                   &cfg.Target.K,
		"POP_SIZE":            &cfg.Attack.PopSize,
		"PARENT_SIZE":         &cfg.Attack.ParentSize,
		"CHALLENGE_NUM":       &cfg.Attack.ChallengeNum,
		"REPEAT":              &cfg.Attack.Repeat,
		"MAX_GENERATIONS":     &cfg.Attack.MaxGenerations,
		"MAX_ATTEMPTS":        &cfg.Attack.MaxAttempts,
		"POLARITY_CHALLENGES": &cfg.Attack.PolarityChallenges,
		"DEDUP_CHALLENGES":    &cfg.Attack.DedupChallenges,
		"WORKERS":             &cfg.Attack.Workers,
		"EVAL_CHALLENGES":     &cfg.Evaluation.Challenges,
	}
	floats := map[string]*float64{
		"NOISINESS":     &cfg.Target.Noisiness,
		"UNRELIABILITY": &cfg.Attack.Unreliability,
		"PRECISION":     &cfg.Attack.Precision,
	}
	seeds := map[string]*int64{
		"TARGET_SEED": &cfg.Target.Seed,
		"SEED":        &cfg.Attack.Seed,
		"EVAL_SEED":   &cfg.Evaluation.Seed,
	}

	for key, dst := range strs {
		if v, ok := lookup(EnvPrefix + key); ok {
			*dst = v
		}
	}
	for key, dst := range ints {
		if v, ok := lookup(EnvPrefix + key); ok {
			i, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("%s%s=%q: %w", EnvPrefix, key, v, err)
			}
			*dst = i
		}
	}
	for key, dst := range floats {
		if v, ok := lookup(EnvPrefix + key); ok {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return fmt.Errorf("%s%s=%q: %w", EnvPrefix, key, v, err)
			}
			*dst = f
		}
	}
	for key, dst := range seeds {
		if v, ok := lookup(EnvPrefix + key); ok {
			s, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				return fmt.Errorf("%s%s=%q: %w", EnvPrefix, key, v, err)
			}
			*dst = s
		}
	}

	return nil
}
