// Package config loads the pufcma attack configuration.
//
// Sources are applied in order, later ones winning:
//  1. Default()
//  2. a YAML file (unknown keys are rejected)
//  3. PUFCMA_* environment variables
//
// The result is checked with validator struct tags and then with
// cmaes.Options.Validate, so every error surfaces before the attack starts.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/katalvlaran/pufcma/cmaes"
	"github.com/katalvlaran/pufcma/internal/telemetry"
	"github.com/katalvlaran/pufcma/ltf"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("config: invalid")

var validate *validator.Validate

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())
}

// Config is the full CLI configuration.
type Config struct {
	LogLevel   string           `yaml:"log_level" validate:"oneof=debug info warn error"`
	Target     TargetConfig     `yaml:"target"`
	Attack     AttackConfig     `yaml:"attack"`
	Evaluation EvaluationConfig `yaml:"evaluation"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`
}

// TargetConfig describes the simulated XOR arbiter PUF under attack.
type TargetConfig struct {
	N         int     `yaml:"n" validate:"min=2"`
	K         int     `yaml:"k" validate:"min=1"`
	Noisiness float64 `yaml:"noisiness" validate:"gte=0"`
	Transform string  `yaml:"transform" validate:"oneof=id atf"`
	Seed      int64   `yaml:"seed"`
}

// AttackConfig mirrors cmaes.Options.
type AttackConfig struct {
	PopSize            int       `yaml:"pop_size" validate:"min=1"`
	ParentSize         int       `yaml:"parent_size" validate:"min=1,ltefield=PopSize"`
	Priorities         []float64 `yaml:"priorities" validate:"omitempty,dive,gt=0"`
	ChallengeNum       int       `yaml:"challenge_num" validate:"min=2"`
	Repeat             int       `yaml:"repeat" validate:"min=1"`
	Unreliability      float64   `yaml:"unreliability" validate:"gte=0,lte=1"`
	Precision          float64   `yaml:"precision" validate:"gte=-1,lt=1"`
	MaxGenerations     int       `yaml:"max_generations" validate:"min=0"`
	MaxAttempts        int       `yaml:"max_attempts" validate:"min=0"`
	PolarityChallenges int       `yaml:"polarity_challenges" validate:"min=1"`
	DedupChallenges    int       `yaml:"dedup_challenges" validate:"min=0"`
	Workers            int       `yaml:"workers" validate:"min=0"`
	Seed               int64     `yaml:"seed"`
}

// EvaluationConfig sizes the held-out batch the learned model is scored on.
type EvaluationConfig struct {
	Challenges int   `yaml:"challenges" validate:"min=1"`
	Seed       int64 `yaml:"seed"`
}

// TelemetryConfig selects exporters; see package telemetry.
type TelemetryConfig struct {
	TraceExporter  string `yaml:"trace_exporter" validate:"oneof=none stdout otlp"`
	MetricExporter string `yaml:"metric_exporter" validate:"oneof=none stdout prometheus"`
	OTLPEndpoint   string `yaml:"otlp_endpoint" validate:"required_if=TraceExporter otlp"`
	MetricsAddr    string `yaml:"metrics_addr" validate:"omitempty,hostname_port"`
}

// Default returns a configuration that recovers a noisy single-chain 16-bit
// instance in a few hundred generations.
func Default() Config {
	return Config{
		LogLevel: "info",
		Target: TargetConfig{
			N:         16,
			K:         1,
			Noisiness: 0.3,
			Transform: ltf.ATF.String(),
			Seed:      1,
		},
		Attack: AttackConfig{
			PopSize:            cmaes.DefaultPopSize,
			ParentSize:         cmaes.DefaultParentSize,
			ChallengeNum:       512,
			Repeat:             cmaes.DefaultRepeat,
			Precision:          0.7,
			MaxGenerations:     2000,
			MaxAttempts:        20,
			PolarityChallenges: 100,
			Workers:            0,
			Seed:               2,
		},
		Evaluation: EvaluationConfig{
			Challenges: 10000,
			Seed:       3,
		},
		Telemetry: TelemetryConfig{
			TraceExporter:  telemetry.ExporterNone,
			MetricExporter: telemetry.ExporterNone,
			OTLPEndpoint:   "localhost:4317",
		},
	}
}

// Load builds the configuration from defaults, the YAML file at path (skipped
// when path is empty) and the environment, then validates it.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return cfg, fmt.Errorf("load config file: %w", err)
		}
	}
	if err := loadEnv(&cfg, os.LookupEnv); err != nil {
		return cfg, fmt.Errorf("load env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}

	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err = dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	return nil
}

// Validate checks the struct tags and the cmaes invariants.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s (%s)", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(fields, ", "))
		}
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if err := c.Options(nil).Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}

	return nil
}

// Transform parses Target.Transform; Validate guarantees it is known.
func (c Config) Transform() ltf.Transform {
	t, err := ltf.ParseTransform(c.Target.Transform)
	if err != nil {
		return ltf.ATF
	}
	return t
}

// Options converts the attack section to cmaes.Options. Empty priorities
// select cmaes.LinearPriorities.
func (c Config) Options(logger *slog.Logger) cmaes.Options {
	a := c.Attack
	priorities := append([]float64(nil), a.Priorities...)
	if len(priorities) == 0 {
		priorities = cmaes.LinearPriorities(a.ParentSize)
	}

	return cmaes.Options{
		PopSize:            a.PopSize,
		ParentSize:         a.ParentSize,
		Priorities:         priorities,
		ChallengeNum:       a.ChallengeNum,
		Repeat:             a.Repeat,
		Unreliability:      a.Unreliability,
		Precision:          a.Precision,
		MaxGenerations:     a.MaxGenerations,
		MaxAttempts:        a.MaxAttempts,
		PolarityChallenges: a.PolarityChallenges,
		DedupChallenges:    a.DedupChallenges,
		Transform:          c.Transform(),
		Workers:            a.Workers,
		Seed:               a.Seed,
		Logger:             logger,
	}
}

// TelemetryConfig converts the telemetry section for telemetry.Init.
func (c Config) TelemetryConfig(version string) telemetry.Config {
	tc := telemetry.DefaultConfig()
	tc.ServiceVersion = version
	tc.TraceExporter = c.Telemetry.TraceExporter
	tc.MetricExporter = c.Telemetry.MetricExporter
	tc.OTLPEndpoint = c.Telemetry.OTLPEndpoint

	return tc
}

// Level parses LogLevel; Validate guarantees it is known.
func (c Config) Level() slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}
