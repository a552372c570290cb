// Package config loads the emulator's runtime configuration: one TCP port
// per emulated service plus the process-wide identity (region, account id)
// and logging settings.
package config

import (
	"fmt"
	"strings"
	"sync"

	"github.com/spf13/viper"
)

// Ports holds the listen port for every emulated service. Zero means
// "disabled" — internal/cmd skips binding a listener for that service.
type Ports struct {
	S3              int `mapstructure:"s3"`
	SNS             int `mapstructure:"sns"`
	SQS             int `mapstructure:"sqs"`
	DynamoDB        int `mapstructure:"dynamodb"`
	Lambda          int `mapstructure:"lambda"`
	Firehose        int `mapstructure:"firehose"`
	MemoryDB        int `mapstructure:"memorydb"`
	Cognito         int `mapstructure:"cognito"`
	APIGateway      int `mapstructure:"apigateway"`
	KMS             int `mapstructure:"kms"`
	SecretsManager  int `mapstructure:"secretsmanager"`
	Kinesis         int `mapstructure:"kinesis"`
	EventBridge     int `mapstructure:"eventbridge"`
	StepFunctions   int `mapstructure:"stepfunctions"`
	SSM             int `mapstructure:"ssm"`
	CloudWatchLogs  int `mapstructure:"cloudwatchlogs"`
	SES             int `mapstructure:"ses"`
}

// Config is the fully resolved emulator configuration.
type Config struct {
	Region    string `mapstructure:"region"`
	AccountID string `mapstructure:"account_id"`
	Ports     Ports  `mapstructure:"ports"`

	Logging struct {
		Level  string `mapstructure:"level"`
		Format string `mapstructure:"format"`
	} `mapstructure:"logging"`

	Metrics struct {
		Enabled bool `mapstructure:"enabled"`
		Port    int  `mapstructure:"port"`
	} `mapstructure:"metrics"`
}

var (
	config *Config
	once   sync.Once
)

// Load resolves configuration once per process from v (which holds the
// config file, if internal/cmd read one), environment variables prefixed
// NIMBUS_, and defaults. No command-line flags are bound into v.
func Load(v *viper.Viper) (*Config, error) {
	var err error
	once.Do(func() {
		err = loadConfig(v)
	})
	return config, err
}

// Get returns the already-loaded config, panics if Load was never called.
func Get() *Config {
	if config == nil {
		panic("config is not loaded")
	}
	return config
}

func loadConfig(v *viper.Viper) error {
	if v == nil {
		v = viper.New()
	}

	v.SetEnvPrefix("NIMBUS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	config = &Config{}
	if err := v.Unmarshal(config); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return validate(config)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("region", "us-east-1")
	v.SetDefault("account_id", "000000000000")

	v.SetDefault("ports.s3", 4572)
	v.SetDefault("ports.sns", 4575)
	v.SetDefault("ports.sqs", 4576)
	v.SetDefault("ports.dynamodb", 4569)
	v.SetDefault("ports.lambda", 4574)
	v.SetDefault("ports.firehose", 4573)
	v.SetDefault("ports.memorydb", 4577)
	v.SetDefault("ports.cognito", 4578)
	v.SetDefault("ports.apigateway", 4567)
	v.SetDefault("ports.kms", 4599)
	v.SetDefault("ports.secretsmanager", 4584)
	v.SetDefault("ports.kinesis", 4568)
	v.SetDefault("ports.eventbridge", 4587)
	v.SetDefault("ports.stepfunctions", 4585)
	v.SetDefault("ports.ssm", 4583)
	v.SetDefault("ports.cloudwatchlogs", 4586)
	v.SetDefault("ports.ses", 4579)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.port", 4590)
}

func validate(cfg *Config) error {
	if cfg.AccountID == "" {
		return fmt.Errorf("account id must not be empty")
	}
	if cfg.Region == "" {
		return fmt.Errorf("region must not be empty")
	}

	validLevels := map[string]bool{
		"trace": true, "debug": true, "info": true,
		"warn": true, "error": true, "fatal": true, "panic": true,
	}
	if !validLevels[strings.ToLower(cfg.Logging.Level)] {
		return fmt.Errorf("invalid logging level: %s", cfg.Logging.Level)
	}

	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[strings.ToLower(cfg.Logging.Format)] {
		return fmt.Errorf("invalid logging format: %s", cfg.Logging.Format)
	}

	return nil
}
