package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	internalconfig "github.com/dryrunhq/dryrun/internal/config"
)

type envConfig struct {
	Env                          string `env:"ENV" envDefault:"production"`
	HTTPListenAddr               string `env:"HTTP_LISTEN_ADDR" envDefault:":8080"`
	DatabaseURL                  string `env:"DATABASE_URL,required"`
	RabbitMQURL                  string `env:"RABBITMQ_URL,required"`
	OpenAIAPIKey                 string `env:"OPENAI_API_KEY,required"`
	OpenAIModel                  string `env:"OPENAI_MODEL" envDefault:"gpt-4o"`
	OpenAITimeoutSec             int    `env:"OPENAI_TIMEOUT_SEC" envDefault:"60"`
	GoogleCloudProjectID         string `env:"GOOGLE_CLOUD_PROJECT_ID"`
	GoogleCloudCredentialsJSON   string `env:"GOOGLE_CLOUD_CREDENTIALS_JSON"`
	GoogleCloudSpeechLocation    string `env:"GOOGLE_CLOUD_SPEECH_LOCATION" envDefault:"global"`
	GoogleCloudSpeechModel       string `env:"GOOGLE_CLOUD_SPEECH_MODEL" envDefault:"chirp_3"`
	SpeechEnabled                bool   `env:"SPEECH_ENABLED" envDefault:"false"`
	DefaultSpeechLanguage        string `env:"DEFAULT_SPEECH_LANGUAGE" envDefault:"en-US"`
	StagesConfigPath             string `env:"STAGES_CONFIG_PATH" envDefault:"configs/stages.yaml"`
	GradingHonestyLevel          string `env:"GRADING_HONESTY_LEVEL" envDefault:"fair"`
	GradingMaxAttempts           int    `env:"GRADING_MAX_ATTEMPTS" envDefault:"3"`
	GradingRequireJobAlignment   bool   `env:"GRADING_REQUIRE_JOB_ALIGNMENT" envDefault:"false"`
	GradingRequireQuotedEvidence bool   `env:"GRADING_REQUIRE_QUOTED_EVIDENCE" envDefault:"false"`
	ObserverTimeoutSec           int    `env:"OBSERVER_TIMEOUT_SEC" envDefault:"30"`
}

func Load() (*internalconfig.Config, error) {
	var raw envConfig
	if err := env.Parse(&raw); err != nil {
		return nil, fmt.Errorf("environment variables are invalid or missing: %w", err)
	}

	cfg := &internalconfig.Config{
		Env:                          raw.Env,
		HTTPListenAddr:               raw.HTTPListenAddr,
		DatabaseURL:                  raw.DatabaseURL,
		RabbitMQURL:                  raw.RabbitMQURL,
		OpenAIAPIKey:                 raw.OpenAIAPIKey,
		OpenAIModel:                  raw.OpenAIModel,
		OpenAITimeoutSec:             raw.OpenAITimeoutSec,
		GoogleCloudProjectID:         raw.GoogleCloudProjectID,
		GoogleCloudCredentialsJSON:   raw.GoogleCloudCredentialsJSON,
		GoogleCloudSpeechLocation:    raw.GoogleCloudSpeechLocation,
		GoogleCloudSpeechModel:       raw.GoogleCloudSpeechModel,
		SpeechEnabled:                raw.SpeechEnabled,
		DefaultSpeechLanguage:        raw.DefaultSpeechLanguage,
		StagesConfigPath:             raw.StagesConfigPath,
		GradingHonestyLevel:          raw.GradingHonestyLevel,
		GradingMaxAttempts:           raw.GradingMaxAttempts,
		GradingRequireJobAlignment:   raw.GradingRequireJobAlignment,
		GradingRequireQuotedEvidence: raw.GradingRequireQuotedEvidence,
		ObserverTimeoutSec:           raw.ObserverTimeoutSec,
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
