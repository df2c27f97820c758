package config

import "fmt"

type Config struct {
	Env                          string
	HTTPListenAddr               string
	DatabaseURL                  string
	RabbitMQURL                  string
	OpenAIAPIKey                 string
	OpenAIModel                  string
	OpenAITimeoutSec             int
	GoogleCloudProjectID         string
	GoogleCloudCredentialsJSON   string
	GoogleCloudSpeechLocation    string
	GoogleCloudSpeechModel       string
	SpeechEnabled                bool
	DefaultSpeechLanguage        string
	StagesConfigPath             string
	GradingHonestyLevel          string
	GradingMaxAttempts           int
	GradingRequireJobAlignment   bool
	GradingRequireQuotedEvidence bool
	ObserverTimeoutSec           int
}

func (c *Config) Validate() error {
	for _, req := range c.requiredFieldChecks() {
		if req.value == "" {
			return fmt.Errorf("%s is required", req.name)
		}
	}
	if c.SpeechEnabled {
		if c.GoogleCloudProjectID == "" {
			return fmt.Errorf("GOOGLE_CLOUD_PROJECT_ID is required when SPEECH_ENABLED=true")
		}
		if c.GoogleCloudCredentialsJSON == "" {
			return fmt.Errorf("GOOGLE_CLOUD_CREDENTIALS_JSON is required when SPEECH_ENABLED=true")
		}
	}
	if c.OpenAITimeoutSec <= 0 {
		return fmt.Errorf("OPENAI_TIMEOUT_SEC must be positive, got %d", c.OpenAITimeoutSec)
	}
	if c.GradingMaxAttempts <= 0 {
		return fmt.Errorf("GRADING_MAX_ATTEMPTS must be positive, got %d", c.GradingMaxAttempts)
	}
	if c.ObserverTimeoutSec <= 0 {
		return fmt.Errorf("OBSERVER_TIMEOUT_SEC must be positive, got %d", c.ObserverTimeoutSec)
	}
	return nil
}

type requiredEnvField struct {
	name  string
	value string
}

func (c *Config) requiredFieldChecks() []requiredEnvField {
	return []requiredEnvField{
		{name: "HTTP_LISTEN_ADDR", value: c.HTTPListenAddr},
		{name: "DATABASE_URL", value: c.DatabaseURL},
		{name: "RABBITMQ_URL", value: c.RabbitMQURL},
		{name: "OPENAI_API_KEY", value: c.OpenAIAPIKey},
		{name: "OPENAI_MODEL", value: c.OpenAIModel},
		{name: "STAGES_CONFIG_PATH", value: c.StagesConfigPath},
		{name: "GRADING_HONESTY_LEVEL", value: c.GradingHonestyLevel},
		{name: "DEFAULT_SPEECH_LANGUAGE", value: c.DefaultSpeechLanguage},
	}
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}
