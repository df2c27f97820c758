package speech

import (
	"context"
	"fmt"

	"github.com/samber/do/v2"

	"github.com/dryrunhq/dryrun/internal/config"
	"github.com/dryrunhq/dryrun/internal/speech"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (speech.Transcriber, error) {
		cfg := do.MustInvoke[*config.Config](i)
		if !cfg.SpeechEnabled {
			return disabledTranscriber{}, nil
		}
		return NewCloudSpeechTranscriber(CloudSpeechConfig{
			ProjectID:       cfg.GoogleCloudProjectID,
			CredentialsJSON: cfg.GoogleCloudCredentialsJSON,
			Language:        cfg.DefaultSpeechLanguage,
			Location:        cfg.GoogleCloudSpeechLocation,
			Model:           cfg.GoogleCloudSpeechModel,
		}), nil
	})
	do.Provide(injector, func(i do.Injector) (speech.Synthesizer, error) {
		cfg := do.MustInvoke[*config.Config](i)
		if !cfg.SpeechEnabled {
			return disabledSynthesizer{}, nil
		}
		return NewCloudSynthesizer(CloudSynthesizerConfig{
			CredentialsJSON: cfg.GoogleCloudCredentialsJSON,
			Language:        cfg.DefaultSpeechLanguage,
		}), nil
	})
}

// disabledTranscriber rejects voice turns when the deployment has no speech
// credentials. Text turns are unaffected.
type disabledTranscriber struct{}

func (disabledTranscriber) TranscribeClip(_ context.Context, _ []byte, _ string) (string, error) {
	return "", fmt.Errorf("voice turns are disabled in this deployment")
}

type disabledSynthesizer struct{}

func (disabledSynthesizer) Synthesize(_ context.Context, _ string) ([]byte, error) {
	return nil, fmt.Errorf("feedback audio is disabled in this deployment")
}
