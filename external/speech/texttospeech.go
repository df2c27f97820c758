package speech

import (
	"context"
	"encoding/base64"
	"fmt"

	"cloud.google.com/go/auth/credentials"
	"google.golang.org/api/option"
	texttospeech "google.golang.org/api/texttospeech/v1"

	"github.com/dryrunhq/dryrun/internal/speech"
)

type CloudSynthesizerConfig struct {
	CredentialsJSON string
	Language        string
}

// CloudSynthesizer renders grading feedback to MP3 via the Cloud
// Text-to-Speech REST API.
type CloudSynthesizer struct {
	credentialsJSON string
	language        string
}

func NewCloudSynthesizer(cfg CloudSynthesizerConfig) speech.Synthesizer {
	return &CloudSynthesizer{
		credentialsJSON: cfg.CredentialsJSON,
		language:        cfg.Language,
	}
}

func (s *CloudSynthesizer) Synthesize(ctx context.Context, text string) ([]byte, error) {
	creds, err := credentials.DetectDefault(&credentials.DetectOptions{
		CredentialsJSON: []byte(s.credentialsJSON),
		Scopes:          []string{"https://www.googleapis.com/auth/cloud-platform"},
	})
	if err != nil {
		return nil, fmt.Errorf("detect credentials: %w", err)
	}

	svc, err := texttospeech.NewService(ctx, option.WithAuthCredentials(creds))
	if err != nil {
		return nil, fmt.Errorf("text-to-speech service: %w", err)
	}

	resp, err := svc.Text.Synthesize(&texttospeech.SynthesizeSpeechRequest{
		Input: &texttospeech.SynthesisInput{Text: text},
		Voice: &texttospeech.VoiceSelectionParams{LanguageCode: s.language},
		AudioConfig: &texttospeech.AudioConfig{
			AudioEncoding: "MP3",
		},
	}).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("synthesize feedback: %w", err)
	}

	audio, err := base64.StdEncoding.DecodeString(resp.AudioContent)
	if err != nil {
		return nil, fmt.Errorf("decode synthesized audio: %w", err)
	}
	return audio, nil
}
