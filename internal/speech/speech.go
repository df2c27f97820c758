package speech

import "context"

// Transcriber converts one candidate audio clip into text. Only the text
// crosses into the interview core.
type Transcriber interface {
	TranscribeClip(ctx context.Context, audio []byte, language string) (string, error)
}

// Synthesizer renders feedback text to audio. Synthesis failures are always
// non-fatal: the feedback text and score stand without audio.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}
