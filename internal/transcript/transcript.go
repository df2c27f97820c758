// Package transcript accumulates the structured record of an interview:
// every interviewer and candidate turn, plus a derived index of the
// questions the interviewer asked.
package transcript

import (
	"fmt"
	"time"
)

type Speaker string

const (
	SpeakerInterviewer Speaker = "interviewer"
	SpeakerCandidate   Speaker = "candidate"
)

// Message is one turn in the conversation. QuestionID is set only on
// interviewer messages that were classified as questions, and always refers
// to an entry in the transcript's question index.
type Message struct {
	Speaker    Speaker `json:"speaker"`
	Text       string  `json:"text"`
	Timestamp  string  `json:"timestamp"`
	QuestionID string  `json:"question_id,omitempty"`
}

// Question is one classified interviewer question. IDs are assigned
// sequentially (q1, q2, ...) in order of first appearance and are never
// reused or renumbered.
type Question struct {
	ID              string   `json:"id"`
	Text            string   `json:"text"`
	Timestamp       string   `json:"timestamp"`
	AssessmentAreas []string `json:"assessment_areas"`
}

// Transcript is the append-only structured log for one session.
type Transcript struct {
	Messages  []Message  `json:"messages"`
	Questions []Question `json:"questions_asked"`
}

// LastQuestion returns the most recently asked question, or nil if the
// interviewer has not asked one yet.
func (t *Transcript) LastQuestion() *Question {
	if len(t.Questions) == 0 {
		return nil
	}
	return &t.Questions[len(t.Questions)-1]
}

// Log appends turns for one session and derives question ids. It is not
// safe for concurrent use; turns within a session are strictly sequential.
type Log struct {
	startedAt  time.Time
	classifier Classifier
	transcript Transcript
}

// NewLog creates a log for a session that started at the given time. A nil
// classifier falls back to the default rule-based one.
func NewLog(startedAt time.Time, classifier Classifier) *Log {
	if classifier == nil {
		classifier = RuleClassifier{}
	}
	return &Log{startedAt: startedAt, classifier: classifier}
}

// Restore rebuilds a log around a previously persisted transcript so that
// question numbering continues where it left off.
func Restore(startedAt time.Time, classifier Classifier, t Transcript) *Log {
	l := NewLog(startedAt, classifier)
	l.transcript = t
	return l
}

// Append records one turn. When the speaker is the interviewer and the text
// classifies as a question, the corresponding question record is created
// first and the message carries its id. The created question (if any) is
// returned so callers can pair the next candidate answer with it.
func (l *Log) Append(speaker Speaker, text string, at time.Time) *Question {
	timestamp := formatElapsed(at.Sub(l.startedAt))
	msg := Message{Speaker: speaker, Text: text, Timestamp: timestamp}

	var created *Question
	if speaker == SpeakerInterviewer {
		if c := l.classifier.Classify(text); c.IsQuestion {
			q := Question{
				ID:              fmt.Sprintf("q%d", len(l.transcript.Questions)+1),
				Text:            text,
				Timestamp:       timestamp,
				AssessmentAreas: c.Areas,
			}
			l.transcript.Questions = append(l.transcript.Questions, q)
			created = &l.transcript.Questions[len(l.transcript.Questions)-1]
			msg.QuestionID = q.ID
		}
	}
	l.transcript.Messages = append(l.transcript.Messages, msg)
	return created
}

// Snapshot returns the accumulated transcript.
func (l *Log) Snapshot() Transcript {
	return l.transcript
}

// formatElapsed renders elapsed session time as M:SS.
func formatElapsed(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int64(d / time.Second)
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}
