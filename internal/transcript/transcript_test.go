package transcript

import (
	"fmt"
	"testing"
	"time"
)

func TestAppend_QuestionIDsAreDenseAndSequential(t *testing.T) {
	start := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	l := NewLog(start, nil)

	l.Append(SpeakerInterviewer, "Welcome! Are you ready to begin?", start.Add(5*time.Second))
	l.Append(SpeakerCandidate, "Yes, let's go.", start.Add(12*time.Second))
	l.Append(SpeakerInterviewer, "Great, we'll start with a few screening questions.", start.Add(20*time.Second))
	l.Append(SpeakerInterviewer, "Tell me about your current role?", start.Add(30*time.Second))
	l.Append(SpeakerCandidate, "I'm a backend engineer.", start.Add(50*time.Second))
	l.Append(SpeakerInterviewer, "Why are you looking to change jobs?", start.Add(70*time.Second))

	snap := l.Snapshot()
	if len(snap.Questions) != 3 {
		t.Fatalf("expected 3 questions, got %d", len(snap.Questions))
	}
	for i, q := range snap.Questions {
		want := fmt.Sprintf("q%d", i+1)
		if q.ID != want {
			t.Fatalf("question %d: expected id %s, got %s", i, want, q.ID)
		}
	}
}

func TestAppend_ReferentialIntegrity(t *testing.T) {
	start := time.Now()
	l := NewLog(start, nil)
	l.Append(SpeakerInterviewer, "What motivates you?", start)
	l.Append(SpeakerCandidate, "Shipping things.", start.Add(10*time.Second))
	l.Append(SpeakerInterviewer, "Thanks, that's helpful.", start.Add(20*time.Second))

	snap := l.Snapshot()
	ids := make(map[string]bool, len(snap.Questions))
	for _, q := range snap.Questions {
		ids[q.ID] = true
	}
	for _, msg := range snap.Messages {
		if msg.QuestionID != "" && !ids[msg.QuestionID] {
			t.Fatalf("message references unknown question id %s", msg.QuestionID)
		}
	}
	if snap.Messages[2].QuestionID != "" {
		t.Fatal("non-question interviewer message must not carry a question id")
	}
}

func TestAppend_ConflictScenarioClassification(t *testing.T) {
	start := time.Now()
	l := NewLog(start, nil)
	l.Append(SpeakerInterviewer, "Thanks for joining today.", start)
	l.Append(SpeakerCandidate, "Happy to be here.", start.Add(5*time.Second))
	created := l.Append(SpeakerInterviewer, "Tell me about a time you solved a conflict?", start.Add(15*time.Second))

	if created == nil {
		t.Fatal("expected the conflict question to be classified as a question")
	}
	if created.ID != "q1" {
		t.Fatalf("expected q1, got %s", created.ID)
	}
	hasArea := func(want string) bool {
		for _, a := range created.AssessmentAreas {
			if a == want {
				return true
			}
		}
		return false
	}
	if !hasArea(AreaAnswerStructure) {
		t.Fatal("expected answer_structure tag")
	}
	if !hasArea(AreaSpecificExamples) {
		t.Fatal("expected specific_examples tag")
	}
}

func TestAppend_TimestampsAreElapsedMinutesSeconds(t *testing.T) {
	start := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	l := NewLog(start, nil)
	l.Append(SpeakerInterviewer, "What drew you to this role?", start.Add(3*time.Minute+7*time.Second))

	snap := l.Snapshot()
	if snap.Messages[0].Timestamp != "3:07" {
		t.Fatalf("expected timestamp 3:07, got %s", snap.Messages[0].Timestamp)
	}
	if snap.Questions[0].Timestamp != "3:07" {
		t.Fatalf("expected question timestamp 3:07, got %s", snap.Questions[0].Timestamp)
	}
}

func TestAppend_CandidateQuestionsAreNotIndexed(t *testing.T) {
	start := time.Now()
	l := NewLog(start, nil)
	if created := l.Append(SpeakerCandidate, "What is the team size?", start); created != nil {
		t.Fatal("candidate messages must never create question records")
	}
}

func TestRestore_ContinuesNumbering(t *testing.T) {
	start := time.Now()
	l := NewLog(start, nil)
	l.Append(SpeakerInterviewer, "What motivates you?", start)
	restored := Restore(start, nil, l.Snapshot())
	created := restored.Append(SpeakerInterviewer, "How do you handle feedback?", start.Add(time.Minute))
	if created == nil || created.ID != "q2" {
		t.Fatalf("expected restored log to continue at q2, got %+v", created)
	}
}

func TestRuleClassifier(t *testing.T) {
	c := RuleClassifier{}
	cases := []struct {
		text       string
		isQuestion bool
	}{
		{"Tell me about your last project.", true},
		{"I see you worked at a startup.", true},
		{"Would you relocate?", true},
		{"That was during the opening. Now, tell me about your team.", true},
		{"Thanks, that makes sense.", false},
		{"", false},
	}
	for _, tc := range cases {
		got := c.Classify(tc.text)
		if got.IsQuestion != tc.isQuestion {
			t.Fatalf("text %q: expected isQuestion=%v, got %v", tc.text, tc.isQuestion, got.IsQuestion)
		}
	}
}

func TestRuleClassifier_AreaTagging(t *testing.T) {
	c := RuleClassifier{}
	got := c.Classify("Where do you see yourself in five years?")
	found := false
	for _, a := range got.Areas {
		if a == AreaCareerAlignment {
			found = true
		}
	}
	if !found {
		t.Fatal("expected career_alignment tag")
	}
	got = c.Classify("Do you have any questions for me?")
	found = false
	for _, a := range got.Areas {
		if a == AreaQuestionsAsked {
			found = true
		}
	}
	if !found {
		t.Fatal("expected questions_asked tag")
	}
}
