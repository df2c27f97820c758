package grading

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dryrunhq/dryrun/internal/observer"
	"github.com/dryrunhq/dryrun/internal/repository"
	"github.com/dryrunhq/dryrun/internal/stage"
)

// maxInlineContextChars bounds resume/job-description text embedded in the
// grading prompt.
const maxInlineContextChars = 1000

// Options tune how strict and evidence-bound the grading run is.
type Options struct {
	Honesty               stage.HonestyLevel
	RequireJobAlignment   bool
	RequireQuotedEvidence bool
}

// materials is the immutable input set one grading attempt recomputes from.
type materials struct {
	session   *repository.Session
	messages  []repository.TranscriptMessage
	questions []repository.TranscriptQuestion
	notes     *observer.Compiled
}

func buildGradingPrompt(cfg *stage.Config, s stage.Stage, def stage.Definition, opts Options, m materials) string {
	var b strings.Builder

	b.WriteString("You are grading a completed mock job interview transcript against a weighted rubric.\n\n")

	if directive := cfg.HonestyLevels[opts.Honesty]; directive != "" {
		fmt.Fprintf(&b, "HONESTY: %s\n", directive)
	}
	if opts.RequireJobAlignment {
		b.WriteString("JOB ALIGNMENT: You MUST compare the candidate's answers against the job description and call out gaps explicitly.\n")
	}
	if opts.RequireQuotedEvidence {
		b.WriteString("EVIDENCE: Every criterion's feedback MUST quote at least one short passage from the transcript as evidence.\n")
	}
	b.WriteString("\n")

	b.WriteString("RUBRIC CRITERIA:\n")
	for _, crit := range def.Criteria {
		fmt.Fprintf(&b, "- %s (weight %g): %s\n", crit.Name, crit.Weight, crit.Description)
		if crit.Guidelines != "" {
			fmt.Fprintf(&b, "  Guidelines: %s\n", crit.Guidelines)
		}
		if crit.Rubric != "" {
			fmt.Fprintf(&b, "  Scoring: %s\n", crit.Rubric)
		}
	}
	b.WriteString("\n")

	writeCandidateMaterials(&b, m.session)
	writeTranscript(&b, m)
	writeObserverNotes(&b, m.notes)
	writeOutputSchema(&b, s, def)

	return b.String()
}

func writeCandidateMaterials(b *strings.Builder, session *repository.Session) {
	if resume := strings.TrimSpace(session.Resume); resume != "" {
		b.WriteString("RESUME:\n")
		b.WriteString(truncateInline(resume))
		b.WriteString("\n\n")
	}
	if jd := strings.TrimSpace(session.JobDescription); jd != "" {
		b.WriteString("JOB DESCRIPTION:\n")
		b.WriteString(truncateInline(jd))
		b.WriteString("\n\n")
	}
}

func writeTranscript(b *strings.Builder, m materials) {
	b.WriteString("TRANSCRIPT:\n")
	for _, msg := range m.messages {
		fmt.Fprintf(b, "[%s] %s: %s\n", msg.Stamp, msg.Speaker, msg.Content)
	}
	b.WriteString("\nQUESTIONS ASKED:\n")
	for _, q := range m.questions {
		fmt.Fprintf(b, "- %s [%s] (%s)\n", q.QuestionID, q.Stamp, strings.Join(q.AssessmentAreas, ", "))
	}
	b.WriteString("\n")
}

func writeObserverNotes(b *strings.Builder, notes *observer.Compiled) {
	if notes == nil || notes.TotalQuestions == 0 {
		return
	}
	b.WriteString("OBSERVER NOTES (best-effort per-question annotations):\n")
	fmt.Fprintf(b, "Overall impression: %s (%d strong / %d weak of %d answers)\n",
		notes.OverallImpression, notes.StrongAnswers, notes.WeakAnswers, notes.TotalQuestions)
	if notes.BestQuestionID != "" {
		fmt.Fprintf(b, "Best answer: %s; weakest answer: %s\n", notes.BestQuestionID, notes.WeakestQuestionID)
	}
	if len(notes.RedFlags) > 0 {
		fmt.Fprintf(b, "Red flags heard: %s\n", strings.Join(notes.RedFlags, "; "))
	}
	for _, id := range sortedNoteIDs(notes.Notes) {
		note := notes.Notes[id]
		fmt.Fprintf(b, "- %s: %s", id, note.QualityFlag)
		if note.NotableQuote != "" {
			fmt.Fprintf(b, ", notable quote: %q", note.NotableQuote)
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
}

func writeOutputSchema(b *strings.Builder, s stage.Stage, def stage.Definition) {
	names := make([]string, 0, len(def.Criteria))
	for _, crit := range def.Criteria {
		names = append(names, crit.Name)
	}
	b.WriteString("OUTPUT FORMAT:\n")
	b.WriteString("Respond with only a JSON object. Required keys:\n")
	fmt.Fprintf(b, "- scores: object mapping each of [%s] to a number from 1 to 10\n", strings.Join(names, ", "))
	b.WriteString("- feedback: object mapping the same criteria to non-empty feedback strings\n")
	b.WriteString("- strengths, weaknesses, suggestions: arrays of strings\n")
	b.WriteString("- detailed_feedback: string\n")
	switch s {
	case stage.HRScreen:
		b.WriteString("- comparative_analysis: object with percentile_estimate (number 0-100) and standout_qualities (non-empty array)\n")
		b.WriteString("- overall_pace or pacing_feedback: string describing the candidate's pacing\n")
		b.WriteString("- questions_asked: number of questions the candidate asked you\n")
	case stage.HiringManager:
		b.WriteString("- role_specific_criteria: object with criteria_identified, a non-empty array of {name, score, feedback} for role-specific criteria you identify from the job description\n")
		fmt.Fprintf(b, "- evidence_breakdown: object with string evidence for each of [%s]\n", strings.Join(evidenceAreas, ", "))
	}
	b.WriteString("Do not wrap the JSON in markdown.\n")
}

func sortedNoteIDs(notes map[string]repository.ObserverNote) []string {
	ids := make([]string, 0, len(notes))
	for id := range notes {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return questionOrdinal(ids[i]) < questionOrdinal(ids[j]) })
	return ids
}

func questionOrdinal(id string) int {
	n := 0
	for _, r := range strings.TrimPrefix(id, "q") {
		if r < '0' || r > '9' {
			break
		}
		n = n*10 + int(r-'0')
	}
	return n
}

func truncateInline(text string) string {
	if len(text) <= maxInlineContextChars {
		return text
	}
	return text[:maxInlineContextChars] + "..."
}
