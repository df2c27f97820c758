// Package prompt assembles the full instruction text sent to the
// conversation model for the next interviewer turn.
package prompt

import (
	"fmt"
	"strings"

	"github.com/dryrunhq/dryrun/internal/phase"
	"github.com/dryrunhq/dryrun/internal/stage"
)

// maxContextFieldChars bounds long candidate context fields so prompt size
// stays deterministic regardless of what was uploaded.
const maxContextFieldChars = 1000

// Context carries the candidate material available for this session. Any of
// the fields may be empty; composition degrades to generic instructions
// instead of failing.
type Context struct {
	Resume         string
	JobDescription string
	CompanyContent string
}

var phaseInstructions = map[phase.Phase]string{
	phase.Opening:           "Greet the candidate warmly, introduce yourself by role, and ask whether they are ready to begin. Keep it to two or three sentences.",
	phase.StructureOverview: "Briefly outline how the interview will run: a short company introduction, screening questions, and time for their questions at the end. Ask if that structure works for them.",
	phase.CompanyIntro:      "Give a short, engaging introduction to the company and the team, then move into your first screening question.",
	phase.Screening:         "Ask one focused screening question at a time. Follow up on vague answers before moving on.",
	phase.QAndA:             "Invite the candidate's own questions and answer them helpfully from the company context you have.",
	phase.Closing:           "Thank the candidate, summarize next steps in the process, and close the conversation.",
}

// Compose builds the system prompt for the next turn. It is pure string
// construction and never fails.
func Compose(cfg *stage.Config, def stage.Definition, tone stage.Tone, depth stage.Depth, current phase.Phase, pctx Context) string {
	var b strings.Builder

	b.WriteString(def.BasePrompt)
	b.WriteString("\n\n")

	if text := cfg.Tones[tone]; text != "" {
		b.WriteString(fmt.Sprintf("TONE: %s\n", text))
	}
	if text := cfg.Depths[depth]; text != "" {
		b.WriteString(fmt.Sprintf("QUESTION DEPTH: %s\n", text))
	}
	b.WriteString("\n")

	if instruction := phaseInstructions[current]; instruction != "" {
		b.WriteString("CURRENT PHASE:\n")
		b.WriteString(instruction)
		b.WriteString("\n\n")
	}

	writeCandidateContext(&b, pctx)

	b.WriteString("Ask one question at a time and stay in character as the interviewer.")
	return b.String()
}

// writeCandidateContext appends the candidate material with explicit
// branching on which of resume/job description is available, since that
// changes the instructional emphasis given to the model.
func writeCandidateContext(b *strings.Builder, pctx Context) {
	resume := strings.TrimSpace(pctx.Resume)
	jd := strings.TrimSpace(pctx.JobDescription)

	switch {
	case resume != "" && jd != "":
		b.WriteString("CANDIDATE CONTEXT:\n")
		b.WriteString("You have the candidate's resume and the job description. You MUST reference specific resume details and tie your questions to the requirements of the role.\n\n")
		b.WriteString("RESUME:\n")
		b.WriteString(truncate(resume))
		b.WriteString("\n\nJOB DESCRIPTION:\n")
		b.WriteString(truncate(jd))
		b.WriteString("\n\n")
	case resume != "":
		b.WriteString("CANDIDATE CONTEXT:\n")
		b.WriteString("You have the candidate's resume but no job description. You MUST reference specific resume details; keep role expectations general.\n\n")
		b.WriteString("RESUME:\n")
		b.WriteString(truncate(resume))
		b.WriteString("\n\n")
	case jd != "":
		b.WriteString("CANDIDATE CONTEXT:\n")
		b.WriteString("You have the job description but no resume. Probe for the experience the role requires instead of assuming any background.\n\n")
		b.WriteString("JOB DESCRIPTION:\n")
		b.WriteString(truncate(jd))
		b.WriteString("\n\n")
	default:
		b.WriteString("CANDIDATE CONTEXT:\n")
		b.WriteString("No resume or job description is available. Conduct a general-purpose interview for this stage and ask the candidate about their background directly.\n\n")
	}

	if company := strings.TrimSpace(pctx.CompanyContent); company != "" {
		b.WriteString("COMPANY BACKGROUND:\n")
		b.WriteString(truncate(company))
		b.WriteString("\n\n")
	}
}

func truncate(text string) string {
	if len(text) <= maxContextFieldChars {
		return text
	}
	return text[:maxContextFieldChars] + "..."
}
