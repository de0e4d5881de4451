package ai

import (
	"errors"
	"fmt"

	"github.com/lenslet/lens/internal/vcs"
)

// Prompt is a completed prompt pair ready for a provider.
type Prompt struct {
	System string
	User   string
}

// SubjectKind discriminates what a prompt describes.
type SubjectKind int

const (
	SubjectWorkingTree SubjectKind = iota
	SubjectCommit
	SubjectRange
)

// Subject is the reviewed material prompts are built from: one commit, the
// working tree, or a revision range, always with its diff text.
type Subject struct {
	Kind   SubjectKind
	Commit *vcs.CommitInfo // SubjectCommit
	Diff   string
	Staged bool   // SubjectWorkingTree
	From   string // SubjectRange
	To     string // SubjectRange
}

// CommitSubject wraps one commit and its diff.
func CommitSubject(info vcs.CommitInfo) Subject {
	return Subject{Kind: SubjectCommit, Commit: &info, Diff: info.Diff}
}

// WorkingTreeSubject wraps uncommitted changes.
func WorkingTreeSubject(diff string, staged bool) Subject {
	return Subject{Kind: SubjectWorkingTree, Diff: diff, Staged: staged}
}

// RangeSubject wraps the changes between two revisions.
func RangeSubject(diff, from, to string) Subject {
	return Subject{Kind: SubjectRange, Diff: diff, From: from, To: to}
}

// Header renders the static banner printed before a generated explanation.
func (s Subject) Header(provider string) string {
	switch s.Kind {
	case SubjectCommit:
		return fmt.Sprintf("# Entity: Commit\n# Provider: %s\n`commit %s` | %s | %s\n\n%s\n-----",
			provider, s.Commit.CommitID, s.Commit.Author, s.Commit.Date, s.Commit.Message)
	case SubjectRange:
		return fmt.Sprintf("# Entity: Range\n`%s` -> `%s`\n# Provider: %s", s.From, s.To, provider)
	default:
		staged := ""
		if s.Staged {
			staged = " (staged)"
		}
		return fmt.Sprintf("# Entity: Working Tree Diff%s\n# Provider: %s", staged, provider)
	}
}

const explainSystemPrompt = "You are a helpful assistant that explains Git changes in a concise way. " +
	"Focus only on the most significant changes and their direct impact. " +
	"Keep explanations brief but informative and don't ask for further explanations. " +
	"Use markdown for clarity."

// ExplainPrompt asks for a short narrative explanation of the subject.
func ExplainPrompt(s Subject) Prompt {
	var user string
	if s.Kind == SubjectCommit {
		user = fmt.Sprintf("Explain this commit briefly:\n"+
			"\nMessage: %s"+
			"\n\nChanges:\n```diff\n%s\n```"+
			"\n\nProvide a short explanation covering:\n"+
			"1. Core changes made\n"+
			"2. Direct impact",
			s.Commit.Message, s.Diff)
	} else {
		user = fmt.Sprintf("Explain these changes concisely:\n"+
			"\n```diff\n%s\n```"+
			"\n\nProvide:\n"+
			"1. Key changes\n"+
			"2. Notable concerns (if any)",
			s.Diff)
	}
	return Prompt{System: explainSystemPrompt, User: user}
}

const querySystemPrompt = "You are a helpful assistant that answers questions about Git changes. " +
	"Ground every answer in the provided diff, keep it brief, and don't ask follow-up questions. " +
	"Use markdown for clarity."

// QueryPrompt asks a free-form question about the subject.
func QueryPrompt(s Subject, question string) Prompt {
	user := fmt.Sprintf("Answer this question about the following changes:\n%s"+
		"\n\n```diff\n%s\n```", question, s.Diff)
	if s.Kind == SubjectCommit {
		user += fmt.Sprintf("\n\nCommit message:\n%s", s.Commit.Message)
	}
	return Prompt{System: querySystemPrompt, User: user}
}

// DefaultCommitTypes maps conventional commit types to their meanings,
// embedded in draft prompts unless the configuration overrides it.
const DefaultCommitTypes = `{
	"docs": "Documentation only changes",
	"style": "Changes that do not affect the meaning of the code",
	"refactor": "A code change that neither fixes a bug nor adds a feature",
	"perf": "A code change that improves performance",
	"test": "Adding missing tests or correcting existing tests",
	"build": "Changes that affect the build system or external dependencies",
	"ci": "Changes to our CI configuration files and scripts",
	"chore": "Other changes that don't modify src or test files",
	"revert": "Reverts a previous commit",
	"feat": "A new feature",
	"fix": "A bug fix"
}`

const draftSystemPrompt = "You are a commit message generator that follows these rules:" +
	"\n1. Write in present tense" +
	"\n2. Be concise and direct" +
	"\n3. Output only the commit message without any explanations" +
	"\n4. Follow the format: <type>(<optional scope>): <commit message>"

// DraftPrompt asks for a conventional commit message for a diff subject.
// commitTypes is a JSON object mapping type names to descriptions; hint is
// optional user-supplied intent context.
func DraftPrompt(s Subject, commitTypes, hint string) (Prompt, error) {
	if s.Kind == SubjectCommit {
		return Prompt{}, errors.New("drafting needs a diff, not an existing commit")
	}
	if commitTypes == "" {
		commitTypes = DefaultCommitTypes
	}
	user := fmt.Sprintf("Generate a concise git commit message written in present tense for the following code diff with the given specifications below:\n"+
		"\nThe output response must be in format:\n<type>(<optional scope>): <commit message>"+
		"\nFocus on being accurate and concise."+
		"\nChoose a type from the type-to-description JSON below that best describes the git diff:\n%s"+
		"\nCommit message must be a maximum of 72 characters."+
		"\nAdd a description after the commit message."+
		"\nExclude anything unnecessary such as translation. Your entire response will be passed directly into git commit."+
		"\n\nCode diff:\n```diff\n%s\n```",
		commitTypes, s.Diff)
	if hint != "" {
		user += fmt.Sprintf("\n\nUse the following context to understand intent:\n%s", hint)
	}
	return Prompt{System: draftSystemPrompt, User: user}, nil
}
