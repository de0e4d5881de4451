package vcs

import "strings"

// RefKind discriminates the forms a revision argument can take.
type RefKind int

const (
	// RefSingle is a bare revision: one commit compared against its parent.
	RefSingle RefKind = iota
	// RefRange is a two-dot range: from compared against to.
	RefRange
	// RefTripleDot is a three-dot range: merge-base(from, to) against to.
	RefTripleDot
)

// RevisionReference is a parsed revision argument.
type RevisionReference struct {
	Kind   RefKind
	Single string // RefSingle only
	From   string // RefRange, RefTripleDot
	To     string // RefRange, RefTripleDot
}

// ParseRef parses `ref`, `from..to`, and `from...to`. Empty endpoints of a
// range default to workingCopy, the backend's working-copy symbol ("HEAD"
// for git, "@" for jj). The three-dot form is matched first so "a...b" never
// parses as a range from "a" to ".b".
func ParseRef(raw, workingCopy string) (RevisionReference, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return RevisionReference{}, invalidRef(raw, "empty reference")
	}

	if from, to, ok := strings.Cut(raw, "..."); ok {
		ref := RevisionReference{
			Kind: RefTripleDot,
			From: defaultEndpoint(from, workingCopy),
			To:   defaultEndpoint(to, workingCopy),
		}
		return ref, validateEndpoints(ref.From, ref.To)
	}

	if from, to, ok := strings.Cut(raw, ".."); ok {
		ref := RevisionReference{
			Kind: RefRange,
			From: defaultEndpoint(from, workingCopy),
			To:   defaultEndpoint(to, workingCopy),
		}
		return ref, validateEndpoints(ref.From, ref.To)
	}

	if err := validateRefFormat(raw); err != nil {
		return RevisionReference{}, err
	}
	return RevisionReference{Kind: RefSingle, Single: raw}, nil
}

func defaultEndpoint(end, workingCopy string) string {
	end = strings.TrimSpace(end)
	if end == "" {
		return workingCopy
	}
	return end
}

func validateEndpoints(from, to string) error {
	if err := validateRefFormat(from); err != nil {
		return err
	}
	return validateRefFormat(to)
}

// String reassembles the reference for display and logging.
func (r RevisionReference) String() string {
	switch r.Kind {
	case RefRange:
		return r.From + ".." + r.To
	case RefTripleDot:
		return r.From + "..." + r.To
	default:
		return r.Single
	}
}
