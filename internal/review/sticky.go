package review

import "strings"

// StickyConfig controls the enclosing-scope overlay.
type StickyConfig struct {
	Enabled  bool
	MaxLines int
}

// DefaultStickyConfig enables the overlay with up to five scope lines.
func DefaultStickyConfig() StickyConfig {
	return StickyConfig{Enabled: true, MaxLines: 5}
}

// StickyLine is one reconstructed scope header shown above the viewport.
type StickyLine struct {
	Number int
	Text   string
	Indent int
}

// ScopeProviderFunc maps source text, its filename, and a scroll line to the
// scope headers enclosing that line, outermost first. The filename lets
// grammar-aware providers pick a parser; the built-in heuristic ignores it.
type ScopeProviderFunc func(source, filename string, scrollLine int) []StickyLine

// HeuristicScopes adapts StickyScopes to the provider shape.
func HeuristicScopes(cfg StickyConfig) ScopeProviderFunc {
	return func(source, _ string, scrollLine int) []StickyLine {
		raw := strings.Split(strings.TrimSuffix(source, "\n"), "\n")
		lines := make([]Side, len(raw))
		for i, text := range raw {
			lines[i] = Side{Number: i + 1, Text: strings.TrimSuffix(text, "\r")}
		}
		return StickyScopes(lines, scrollLine, cfg)
	}
}

// ScopesAt returns the scope overlay for the given new-side line of the
// current file, through the session's injected provider.
func (s *Session) ScopesAt(line int) []StickyLine {
	file, ok := s.CurrentDiff()
	if !ok {
		return nil
	}
	provider := s.Settings.Scope
	if provider == nil {
		provider = HeuristicScopes(s.Settings.Sticky)
	}
	return provider(file.NewContent, file.Filename, line)
}

// StickyScopes scans lines from the start up to scroll, tracking which
// blocks are still open there, and returns their header lines outermost
// first. The scan is a keyword-and-indentation heuristic over brace and
// colon syntaxes, not a parse; it has to tolerate the malformed fragments
// a diff view routinely shows.
func StickyScopes(lines []Side, scroll int, cfg StickyConfig) []StickyLine {
	if !cfg.Enabled || len(lines) == 0 || scroll == 0 {
		return nil
	}

	type openBlock struct {
		number int
		text   string
		indent int
	}
	var open []openBlock

	// A signature line ending "(" opens nothing by itself; remember it and
	// attach it when the ") ... {" line arrives, so the overlay shows the
	// signature's first line rather than its closing parenthesis.
	var pending *openBlock

	for idx, line := range lines {
		if idx >= scroll {
			break
		}
		indent := indentWidth(line.Text)

		switch {
		case isSignatureStart(line.Text):
			pending = &openBlock{number: line.Number, text: line.Text, indent: indent}
		case isSignatureEnd(line.Text):
			if pending != nil {
				open = append(open, *pending)
				pending = nil
			} else {
				open = append(open, openBlock{number: line.Number, text: line.Text, indent: indent})
			}
		case isBlockOpener(line.Text):
			pending = nil
			open = append(open, openBlock{number: line.Number, text: line.Text, indent: indent})
		}

		// A closing brace pops every block at its indentation or deeper,
		// unless the same line also opens a block ("} else {").
		if strings.Contains(line.Text, "}") && !isSignatureEnd(line.Text) && !isBlockOpener(line.Text) {
			for len(open) > 0 && indent <= open[len(open)-1].indent {
				open = open[:len(open)-1]
			}
		}
	}

	currentIndent := 0
	if scroll < len(lines) {
		currentIndent = indentWidth(lines[scroll].Text)
	}

	var sticky []StickyLine
	for _, b := range open {
		if b.indent < currentIndent || currentIndent == 0 {
			sticky = append(sticky, StickyLine{Number: b.number, Text: b.text, Indent: b.indent})
		}
	}
	if len(sticky) > cfg.MaxLines {
		sticky = sticky[:cfg.MaxLines]
	}
	return sticky
}

// indentWidth counts leading whitespace, a tab weighing four columns.
func indentWidth(line string) int {
	w := 0
	for _, r := range line {
		switch r {
		case ' ':
			w++
		case '\t':
			w += 4
		default:
			return w
		}
	}
	return w
}

var openerKeywords = []string{
	"fn ", "func ", "function ", "def ",
	"impl ", "struct ", "enum ", "trait ", "class ", "interface ",
}

var openerPrefixes = []string{
	"if ", "} else if ", "else if ",
	"for ", "while ", "loop ", "match ", "switch ",
	"try ", "catch ", "finally ",
	"mod ", "pub mod ", "namespace ", "module ",
}

// isBlockOpener reports whether a line opens a scope worth pinning:
// a non-comment line ending in "{" or ":" that looks like a function,
// type, control-flow, or module declaration.
func isBlockOpener(line string) bool {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return false
	}
	if strings.HasPrefix(trimmed, "//") || strings.HasPrefix(trimmed, "#") || strings.HasPrefix(trimmed, "/*") {
		return false
	}
	if !strings.HasSuffix(trimmed, "{") && !strings.HasSuffix(trimmed, ":") {
		return false
	}
	if trimmed == "{" || trimmed == ":{" {
		return false
	}

	lower := strings.ToLower(trimmed)
	for _, kw := range openerKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	for _, p := range openerPrefixes {
		if strings.HasPrefix(lower, p) {
			return true
		}
	}
	if lower == "else {" {
		return true
	}
	// Multi-line closures: |args| {, => {, -> {.
	if (strings.Contains(lower, "|") && strings.HasSuffix(lower, "{")) ||
		strings.Contains(lower, "=> {") || strings.Contains(lower, "-> {") {
		return true
	}
	return false
}

// isSignatureStart reports whether a line begins a multi-line function
// signature, with the parameter list continuing on following lines.
func isSignatureStart(line string) bool {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" || !strings.HasSuffix(trimmed, "(") {
		return false
	}

	lower := strings.ToLower(trimmed)
	if strings.Contains(lower, "fn ") || strings.Contains(lower, "func ") ||
		strings.Contains(lower, "function ") || strings.Contains(lower, "function(") {
		return true
	}
	for _, mod := range []string{"private ", "public ", "protected ", "static ", "async "} {
		if strings.Contains(lower, mod) {
			return true
		}
	}
	return strings.HasPrefix(lower, "def ") || strings.Contains(lower, " def ")
}

// isSignatureEnd reports whether a line closes a multi-line signature and
// opens its block: ") {", "): ReturnType {", ") => {" and similar.
func isSignatureEnd(line string) bool {
	trimmed := strings.TrimSpace(line)
	if !strings.HasSuffix(trimmed, "{") {
		return false
	}
	return strings.HasPrefix(trimmed, ")") ||
		strings.Contains(trimmed, ") {") ||
		strings.Contains(trimmed, "): ") ||
		strings.Contains(trimmed, ") =>")
}
