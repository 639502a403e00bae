// Package tabs parses <CodeTabs> containers into language-keyed tab groups.
//
// A container holds one fenced code block per language. Readers pick a tab,
// so languages must be unique within a group and tab order must match source
// order for a stable UI across pages.
package tabs

import (
	"fmt"
	"strings"

	"git.home.luguber.info/inful/docexpand/internal/report"
	"git.home.luguber.info/inful/docexpand/internal/util/sets"
)

// FallbackLanguage is assigned to fences whose tag is not in the allowed set.
const FallbackLanguage = "text"

// DefaultLanguages is the allowed language set used when the config does not
// override it.
var DefaultLanguages = []string{"python", "scala", "java", "bash", "sql", "xml", FallbackLanguage}

const (
	containerOpen  = "<CodeTabs"
	containerClose = "</CodeTabs>"
)

// Entry is a single tab: one language, one code body.
type Entry struct {
	Language string
	Body     string
	Line     int // 1-based line of the opening fence within the document body
}

// Group is an ordered set of entries parsed from one container.
type Group struct {
	Line    int // 1-based line of the opening <CodeTabs> tag
	Entries []Entry
}

// Languages returns the entry languages in source order.
func (g Group) Languages() []string {
	out := make([]string, len(g.Entries))
	for i, e := range g.Entries {
		out[i] = e.Language
	}
	return out
}

// Parser scans document bodies for tab containers.
type Parser struct {
	allowed sets.Set[string]
}

// NewParser creates a parser accepting the given language tags. An empty
// slice selects DefaultLanguages.
func NewParser(languages []string) *Parser {
	if len(languages) == 0 {
		languages = DefaultLanguages
	}
	return &Parser{allowed: sets.New(languages...)}
}

// Parse extracts every tab group from body. All malformed-group conditions
// are reported as issues against docKey; parsing continues past each one so
// a single run surfaces every problem. Fenced code outside a container is
// left alone, and container tags that appear inside such fences are ignored.
func (p *Parser) Parse(docKey string, body []byte) ([]Group, []report.Issue) {
	lines := strings.Split(string(body), "\n")

	var (
		groups []Group
		issues []report.Issue
	)

	s := scanner{parser: p, doc: docKey, lines: lines}
	for s.i < len(lines) {
		trimmed := strings.TrimSpace(lines[s.i])

		switch {
		case isFence(trimmed):
			// Plain code block outside any container: skip to its close so
			// container-like text inside it is not parsed.
			s.skipFence(trimmed)
		case isContainerOpen(trimmed):
			group, groupIssues := s.scanGroup()
			issues = append(issues, groupIssues...)
			if group != nil {
				groups = append(groups, *group)
			}
		default:
			s.i++
		}
	}

	return groups, issues
}

type scanner struct {
	parser *Parser
	doc    string
	lines  []string
	i      int
}

func (s *scanner) issue(line int, format string, args ...any) report.Issue {
	return report.Issue{
		Doc:     s.doc,
		Line:    line,
		Kind:    report.KindMalformedTabGroup,
		Message: fmt.Sprintf(format, args...),
	}
}

// scanGroup consumes a container starting at the current line. It returns the
// parsed group (nil when nothing usable was found) plus all issues.
func (s *scanner) scanGroup() (*Group, []report.Issue) {
	openLine := s.i + 1
	s.i++

	group := Group{Line: openLine}
	seen := map[string]int{} // language -> line of first occurrence
	var issues []report.Issue

	for s.i < len(s.lines) {
		trimmed := strings.TrimSpace(s.lines[s.i])

		switch {
		case trimmed == containerClose:
			s.i++
			if len(group.Entries) == 0 {
				issues = append(issues, s.issue(openLine, "tab group is empty"))
				return nil, issues
			}
			return &group, issues
		case isContainerOpen(trimmed):
			issues = append(issues, s.issue(s.i+1, "nested tab container (previous opened at line %d)", openLine))
			s.i++
		case isFence(trimmed):
			entry, entryIssues, ok := s.scanFence(trimmed)
			issues = append(issues, entryIssues...)
			if !ok {
				continue
			}
			if first, dup := seen[entry.Language]; dup {
				issues = append(issues, s.issue(entry.Line,
					"duplicate language %q in tab group (first at line %d)", entry.Language, first))
				continue
			}
			seen[entry.Language] = entry.Line
			group.Entries = append(group.Entries, entry)
		default:
			s.i++
		}
	}

	issues = append(issues, s.issue(openLine, "tab container is never closed"))
	if len(group.Entries) == 0 {
		return nil, issues
	}
	return &group, issues
}

// scanFence consumes one fenced code block starting at the current line.
func (s *scanner) scanFence(opening string) (Entry, []report.Issue, bool) {
	fenceLine := s.i + 1
	marker := fenceMarker(opening)
	tag := strings.TrimSpace(strings.TrimPrefix(opening, marker))
	s.i++

	var body []string
	closed := false
	for s.i < len(s.lines) {
		trimmed := strings.TrimSpace(s.lines[s.i])
		if trimmed == marker {
			s.i++
			closed = true
			break
		}
		if trimmed == containerClose {
			// Do not consume the container close; the group scanner needs it.
			break
		}
		body = append(body, s.lines[s.i])
		s.i++
	}

	var issues []report.Issue
	if !closed {
		issues = append(issues, s.issue(fenceLine, "code fence is never closed"))
		return Entry{}, issues, false
	}
	if tag == "" {
		issues = append(issues, s.issue(fenceLine, "code fence has no language tag"))
		return Entry{}, issues, false
	}

	lang := strings.ToLower(tag)
	if !s.parser.allowed.Has(lang) {
		lang = FallbackLanguage
	}

	return Entry{
		Language: lang,
		Body:     strings.Join(body, "\n"),
		Line:     fenceLine,
	}, issues, true
}

// skipFence advances past a fenced block that is not part of a container.
func (s *scanner) skipFence(opening string) {
	marker := fenceMarker(opening)
	s.i++
	for s.i < len(s.lines) {
		if strings.TrimSpace(s.lines[s.i]) == marker {
			s.i++
			return
		}
		s.i++
	}
}

func isFence(trimmed string) bool {
	return strings.HasPrefix(trimmed, "```") || strings.HasPrefix(trimmed, "~~~")
}

func fenceMarker(trimmed string) string {
	if strings.HasPrefix(trimmed, "~~~") {
		return "~~~"
	}
	return "```"
}

func isContainerOpen(trimmed string) bool {
	if !strings.HasPrefix(trimmed, containerOpen) {
		return false
	}
	rest := trimmed[len(containerOpen):]
	return rest == ">" || strings.HasPrefix(rest, " ") && strings.HasSuffix(rest, ">")
}
