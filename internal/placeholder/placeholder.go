// Package placeholder performs the version-token substitution pass.
//
// Tokens look like $VERSION$ or $SCALA_VERSION$: an uppercase name delimited
// by dollar signs. Substitution is a single linear scan over the input;
// substituted values are never re-scanned, so expansion cannot recurse.
package placeholder

import (
	"bytes"

	"git.home.luguber.info/inful/docexpand/internal/report"
)

// Substitute replaces every recognized placeholder token in body with its
// configured value. Tokens whose name is not present in values are left in
// place and reported as SubstitutionWarning issues; an unresolved version in
// an illustrative sample must not fail the run.
//
// docKey is used only for issue attribution.
func Substitute(docKey string, body []byte, values map[string]string) ([]byte, []report.Issue) {
	if !bytes.ContainsRune(body, '$') {
		return body, nil
	}

	var out bytes.Buffer
	out.Grow(len(body))

	var issues []report.Issue
	line := 1

	for i := 0; i < len(body); {
		c := body[i]
		if c == '\n' {
			line++
		}
		if c != '$' {
			out.WriteByte(c)
			i++
			continue
		}

		name, end := scanToken(body, i)
		if name == "" {
			// A lone dollar sign (prices, shell variables) is not a token.
			out.WriteByte(c)
			i++
			continue
		}

		if value, ok := values[name]; ok {
			out.WriteString(value)
		} else {
			out.Write(body[i:end])
			issues = append(issues, report.Issue{
				Doc:     docKey,
				Line:    line,
				Kind:    report.KindSubstitutionWarning,
				Message: "unresolved placeholder $" + name + "$",
			})
		}
		i = end
	}

	return out.Bytes(), issues
}

// scanToken reads a $NAME$ token starting at the opening dollar sign. It
// returns the token name and the index just past the closing dollar, or
// ("", 0) when no token starts at i. Names are uppercase ASCII letters,
// digits, and underscores, starting with a letter.
func scanToken(body []byte, i int) (string, int) {
	j := i + 1
	if j >= len(body) || !isNameStart(body[j]) {
		return "", 0
	}
	for j < len(body) && isNameByte(body[j]) {
		j++
	}
	if j >= len(body) || body[j] != '$' {
		return "", 0
	}
	return string(body[i+1 : j]), j + 1
}

func isNameStart(b byte) bool {
	return b >= 'A' && b <= 'Z'
}

func isNameByte(b byte) bool {
	return isNameStart(b) || (b >= '0' && b <= '9') || b == '_'
}
