package prompt

import "strings"

// fence languages accepted in addition to the requested one. Providers
// occasionally tag python blocks as "py" or javascript as "js".
var fenceAliases = map[string][]string{
	"python":     {"python", "py"},
	"javascript": {"javascript", "js", "node"},
	"typescript": {"typescript", "ts"},
	"go":         {"go", "golang"},
}

// ParseResponse extracts the code block and explanation from a raw provider
// reply. The first fenced block whose info string matches the requested
// language (or any bare fence) becomes the code; text under an EXPLANATION
// heading, or any prose before the first fence, becomes the explanation.
// If no fence is found at all the whole reply is treated as code, matching
// how providers sometimes answer with bare source.
func ParseResponse(text, language string) (code, explanation string) {
	lines := strings.Split(text, "\n")

	var codeLines, explanationLines []string
	inCode := false
	inExplanation := false
	sawFence := false

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)

		switch {
		case !inCode && strings.HasPrefix(trimmed, "```"):
			info := strings.ToLower(strings.TrimPrefix(trimmed, "```"))
			if sawFence {
				// Only the first matching block is kept; later fences are prose.
				continue
			}
			if info == "" || fenceMatches(info, language) {
				inCode = true
				sawFence = true
			}
			continue
		case inCode && trimmed == "```":
			inCode = false
			continue
		case isExplanationHeading(trimmed):
			inExplanation = true
			continue
		}

		if inCode {
			codeLines = append(codeLines, line)
		} else if inExplanation || (!sawFence && len(codeLines) == 0) {
			explanationLines = append(explanationLines, line)
		}
	}

	code = strings.TrimSpace(strings.Join(codeLines, "\n"))
	explanation = strings.TrimSpace(strings.Join(explanationLines, "\n"))

	if code == "" && !sawFence {
		// No fence anywhere: the reply itself is the artifact.
		code = strings.TrimSpace(text)
		explanation = ""
	}
	return code, explanation
}

// HasFencedBlock reports whether text contains a fenced block tagged for the
// given language (aliases included) or a bare fence.
func HasFencedBlock(text, language string) bool {
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, "```") {
			continue
		}
		info := strings.ToLower(strings.TrimPrefix(trimmed, "```"))
		if info == "" || fenceMatches(info, language) {
			return true
		}
	}
	return false
}

func fenceMatches(info, language string) bool {
	language = strings.ToLower(language)
	aliases, ok := fenceAliases[language]
	if !ok {
		aliases = []string{language}
	}
	for _, a := range aliases {
		if info == a {
			return true
		}
	}
	return false
}

func isExplanationHeading(line string) bool {
	upper := strings.ToUpper(line)
	return strings.HasPrefix(upper, "EXPLANATION") ||
		strings.HasPrefix(line, "**Explanation") ||
		strings.HasPrefix(line, "## Explanation")
}
