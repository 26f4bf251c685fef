package insight

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

const reflowWidth = 160

var (
	longDecimal   = regexp.MustCompile(`(^|[^\w.])(-?\d+\.\d{3,})\b`)
	orderedMarker = regexp.MustCompile(`^\s*\d+\.\s`)
	bulletLine    = regexp.MustCompile(`^(\s*)([-*+]) (.+)$`)
)

// Polish applies the presentation fixes every answer goes through.
func Polish(text string, reflow bool) string {
	text = stripFence(text)
	text = roundDecimals(text)
	if reflow {
		text = reflowBullets(text)
	}
	return strings.TrimSpace(text)
}

// stripFence unwraps an answer that is one fenced block end to end.
func stripFence(text string) string {
	t := strings.TrimSpace(text)
	if !strings.HasPrefix(t, "```") || !strings.HasSuffix(t, "```") || len(t) < 6 {
		return text
	}
	lines := strings.Split(t, "\n")
	if len(lines) < 2 {
		return text
	}
	fences := 0
	for _, l := range lines {
		if strings.HasPrefix(strings.TrimSpace(l), "```") {
			fences++
		}
	}
	if fences != 2 || strings.TrimSpace(lines[len(lines)-1]) != "```" {
		return text
	}
	return strings.Join(lines[1:len(lines)-1], "\n")
}

// roundDecimals rewrites decimals with more than two places. Heading lines
// are left alone and a leading "1. " list marker is never touched.
func roundDecimals(text string) string {
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		if strings.HasPrefix(strings.TrimSpace(l), "#") {
			continue
		}
		prefix := orderedMarker.FindString(l)
		lines[i] = prefix + longDecimal.ReplaceAllStringFunc(l[len(prefix):], round2)
	}
	return strings.Join(lines, "\n")
}

func round2(match string) string {
	sub := longDecimal.FindStringSubmatch(match)
	f, err := strconv.ParseFloat(sub[2], 64)
	if err != nil {
		return match
	}
	r := math.Round(f*100) / 100
	if r == 0 {
		r = 0 // no "-0.00"
	}
	return sub[1] + strconv.FormatFloat(r, 'f', 2, 64)
}

// reflowBullets moves every sentence after the first of a long bullet into
// nested sub-bullets. The words themselves are unchanged.
func reflowBullets(text string) string {
	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		m := bulletLine.FindStringSubmatch(l)
		if m == nil || len(l) <= reflowWidth {
			out = append(out, l)
			continue
		}
		parts := sentences(m[3])
		if len(parts) < 2 {
			out = append(out, l)
			continue
		}
		out = append(out, m[1]+m[2]+" "+parts[0])
		for _, p := range parts[1:] {
			out = append(out, m[1]+"  "+m[2]+" "+p)
		}
	}
	return strings.Join(out, "\n")
}

// sentences splits at ". " or "; " followed by an upper-case letter or a
// digit, keeping the punctuation with the left part.
func sentences(s string) []string {
	var out []string
	start := 0
	for i := 0; i+2 < len(s); i++ {
		if (s[i] == '.' || s[i] == ';') && s[i+1] == ' ' && startsSentence(s[i+2]) {
			out = append(out, strings.TrimSpace(s[start:i+1]))
			start = i + 2
		}
	}
	if rest := strings.TrimSpace(s[start:]); rest != "" {
		out = append(out, rest)
	}
	return out
}

func startsSentence(c byte) bool {
	return (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}
