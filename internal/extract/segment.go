// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import "regexp"

// indicator is one phrase that marks an answer as an explicit
// recommendation list.
type indicator struct {
	name string
	re   *regexp.Regexp
}

// recommendationIndicators gate extraction. Narrative text that merely
// mentions a professor matches none of them.
var recommendationIndicators = []indicator{
	{"professor-recommend", regexp.MustCompile(`教授.*推荐`)},
	{"recommend-professor", regexp.MustCompile(`推荐.*教授`)},
	{"following-professors", regexp.MustCompile(`以下.*教授`)},
	{"recommend-for-you", regexp.MustCompile(`为您推荐`)},
	{"suitable-professor", regexp.MustCompile(`适合.*教授`)},
	{"matching-professor", regexp.MustCompile(`匹配.*教授`)},
	{"collaboration-professor", regexp.MustCompile(`科研.*合作.*教授`)},
	{"numbered-bold-department", regexp.MustCompile(`\d+\.\s*\*\*[^*]+\*\*.*?(学院|研究所|系)`)},
}

var (
	// entryMarker starts a numbered list entry: "1. **王明**".
	entryMarker = regexp.MustCompile(`\d+\.\s*\*\*[^*]+\*\*`)

	// singleEntry is the whole-text fallback: a bold span followed
	// somewhere by a department keyword.
	singleEntry = regexp.MustCompile(`\*\*[^*]+\*\*[\s\S]*?(学院|研究所|系)`)
)

// gate returns the name of the first matching indicator.
func gate(text string) (string, bool) {
	for _, ind := range recommendationIndicators {
		if ind.re.MatchString(text) {
			return ind.name, true
		}
	}
	return "", false
}

// segment splits text into one block per numbered entry. Each block runs
// from its marker to the next marker or the end of text; anything before
// the first marker is preamble and dropped. With no markers the whole text
// is one segment if it looks like a single profile, otherwise there are
// none.
func segment(text string) []string {
	locs := entryMarker.FindAllStringIndex(text, -1)
	if len(locs) == 0 {
		if singleEntry.MatchString(text) {
			return []string{text}
		}
		return nil
	}

	segments := make([]string, 0, len(locs))
	for i, loc := range locs {
		end := len(text)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		segments = append(segments, text[loc[0]:end])
	}
	return segments
}
