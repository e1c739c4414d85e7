// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// UnknownSchool is recorded when no usable department survives cleanup.
const UnknownSchool = "未知学院"

// genericDeptSuffix is appended to a school lacking any department suffix.
const genericDeptSuffix = "学院"

var deptSuffixes = []string{"学院", "研究所", "系"}

// strategy is one way of finding a field value in a segment.
type strategy struct {
	name  string
	apply func(seg string) (string, bool)
}

// firstOf runs strategies in order and returns the first accepted value
// with the name of the strategy that produced it.
func firstOf(strategies []strategy, seg string) (value, by string) {
	for _, s := range strategies {
		if v, ok := s.apply(seg); ok {
			return v, s.name
		}
	}
	return "", ""
}

// captureStrategy accepts the first capture group of re after clean, when
// keep approves it.
func captureStrategy(name string, re *regexp.Regexp, clean func(string) string, keep func(string) bool) strategy {
	return strategy{name: name, apply: func(seg string) (string, bool) {
		m := re.FindStringSubmatch(seg)
		if m == nil {
			return "", false
		}
		v := strings.TrimSpace(m[1])
		if clean != nil {
			v = clean(v)
		}
		if keep != nil && !keep(v) {
			return "", false
		}
		return v, v != ""
	}}
}

func runeLen(s string) int { return utf8.RuneCountInString(s) }

// --- name ---

var boldSpan = regexp.MustCompile(`\*\*([^*]+)\*\*`)

func nameOf(seg string, index int) (string, string) {
	if m := boldSpan.FindStringSubmatch(seg); m != nil {
		if name := strings.TrimSpace(m[1]); name != "" {
			return name, "bold-span"
		}
	}
	return fmt.Sprintf("教授%d", index+1), "fallback"
}

// --- school ---

// schoolStrategies returns the department patterns from most to least
// specific. Each yields a raw candidate; cleanup happens afterwards.
func schoolStrategies(v Vocabulary) []strategy {
	institutions := append([]string{v.Institution}, v.InstitutionAliases...)
	instAlt := quoteAlternation(institutions)

	withInstitution := regexp.MustCompile(`(?:` + instAlt + `)([^，。：:]*?)(学院|研究所|系)`)
	affiliated := regexp.MustCompile(`就职于[^，。：:]*?([^，。：:]*?)(学院|研究所|系)`)
	generic := regexp.MustCompile(`(?:^|[，。：:\s])([^，。：:*]*?)(学院|研究所|系)`)

	joined := func(re *regexp.Regexp) func(string) (string, bool) {
		return func(seg string) (string, bool) {
			m := re.FindStringSubmatch(seg)
			if m == nil {
				return "", false
			}
			s := strings.TrimSpace(m[1] + m[2])
			return s, s != ""
		}
	}

	strategies := []strategy{
		{"institution-department", joined(withInstitution)},
		{"affiliated-with", joined(affiliated)},
		{"generic-department", func(seg string) (string, bool) {
			s, ok := joined(generic)(seg)
			if !ok || strings.Contains(s, "*") || runeLen(s) <= 2 {
				return "", false
			}
			return s, true
		}},
	}
	if len(v.Departments) > 0 {
		known := regexp.MustCompile(quoteAlternation(v.Departments))
		strategies = append(strategies, strategy{"known-department", func(seg string) (string, bool) {
			s := known.FindString(seg)
			return s, s != ""
		}})
	}
	return strategies
}

// schoolCleanup holds the ordered post-processing rewrites. Each removes
// only its first occurrence.
type schoolCleanup struct {
	boldLabel   *regexp.Regexp
	listMarker  *regexp.Regexp
	leadLabel   *regexp.Regexp
	institution *regexp.Regexp
	affiliated  *regexp.Regexp
	possessive  *regexp.Regexp
}

func newSchoolCleanup(v Vocabulary) schoolCleanup {
	institutions := append([]string{v.Institution}, v.InstitutionAliases...)
	return schoolCleanup{
		boldLabel:   regexp.MustCompile(`\*\*[^*]*\*\*[：:]*`),
		listMarker:  regexp.MustCompile(`^[-•·]+\s*`),
		leadLabel:   regexp.MustCompile(`^[^：:]*[：:]`),
		institution: regexp.MustCompile(`^(?:` + quoteAlternation(institutions) + `)`),
		affiliated:  regexp.MustCompile(`^就职于`),
		possessive:  regexp.MustCompile(`^的`),
	}
}

func (c schoolCleanup) apply(school string) string {
	for _, re := range []*regexp.Regexp{c.boldLabel, c.listMarker, c.leadLabel, c.institution, c.affiliated, c.possessive} {
		school = strings.TrimSpace(replaceFirst(re, school, ""))
	}
	school = strings.TrimRight(school, "，。、；;,.：:")
	if school == "" {
		return UnknownSchool
	}
	if !hasDeptSuffix(school) {
		school += genericDeptSuffix
	}
	if runeLen(school) < 3 || strings.ContainsAny(school, "*：:") {
		return UnknownSchool
	}
	return school
}

// schoolOf takes the first candidate longer than two runes, or else the
// last candidate any strategy produced, and cleans it.
func (e *Extractor) schoolOf(seg string) (string, string) {
	var school, by string
	for _, s := range e.school {
		v, ok := s.apply(seg)
		if !ok {
			continue
		}
		school, by = v, s.name
		if runeLen(school) > 2 {
			break
		}
	}
	if by == "" {
		return UnknownSchool, "fallback"
	}
	return e.cleanup.apply(school), by
}

func hasDeptSuffix(s string) bool {
	for _, suf := range deptSuffixes {
		if strings.Contains(s, suf) {
			return true
		}
	}
	return false
}

// --- email ---

const emailExpr = `[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`

var (
	emailPattern = regexp.MustCompile(emailExpr)

	emailStrategies = []strategy{
		captureStrategy("labeled-mailbox", regexp.MustCompile(`(?i)邮箱[：:\s]*(`+emailExpr+`)`), nil, nil),
		captureStrategy("labeled-email", regexp.MustCompile(`(?i)email[：:\s]*(`+emailExpr+`)`), nil, nil),
		captureStrategy("bare-address", regexp.MustCompile(`(`+emailExpr+`)`), nil, nil),
	}
)

// --- office ---

func longerThanTwo(s string) bool { return runeLen(s) > 2 }

var officeStrategies = []strategy{
	captureStrategy("office-label", regexp.MustCompile(`(?:办公地点|办公室|地址)[：:\s]*([^\n。；,，]+)`), nil, longerThanTwo),
	captureStrategy("location-label", regexp.MustCompile(`(?:办公|地点)[：:\s]*([^\n。；,，]+)`), nil, longerThanTwo),
	captureStrategy("address-label", regexp.MustCompile(`(?:位置|地址)[：:\s]*([^\n。；,，]+)`), nil, longerThanTwo),
}

// --- phone ---

var phoneJunk = regexp.MustCompile(`[^\d\-+()\s]`)

func cleanPhone(s string) string {
	return strings.TrimSpace(phoneJunk.ReplaceAllString(s, ""))
}

func phoneLongEnough(s string) bool { return len(s) >= 8 }

var phoneStrategies = []strategy{
	captureStrategy("labeled-phone", regexp.MustCompile(`(?i)(?:联系)?(?:电话|手机|tel)[：:\s]*([\d\s\-+()]{8,20})`), cleanPhone, phoneLongEnough),
	captureStrategy("labeled-phone-en", regexp.MustCompile(`(?i)(?:phone|tel)[：:\s]*([\d\s\-+()]{8,20})`), cleanPhone, phoneLongEnough),
	captureStrategy("bare-mobile", regexp.MustCompile(`(1[3-9]\d{9})`), cleanPhone, phoneLongEnough),
	captureStrategy("bare-landline", regexp.MustCompile(`(\d{3,4}[-\s]?\d{7,8})`), cleanPhone, phoneLongEnough),
}

// --- homepages ---

const urlExpr = `https?://[^\s，。）\n,]+`

var (
	urlPattern = regexp.MustCompile(urlExpr)

	labeledURLPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:个人主页|主页|网站|homepage|website)[：:\s]*(` + urlExpr + `)`),
		regexp.MustCompile(`(?i)(?:主页|homepage)[：:\s]*(` + urlExpr + `)`),
	}
)

// trimURL drops sentence punctuation glued to the end of a bare URL.
func trimURL(u string) string {
	return strings.TrimRight(u, ".;:!?)]'\"")
}

// homepagesOf collects labeled URLs first, then every other URL in text
// order, without duplicates.
func homepagesOf(seg string) ([]string, string) {
	var out []string
	seen := make(map[string]bool)
	add := func(u string) bool {
		u = trimURL(u)
		if u == "" || seen[u] || !strings.Contains(u, "://") {
			return false
		}
		seen[u] = true
		out = append(out, u)
		return true
	}

	by := ""
	for _, re := range labeledURLPatterns {
		for _, m := range re.FindAllStringSubmatch(seg, -1) {
			if add(m[1]) {
				by = "labeled-url"
			}
		}
	}
	for _, u := range urlPattern.FindAllString(seg, -1) {
		if add(u) && by == "" {
			by = "bare-url"
		}
	}
	return out, by
}

// --- areas ---

const maxAreas = 4

// areasOf returns vocabulary keywords contained in seg, compared without
// case, in vocabulary order.
func (e *Extractor) areasOf(seg string) []string {
	lower := strings.ToLower(seg)
	out := []string{}
	seen := make(map[string]bool)
	for i, kw := range e.vocab.ResearchAreas {
		if len(out) == maxAreas {
			break
		}
		if seen[kw] || !strings.Contains(lower, e.areaKeys[i]) {
			continue
		}
		seen[kw] = true
		out = append(out, kw)
	}
	return out
}

// --- highlights ---

const (
	maxHighlights   = 5
	minHighlightLen = 10
)

// FallbackHighlights replace an empty highlight list.
var FallbackHighlights = []string{"在相关研究领域具有丰富经验", "承担多项重要科研项目"}

var (
	phoneRun        = regexp.MustCompile(`\d{3,4}[\s\-]?\d{8,11}`)
	contactSentence = regexp.MustCompile(`(邮箱|电话|主页|网站|办公地点|地址|联系方式)[：:]?[^。\n]*[。\n]?`)
	contactMarker   = regexp.MustCompile(`(邮箱|电话|主页|网站|办公地点|地址|联系方式|http|@)`)
	sentenceSplit   = regexp.MustCompile(`[。；;\n]`)
	listNumber      = regexp.MustCompile(`^\d+\.\s*`)
	listBullet      = regexp.MustCompile(`^[-•*]\s*`)
)

// highlightsOf returns achievement sentences with contact details removed.
// The second result reports whether any real sentence survived; the
// fallback list does not count toward scoring.
func highlightsOf(seg string) ([]string, int) {
	body := seg
	for _, re := range []*regexp.Regexp{boldSpan, emailPattern, urlPattern, phoneRun, contactSentence} {
		body = re.ReplaceAllString(body, "")
	}

	var out []string
	for _, frag := range sentenceSplit.Split(body, -1) {
		frag = strings.TrimSpace(frag)
		frag = listNumber.ReplaceAllString(frag, "")
		frag = listBullet.ReplaceAllString(frag, "")
		frag = strings.TrimSpace(frag)
		if runeLen(frag) <= minHighlightLen || contactMarker.MatchString(frag) {
			continue
		}
		out = append(out, frag)
		if len(out) == maxHighlights {
			break
		}
	}
	if len(out) == 0 {
		return append([]string(nil), FallbackHighlights...), 0
	}
	return out, len(out)
}

// --- helpers ---

func quoteAlternation(words []string) string {
	quoted := make([]string, 0, len(words))
	for _, w := range words {
		if w != "" {
			quoted = append(quoted, regexp.QuoteMeta(w))
		}
	}
	return strings.Join(quoted, "|")
}

func replaceFirst(re *regexp.Regexp, s, repl string) string {
	loc := re.FindStringIndex(s)
	if loc == nil {
		return s
	}
	return s[:loc[0]] + repl + s[loc[1]:]
}
