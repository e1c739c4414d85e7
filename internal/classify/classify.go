// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package classify labels agent answers as irrelevant (the agent's own
// out-of-scope refusals) and user queries as specific inquiries about one
// named professor versus broad recommendation requests. Both labels come
// from fixed phrase-pattern tables; any single match decides.
package classify

import (
	"log/slog"
	"regexp"

	"github.com/pdiddy/research-match/pkg/types"
)

// Pattern is one named entry of a classification table.
type Pattern struct {
	Name string
	Re   *regexp.Regexp
}

func pattern(name, expr string) Pattern {
	return Pattern{Name: name, Re: regexp.MustCompile(expr)}
}

// IrrelevantPatterns match phrasing characteristic of the agent declining
// a question: apology plus inability, scope limitation, and campus-life or
// administrative topics it does not serve.
var IrrelevantPatterns = []Pattern{
	pattern("apology-cannot-answer", `抱歉.*无法.*提供.*回答`),
	pattern("cannot-provide-answer", `我们无法为您提供.*的回答`),
	pattern("out-of-service-scope", `不在.*服务范围`),
	pattern("focus-on-collaboration", `专注于.*科研.*合作`),
	pattern("ask-research-need", `请问.*科研.*需求`),
	pattern("self-intro-assistant", `我是.*科研.*助手`),
	pattern("only-research-topics", `只能.*科研.*相关`),
	pattern("campus-visit-booking", `预约.*进校`),
	pattern("life-services", `生活.*服务`),
	pattern("administrative-affairs", `行政.*事务`),
	pattern("campus-navigation", `校园.*导航`),
	pattern("course-schedule", `课程.*安排`),
	pattern("exam-scores", `考试.*成绩`),
	pattern("dorm-canteen", `宿舍.*食堂`),
}

// SpecificPatterns match a user asking for deep detail about one professor.
var SpecificPatterns = []Pattern{
	pattern("professor-how-is", `教授.*怎么样`),
	pattern("professor-detailed-info", `教授.*详细.*信息`),
	pattern("professor-research-direction", `教授.*研究.*方向`),
	pattern("professor-contact", `教授.*联系.*方式`),
	pattern("professor-publications", `教授.*发表.*论文`),
	pattern("professor-what-work", `教授.*具体.*做什么`),
	pattern("detailed-intro-professor", `详细.*介绍.*教授`),
	pattern("can-explain-in-detail", `能否.*详细.*说明`),
	pattern("learn-about-professor", `具体.*了解.*教授`),
	pattern("more-about-professor", `更多.*关于.*教授`),
}

// Match returns the first pattern in table that matches text.
func Match(table []Pattern, text string) (Pattern, bool) {
	if text == "" {
		return Pattern{}, false
	}
	for _, p := range table {
		if p.Re.MatchString(text) {
			return p, true
		}
	}
	return Pattern{}, false
}

// Classifier applies the pattern tables and logs which entry matched.
type Classifier struct {
	logger *slog.Logger
}

// New returns a Classifier. A nil logger discards output.
func New(logger *slog.Logger) *Classifier {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Classifier{logger: logger}
}

// IsIrrelevant reports whether the agent's raw answer is an out-of-scope
// refusal. It must be given the answer, not the user's query.
func (c *Classifier) IsIrrelevant(answer string) bool {
	p, ok := Match(IrrelevantPatterns, answer)
	if ok {
		c.logger.Debug("answer classified irrelevant", "pattern", p.Name)
	}
	return ok
}

// IsSpecificInquiry reports whether the user's query asks for detail about
// one named professor. Misses default to broad behaviour.
func (c *Classifier) IsSpecificInquiry(query string) bool {
	p, ok := Match(SpecificPatterns, query)
	if ok {
		c.logger.Debug("query classified specific", "pattern", p.Name)
	}
	return ok
}

// Classify labels one request.
func (c *Classifier) Classify(answer, query string) types.Classification {
	intent := types.IntentBroad
	if c.IsSpecificInquiry(query) {
		intent = types.IntentSpecific
	}
	return types.Classification{
		Irrelevant: c.IsIrrelevant(answer),
		Intent:     intent,
	}
}
