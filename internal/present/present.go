// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package present decides the final shape of an answer: refusal, prose,
// card, or both. The decision is an ordered rule table; the first rule
// whose condition holds wins.
package present

import (
	"strings"

	"github.com/pdiddy/research-match/internal/sanitize"
	"github.com/pdiddy/research-match/pkg/types"
)

// User-facing canned texts.
const (
	RefusalText = "抱歉，我们无法为您提供相关内容的回答，请问您有什么科研合作需求？"
	SlowText    = "智能体正在为您分析，处理时间较长，请稍后重试或换个问题试试。"
	FailedText  = "智能体处理遇到问题，请稍后重试或换个表达方式。"
	GenericText = "抱歉，暂时无法为您提供回复，请稍后重试。"
)

// Shape is the form of the payload.
type Shape string

const (
	ShapeFallback    Shape = "fallback"
	ShapeRefusal     Shape = "refusal"
	ShapeTextAndCard Shape = "text_and_card"
	ShapeCardOnly    Shape = "card_only"
	ShapeTextOnly    Shape = "text_only"
)

// Input is everything the policy looks at.
type Input struct {
	// Answer is the raw agent text; blank means no usable transcript.
	Answer         string
	Status         types.JobStatus
	Classification types.Classification
	Records        []types.ProfessorRecord
}

func (in Input) hasText() bool { return strings.TrimSpace(in.Answer) != "" }
func (in Input) hasCard() bool { return len(in.Records) > 0 }

// Decision names the rule that fired and the shape it selects.
type Decision struct {
	Rule  string `json:"rule" yaml:"rule"`
	Shape Shape  `json:"shape" yaml:"shape"`
}

type rule struct {
	name  string
	when  func(Input) bool
	shape Shape
}

var rules = []rule{
	{"no-text", func(in Input) bool { return !in.hasText() }, ShapeFallback},
	{"irrelevant", func(in Input) bool { return in.Classification.Irrelevant }, ShapeRefusal},
	{"specific-with-card", func(in Input) bool {
		return in.hasCard() && in.Classification.Intent == types.IntentSpecific
	}, ShapeTextAndCard},
	{"broad-with-card", func(in Input) bool { return in.hasCard() }, ShapeCardOnly},
	{"text-only", func(Input) bool { return true }, ShapeTextOnly},
}

// Decide returns the first matching rule.
func Decide(in Input) Decision {
	for _, r := range rules {
		if r.when(in) {
			return Decision{Rule: r.name, Shape: r.shape}
		}
	}
	// unreachable: text-only always matches
	return Decision{Rule: "text-only", Shape: ShapeTextOnly}
}

// FallbackText returns the message shown when no answer text exists.
func FallbackText(status types.JobStatus) string {
	switch status {
	case types.JobTimedOut, types.JobInProgress, types.JobQueued, types.JobRequiresAction:
		return SlowText
	case types.JobFailed:
		return FailedText
	default:
		return GenericText
	}
}

// Build applies the decision for in and returns the payload.
func Build(in Input) (types.PresentationPayload, Decision) {
	d := Decide(in)
	var p types.PresentationPayload
	switch d.Shape {
	case ShapeFallback:
		p.ResponseText = FallbackText(in.Status)
	case ShapeRefusal:
		p.ResponseText = RefusalText
	case ShapeTextAndCard:
		p.ResponseText = sanitize.Clean(in.Answer, false)
		p.CardData = types.NewProfessorCard(in.Records)
	case ShapeCardOnly:
		p.ResponseText = sanitize.Clean(in.Answer, true)
		p.CardData = types.NewProfessorCard(in.Records)
	case ShapeTextOnly:
		p.ResponseText = sanitize.Clean(in.Answer, false)
		if p.ResponseText == "" {
			// Markup-only answers clean to nothing.
			p.ResponseText = FallbackText(in.Status)
			d = Decision{Rule: "text-only-empty", Shape: ShapeFallback}
		}
	}
	return p, d
}
