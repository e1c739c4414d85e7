// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package extract turns a recommendation answer into structured professor
// records. Extraction is heuristic and best-effort: a gate rejects
// narrative text, numbered entries are split into segments, and each field
// is found by an ordered list of strategies. A missing field is omitted,
// never an error.
package extract

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/pdiddy/research-match/pkg/types"
)

// Score weights.
const (
	baseScore      = 60
	emailBonus     = 10
	homepageBonus  = 10
	areaBonus      = 10
	highlightBonus = 5
	officeBonus    = 2
	phoneBonus     = 3
)

// FieldTrace records which strategy produced a field value.
type FieldTrace struct {
	Field    string `json:"field" yaml:"field"`
	Strategy string `json:"strategy" yaml:"strategy"`
	Value    string `json:"value" yaml:"value"`
}

// SegmentTrace is the provenance of one extracted record.
type SegmentTrace struct {
	Index  int          `json:"index" yaml:"index"`
	Text   string       `json:"text" yaml:"text"`
	Fields []FieldTrace `json:"fields" yaml:"fields"`
}

// Explanation describes how an answer was or was not extracted.
type Explanation struct {
	// Gate names the indicator that let extraction run; empty when gated out.
	Gate     string         `json:"gate" yaml:"gate"`
	Segments []SegmentTrace `json:"segments" yaml:"segments"`
}

// Extractor holds the compiled strategy tables for one vocabulary. It is
// safe for concurrent use.
type Extractor struct {
	vocab    Vocabulary
	areaKeys []string
	school   []strategy
	cleanup  schoolCleanup
	logger   *slog.Logger
	now      func() time.Time
}

// New compiles an Extractor for vocab. A nil logger discards output.
func New(vocab Vocabulary, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	keys := make([]string, len(vocab.ResearchAreas))
	for i, kw := range vocab.ResearchAreas {
		keys[i] = strings.ToLower(kw)
	}
	return &Extractor{
		vocab:    vocab,
		areaKeys: keys,
		school:   schoolStrategies(vocab),
		cleanup:  newSchoolCleanup(vocab),
		logger:   logger,
		now:      time.Now,
	}
}

// Extract returns the records found in text, identified by the current
// time. A nil result means no structured entities.
func (e *Extractor) Extract(text string) []types.ProfessorRecord {
	return e.ExtractAt(text, e.now())
}

// ExtractAt is Extract with the submission time used for record ids.
func (e *Extractor) ExtractAt(text string, submittedAt time.Time) []types.ProfessorRecord {
	records, expl := e.run(text, submittedAt)
	if expl.Gate == "" {
		e.logger.Debug("extraction gated out")
		return nil
	}
	for _, seg := range expl.Segments {
		attrs := []any{"segment", seg.Index}
		for _, f := range seg.Fields {
			attrs = append(attrs, f.Field, f.Strategy)
		}
		e.logger.Debug("extracted professor", attrs...)
	}
	e.logger.Info("extraction done", "gate", expl.Gate, "records", len(records))
	return records
}

// Explain reports the gate decision and per-field provenance for text
// without logging.
func (e *Extractor) Explain(text string) Explanation {
	_, expl := e.run(text, e.now())
	return expl
}

func (e *Extractor) run(text string, submittedAt time.Time) ([]types.ProfessorRecord, Explanation) {
	var expl Explanation
	name, ok := gate(text)
	if !ok {
		return nil, expl
	}
	expl.Gate = name

	segments := segment(text)
	if len(segments) == 0 {
		return nil, expl
	}

	stamp := submittedAt.UnixMilli()
	records := make([]types.ProfessorRecord, 0, len(segments))
	for i, seg := range segments {
		rec, fields := e.extractSegment(seg, i)
		rec.ProfID = fmt.Sprintf("prof_%d_%d", stamp, i)
		rec.DocumentID = fmt.Sprintf("doc_%d_%d", stamp, i)
		records = append(records, rec)
		expl.Segments = append(expl.Segments, SegmentTrace{Index: i, Text: seg, Fields: fields})
	}
	return records, expl
}

func (e *Extractor) extractSegment(seg string, index int) (types.ProfessorRecord, []FieldTrace) {
	var rec types.ProfessorRecord
	var trace []FieldTrace
	note := func(field, by, value string) {
		if by != "" {
			trace = append(trace, FieldTrace{Field: field, Strategy: by, Value: value})
		}
	}

	var by string
	rec.Name, by = nameOf(seg, index)
	note("name", by, rec.Name)

	rec.School, by = e.schoolOf(seg)
	note("school", by, rec.School)

	rec.Email, by = firstOf(emailStrategies, seg)
	note("email", by, rec.Email)

	rec.Office, by = firstOf(officeStrategies, seg)
	note("office", by, rec.Office)

	rec.Phone, by = firstOf(phoneStrategies, seg)
	note("phone", by, rec.Phone)

	rec.Homepages, by = homepagesOf(seg)
	note("homepages", by, strings.Join(rec.Homepages, " "))

	rec.Areas = e.areasOf(seg)
	if len(rec.Areas) > 0 {
		note("areas", "vocabulary", strings.Join(rec.Areas, ","))
	}

	var achievements int
	rec.Highlights, achievements = highlightsOf(seg)
	if achievements > 0 {
		note("highlights", "sentences", fmt.Sprint(achievements))
	} else {
		note("highlights", "fallback", "")
	}

	rec.Score = score(rec, achievements)
	rec.DisplayScore = rec.Score
	return rec, trace
}

// score rates how complete a record is. achievements counts real
// highlight sentences, excluding the fallback pair.
func score(rec types.ProfessorRecord, achievements int) int {
	s := baseScore
	if rec.Email != "" {
		s += emailBonus
	}
	if len(rec.Homepages) > 0 {
		s += homepageBonus
	}
	if len(rec.Areas) > 0 {
		s += areaBonus
	}
	if achievements > 2 {
		s += highlightBonus
	}
	if rec.Office != "" {
		s += officeBonus
	}
	if rec.Phone != "" {
		s += phoneBonus
	}
	return min(max(s, 0), 100)
}
