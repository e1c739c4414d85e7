// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// CardTypeProfessorList is the only card type the pipeline produces.
const CardTypeProfessorList = "professor_list"

// ProfessorRecord is the structured profile extracted from one answer
// segment. JSON keys follow the card consumer's camelCase contract; empty
// optional fields are omitted rather than reported as unknown.
type ProfessorRecord struct {
	// Name is the text of the segment's first bold span.
	Name string `json:"name" yaml:"name"`

	// School is the department/institute, or the "unknown" sentinel.
	School string `json:"school" yaml:"school"`

	// Areas are research-topic tags from the vocabulary (at most 4).
	Areas []string `json:"areas" yaml:"areas"`

	// Highlights are short achievement sentences (at most 5).
	Highlights []string `json:"highlights" yaml:"highlights"`

	Email     string   `json:"email,omitempty" yaml:"email,omitempty"`
	Office    string   `json:"office,omitempty" yaml:"office,omitempty"`
	Phone     string   `json:"phone,omitempty" yaml:"phone,omitempty"`
	Homepages []string `json:"homepages,omitempty" yaml:"homepages,omitempty"`

	// Score is a derived confidence in [0,100], not ground truth.
	Score int `json:"score" yaml:"score"`

	// DisplayScore mirrors Score.
	DisplayScore int `json:"displayScore" yaml:"display_score"`

	// ProfID and DocumentID are derived from the submission timestamp and
	// the segment index, so they differ between answers.
	ProfID     string `json:"profId" yaml:"prof_id"`
	DocumentID string `json:"documentId" yaml:"document_id"`
}

// CardData is the structured card shown in place of or alongside prose.
type CardData struct {
	Type       string            `json:"type" yaml:"type"`
	Professors []ProfessorRecord `json:"professors" yaml:"professors"`
}

// NewProfessorCard wraps records in a card, or returns nil when there are none.
func NewProfessorCard(records []ProfessorRecord) *CardData {
	if len(records) == 0 {
		return nil
	}
	return &CardData{Type: CardTypeProfessorList, Professors: records}
}

// PresentationPayload is the single externally visible result of the
// pipeline. It is built fresh per request and never persisted.
type PresentationPayload struct {
	ResponseText string    `json:"response_text" yaml:"response_text"`
	CardData     *CardData `json:"card_data" yaml:"card_data"`
}
