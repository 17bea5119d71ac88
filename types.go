package itemtext

import (
	"strings"
	"time"
)

// RawRow is one CSV row as read from the source file. Fields are typed once
// at ingestion; a row is never modified afterwards.
type RawRow struct {
	ItemID          string
	ItemDescription string
	QuestionContent string
	Options         string
	CorrectOption   bool
	Explanation     string
}

// NormalizedRecord is one logical item reconstructed from its rows.
// ItemID is never empty and unique within a batch.
type NormalizedRecord struct {
	ItemID          string `json:"item_id" yaml:"item_id"`
	ItemDescription string `json:"item_description" yaml:"item_description"`
	Question        string `json:"question" yaml:"question"`
	Answer          string `json:"answer" yaml:"answer"`
	Explanation     string `json:"explanation" yaml:"explanation"`
}

// ContentKind names which field of a record a conversion is for.
type ContentKind string

// Content kinds.
const (
	KindQuestion ContentKind = "question"
	KindAnswer   ContentKind = "answer"
)

// ConversionRequest asks the pipeline to turn one field into plain text.
// Identifier names the rendered asset and must be unique per run.
type ConversionRequest struct {
	Kind       ContentKind
	Markup     string
	Identifier string
}

// NewRequest builds a request whose identifier is "<itemID>_<kind>".
func NewRequest(itemID string, kind ContentKind, markupText string) ConversionRequest {
	return ConversionRequest{
		Kind:       kind,
		Markup:     markupText,
		Identifier: itemID + "_" + string(kind),
	}
}

// State is a step of a single conversion.
type State int

// Conversion states. Done and Failed are terminal.
const (
	StateStart State = iota
	StateDetectMarkup
	StatePassThrough
	StateRender
	StateExtract
	StateDone
	StateFailed
)

var stateNames = [...]string{
	StateStart:        "start",
	StateDetectMarkup: "detect-markup",
	StatePassThrough:  "pass-through",
	StateRender:       "render",
	StateExtract:      "extract",
	StateDone:         "done",
	StateFailed:       "failed",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// Terminal reports whether no further transition is possible.
func (s State) Terminal() bool {
	return s == StateDone || s == StateFailed
}

// ConversionResult is the tagged outcome of a conversion.
//
// State is StateDone or StateFailed. On Done, Text holds the extracted or
// passed-through text. On Failed, Err says why. AssetPath is set whenever a
// rendered image exists on disk, including after an extraction failure, so
// the caller can always dispose of it.
type ConversionResult struct {
	State     State
	Text      string
	AssetPath string
	Err       error
	Trace     []State // states visited, in order
	Duration  time.Duration
}

// Failed reports whether the conversion ended in StateFailed.
func (r ConversionResult) Failed() bool {
	return r.State == StateFailed
}

// Problem is the record shape handed to the downstream tutoring layer.
type Problem struct {
	ItemID      string `json:"item_id" yaml:"item_id"`
	Grade       int    `json:"grade" yaml:"grade"`
	Question    string `json:"question" yaml:"question"`
	Answer      string `json:"answer" yaml:"answer"`
	Explanation string `json:"explanation" yaml:"explanation"`
}

// isBlank reports whether s is empty or whitespace only.
func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
