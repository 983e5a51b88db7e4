package core

import (
	"fmt"
	"strings"
)

// ModelKeys are the stable identifiers of the 13 machine-translation outputs
// attached to every task. Their order is the tab order of the annotation UI.
var ModelKeys = []string{
	"gemini_3_pro_preview",
	"gpt_5_2_2025_12_11",
	"doubao_seed_1_8_251228",
	"qwen3_235b_a22b_thinking_2507",
	"kimi_k2_0905_preview",
	"glm_4_7",
	"minimax_m2_1",
	"qwen3_235b_a22b_instruct_2507",
	"qwen3_max_2026_01_23",
	"claude_sonnet_4_5_20250929_thinking",
	"deepseek_chat_official",
	"gemini_2_5_flash",
	"glm_4_5_air",
}

// ModelLabel returns the neutral display name of a model key ("Model 1" etc).
// Annotators must rate outputs blind, so real model names never reach the UI.
func ModelLabel(key string) string {
	for i, k := range ModelKeys {
		if k == key {
			return fmt.Sprintf("Model %d", i+1)
		}
	}
	return key
}

const (
	MinScore = 0
	MaxScore = 4
)

const (
	FlagPass = "PASS"
	FlagFail = "FAIL"
)

const (
	StatusPending  = "pending"
	StatusInReview = "in_review"
	StatusDone     = "done"
)

// A Rating is one annotator verdict on one model output.
type Rating struct {
	Score         int    `json:"score"`
	Justification string `json:"justification"`
}

// A ReviewNote is one QA remark on one model output.
type ReviewNote struct {
	Justification string `json:"justification"`
}

// A Review is the state of one QA tier on a task.
type Review struct {
	Flag     string                `json:"flag"`
	Status   string                `json:"status"`
	Feedback string                `json:"feedback"`
	Ratings  map[string]ReviewNote `json:"ratings"`
}

// A Task is one unit of annotation work: one source text, its candidate model
// translations and the accumulated ratings and reviews. Source content
// (text, language, url, notes, outputs) is immutable after seeding, and the
// owning annotator never changes.
type Task struct {
	ID           string            `json:"id"`
	RowNum       int               `json:"row_num"`
	Username     string            `json:"username"`
	OriginalText string            `json:"original_text"`
	Language     string            `json:"language"`
	URL          string            `json:"url"`
	Notes        string            `json:"notes"`
	Outputs      map[string]string `json:"outputs"`
	Ratings      map[string]Rating `json:"ratings"`

	Qa1Username string                `json:"qa1_username"`
	Qa1Flag     string                `json:"qa1_flag"`
	Qa1Status   string                `json:"qa1_status"`
	Qa1Feedback string                `json:"qa1_feedback"`
	Qa1Ratings  map[string]ReviewNote `json:"qa1_ratings"`

	Qa2Flag     string                `json:"qa2_flag"`
	Qa2Status   string                `json:"qa2_status"`
	Qa2Feedback string                `json:"qa2_feedback"`
	Qa2Ratings  map[string]ReviewNote `json:"qa2_ratings"`

	IsSubmitted bool  `json:"is_submitted"`
	Updated     int64 `json:"updated"`
}

// State is derived from qa1_status and never stored.
type State int

const (
	Open   State = iota // the annotator may edit ratings
	Locked              // only QA users may write
)

func (s State) String() string {
	if s == Locked {
		return "locked"
	}
	return "open"
}

func (t *Task) State() State {
	if t.Qa1Status == StatusDone {
		return Locked
	}
	return Open
}

func (t *Task) Qa1Review() Review {
	return Review{
		Flag:     t.Qa1Flag,
		Status:   t.Qa1Status,
		Feedback: t.Qa1Feedback,
		Ratings:  t.Qa1Ratings,
	}
}

func (t *Task) Qa2Review() Review {
	return Review{
		Flag:     t.Qa2Flag,
		Status:   t.Qa2Status,
		Feedback: t.Qa2Feedback,
		Ratings:  t.Qa2Ratings,
	}
}

func (t *Task) Summary() TaskSummary {
	return TaskSummary{
		ID:           t.ID,
		RowNum:       t.RowNum,
		OriginalText: t.OriginalText,
		IsSubmitted:  t.IsSubmitted,
	}
}

// A TaskSummary is the list-view projection of a task.
// Ratings and model outputs are deliberately excluded.
type TaskSummary struct {
	ID           string `json:"id"`
	RowNum       int    `json:"row_num"`
	OriginalText string `json:"original_text"`
	IsSubmitted  bool   `json:"is_submitted"`
}

// An OwnedSummary carries the owning annotator along for grouping queries.
// The username is excluded from JSON so it cannot leak through a masked view.
type OwnedSummary struct {
	TaskSummary
	Username string `json:"-"`
}

// CompleteRatings checks the annotator completeness gate: every model key
// must carry a justification which is non-empty after trimming.
func CompleteRatings(ratings map[string]Rating) error {
	for _, key := range ModelKeys {
		r, ok := ratings[key]
		if !ok || strings.TrimSpace(r.Justification) == "" {
			return fmt.Errorf("justification missing for %s: %w", ModelLabel(key), ErrInvalidInput)
		}
	}
	return nil
}
