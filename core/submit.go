package core

import (
	"fmt"

	"github.com/icza/gox/stringsx"
	"github.com/jiayueytl/malaymeta-eval/auth"
)

// ReviewInput is what a submission carries. Which parts take effect depends
// on the requester's role; the rest is written back from the stored task.
type ReviewInput struct {
	Ratings map[string]Rating
	Qa1     Review
	Qa2     Review
}

// SubmitReview applies one submission to a task.
//
// A plain annotator may only write while the task is Open and only with all
// 13 justifications filled in; their QA fields are ignored and the stored QA
// state is written back verbatim. A QA user saves partial review state freely,
// even while the task is Locked; QA1 input covers the qa1 block, QA2 input
// covers both blocks. Every successful save sets is_submitted.
//
// The persistence scope is always the task's owning username, never the
// requester's; a QA save scoped to the QA user would silently match zero rows.
func (c *CoreDB) SubmitReview(requester, id string, in ReviewInput) error {

	requester = auth.Clean(requester)

	t, err := c.TaskDB.GetTask(id)
	if err != nil {
		return err
	}
	if err := c.authorize(requester, t); err != nil {
		return err
	}

	isQa := c.Roles.IsQaUser(requester)
	if !isQa {
		if t.State() == Locked {
			return fmt.Errorf("task %s is locked: %w", t.ID, ErrForbidden)
		}
		if err := CompleteRatings(in.Ratings); err != nil {
			return err
		}
	}
	if err := validRatings(in.Ratings); err != nil {
		return err
	}

	var upd = ReviewUpdate{
		Ratings: t.Ratings, // a QA save without ratings keeps the annotator's work
		Qa1:     t.Qa1Review(),
		Qa2:     t.Qa2Review(),
	}
	if in.Ratings != nil {
		upd.Ratings = scrubRatings(in.Ratings)
	}
	if isQa {
		if err := validReview(in.Qa1); err != nil {
			return err
		}
		upd.Qa1 = scrubReview(in.Qa1)
		if c.Roles.IsQa2(requester) {
			if err := validReview(in.Qa2); err != nil {
				return err
			}
			upd.Qa2 = scrubReview(in.Qa2)
		}
	}

	return c.TaskDB.UpdateReview(t.ID, t.Username, upd)
}

func validRatings(ratings map[string]Rating) error {
	for key, r := range ratings {
		if r.Score < MinScore || r.Score > MaxScore {
			return fmt.Errorf("score %d for %s out of range: %w", r.Score, ModelLabel(key), ErrInvalidInput)
		}
	}
	return nil
}

func validReview(r Review) error {
	switch r.Flag {
	case "", FlagPass, FlagFail:
	default:
		return fmt.Errorf("unknown flag %q: %w", r.Flag, ErrInvalidInput)
	}
	switch r.Status {
	case "", StatusPending, StatusInReview, StatusDone:
	default:
		return fmt.Errorf("unknown status %q: %w", r.Status, ErrInvalidInput)
	}
	return nil
}

// free text goes to the database, control characters don't
func scrubRatings(ratings map[string]Rating) map[string]Rating {
	var clean = make(map[string]Rating, len(ratings))
	for key, r := range ratings {
		r.Justification = stringsx.Clean(r.Justification)
		clean[key] = r
	}
	return clean
}

func scrubReview(r Review) Review {
	r.Feedback = stringsx.Clean(r.Feedback)
	if r.Ratings != nil {
		var clean = make(map[string]ReviewNote, len(r.Ratings))
		for key, note := range r.Ratings {
			note.Justification = stringsx.Clean(note.Justification)
			clean[key] = note
		}
		r.Ratings = clean
	}
	return r
}
