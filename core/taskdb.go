package core

// A ReviewUpdate is the complete mutable state written by a submission.
// Fields the requester may not touch are populated from the stored task
// before it reaches the database, so one write covers every path.
type ReviewUpdate struct {
	Ratings map[string]Rating
	Qa1     Review
	Qa2     Review
}

type TaskDB interface {
	GetTask(id string) (*Task, error)
	ListByOwner(username string) ([]TaskSummary, error)

	// ListAll returns every task ordered by username, then row_num.
	ListAll() ([]OwnedSummary, error)

	// ListByQa1 returns the tasks assigned to a QA1 reviewer, ordered by row_num.
	ListByQa1(qa1Username string) ([]OwnedSummary, error)

	// UpdateReview writes ratings and QA state and sets is_submitted.
	// The write is scoped by the task id and its owning username; if it
	// affects zero rows, UpdateReview returns ErrNotFound.
	UpdateReview(id, owner string, upd ReviewUpdate) error

	// AssignQa1 sets qa1_username on every given task as one atomic batch
	// and returns the number of tasks updated.
	AssignQa1(taskIDs []string, qa1Username string) (int, error)

	InsertTask(t *Task) error
	Writeable() bool
}
