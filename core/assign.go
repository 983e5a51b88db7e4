package core

import (
	"fmt"

	"github.com/jiayueytl/malaymeta-eval/auth"
)

// AssignQa1 sets the QA1 reviewer on every given task, as one atomic batch.
// QA2 only. Reassignment simply overwrites, and there is no ownership check:
// QA2 may assign across annotators.
//
// The target is not checked against the configured QA1 role set; callers
// populate the candidate list from configuration, the write path trusts input.
func (c *CoreDB) AssignQa1(requester string, taskIDs []string, qa1Username string) (int, error) {

	if !c.Roles.IsQa2(requester) {
		return 0, fmt.Errorf("qa1 assignment is restricted to qa2: %w", ErrForbidden)
	}

	qa1Username = auth.Clean(qa1Username)
	if len(taskIDs) == 0 || qa1Username == "" {
		return 0, fmt.Errorf("task ids and qa1 username are required: %w", ErrInvalidInput)
	}

	return c.TaskDB.AssignQa1(taskIDs, qa1Username)
}
