package core

import (
	"fmt"

	"github.com/jiayueytl/malaymeta-eval/auth"
)

// A TaskGroup is one dashboard group. For QA2 the label is the real annotator
// username; for QA1 it is a masked token. Groups are returned as an ordered
// slice because the group order is part of the contract.
type TaskGroup struct {
	Label string        `json:"label"`
	Tasks []TaskSummary `json:"tasks"`
}

// ListOwnTasks returns the summaries of the requester's own tasks,
// ordered by row_num.
func (c *CoreDB) ListOwnTasks(username string) ([]TaskSummary, error) {
	return c.TaskDB.ListByOwner(auth.Clean(username))
}

// ListAllGrouped returns every task grouped by the real owning annotator,
// groups ordered by username, tasks by row_num. QA2 view.
func (c *CoreDB) ListAllGrouped() ([]TaskGroup, error) {

	rows, err := c.TaskDB.ListAll()
	if err != nil {
		return nil, err
	}

	var groups []TaskGroup
	for _, row := range rows {
		if len(groups) == 0 || groups[len(groups)-1].Label != row.Username {
			groups = append(groups, TaskGroup{Label: row.Username})
		}
		last := &groups[len(groups)-1]
		last.Tasks = append(last.Tasks, row.TaskSummary)
	}
	return groups, nil
}

// ListAssignedGroupedMasked returns the tasks assigned to one QA1 reviewer,
// grouped by the owning annotator but labelled "Annotator <N>". N is assigned
// in first-seen order per call; the index map is ephemeral on purpose, so no
// cross-request correlation of annotator identities is possible. QA1 must
// never learn real annotator identity through this code path.
func (c *CoreDB) ListAssignedGroupedMasked(qa1Username string) ([]TaskGroup, error) {

	rows, err := c.TaskDB.ListByQa1(auth.Clean(qa1Username))
	if err != nil {
		return nil, err
	}

	var indexes = make(map[string]int) // real username -> group slice index
	var groups []TaskGroup
	for _, row := range rows {
		i, ok := indexes[row.Username]
		if !ok {
			i = len(groups)
			indexes[row.Username] = i
			groups = append(groups, TaskGroup{Label: fmt.Sprintf("Annotator %d", i+1)})
		}
		groups[i].Tasks = append(groups[i].Tasks, row.TaskSummary)
	}
	return groups, nil
}

// GetTaskDetail returns the full task if the requester is authorized:
// QA2 may fetch any task, an assigned QA1 reviewer their assigned tasks,
// and the owning annotator their own. Anything else is ErrForbidden,
// deliberately distinct from ErrNotFound.
func (c *CoreDB) GetTaskDetail(id, requester string) (*Task, error) {
	t, err := c.TaskDB.GetTask(id)
	if err != nil {
		return nil, err
	}
	if err := c.authorize(requester, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (c *CoreDB) authorize(requester string, t *Task) error {
	requester = auth.Clean(requester)
	if t.Username == requester {
		return nil
	}
	if c.Roles.IsQa2(requester) {
		return nil
	}
	if c.Roles.IsQa1(requester) && t.Qa1Username == requester {
		return nil
	}
	return fmt.Errorf("task %s: %w", t.ID, ErrForbidden)
}

// FindNextPending governs "skip to next": the first unsubmitted task with a
// row_num strictly greater than the current one wins; failing that, the first
// unsubmitted task other than the current one (wraparound); failing that, "".
func FindNextPending(tasks []TaskSummary, currentID string, currentRow int) string {
	for _, t := range tasks {
		if !t.IsSubmitted && t.ID != currentID && t.RowNum > currentRow {
			return t.ID
		}
	}
	for _, t := range tasks {
		if !t.IsSubmitted && t.ID != currentID {
			return t.ID
		}
	}
	return ""
}
