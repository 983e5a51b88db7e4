package core_test

import (
	"sort"

	"github.com/jiayueytl/malaymeta-eval/auth"
	"github.com/jiayueytl/malaymeta-eval/core"
)

// memDB implements core.TaskDB in memory, with the same ordering and scoping
// semantics as the sql implementation.
type memDB struct {
	tasks map[string]*core.Task
}

func newMemDB() *memDB {
	return &memDB{tasks: make(map[string]*core.Task)}
}

func (m *memDB) Writeable() bool {
	return true
}

func (m *memDB) GetTask(id string) (*core.Task, error) {
	t, ok := m.tasks[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	var copied = *t
	return &copied, nil
}

func (m *memDB) sorted() []*core.Task {
	var all []*core.Task
	for _, t := range m.tasks {
		all = append(all, t)
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].RowNum < all[j].RowNum
	})
	return all
}

func (m *memDB) ListByOwner(username string) ([]core.TaskSummary, error) {
	var result = []core.TaskSummary{}
	for _, t := range m.sorted() {
		if t.Username == username {
			result = append(result, t.Summary())
		}
	}
	return result, nil
}

func (m *memDB) ListAll() ([]core.OwnedSummary, error) {
	var result = []core.OwnedSummary{}
	for _, t := range m.sorted() {
		result = append(result, core.OwnedSummary{TaskSummary: t.Summary(), Username: t.Username})
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Username < result[j].Username
	})
	return result, nil
}

func (m *memDB) ListByQa1(qa1Username string) ([]core.OwnedSummary, error) {
	var result = []core.OwnedSummary{}
	for _, t := range m.sorted() {
		if t.Qa1Username == qa1Username {
			result = append(result, core.OwnedSummary{TaskSummary: t.Summary(), Username: t.Username})
		}
	}
	return result, nil
}

func (m *memDB) UpdateReview(id, owner string, upd core.ReviewUpdate) error {
	t, ok := m.tasks[id]
	if !ok || t.Username != owner {
		return core.ErrNotFound
	}
	t.Ratings = upd.Ratings
	t.Qa1Flag, t.Qa1Status, t.Qa1Feedback, t.Qa1Ratings = upd.Qa1.Flag, upd.Qa1.Status, upd.Qa1.Feedback, upd.Qa1.Ratings
	t.Qa2Flag, t.Qa2Status, t.Qa2Feedback, t.Qa2Ratings = upd.Qa2.Flag, upd.Qa2.Status, upd.Qa2.Feedback, upd.Qa2.Ratings
	t.IsSubmitted = true
	return nil
}

func (m *memDB) AssignQa1(taskIDs []string, qa1Username string) (int, error) {
	var assigned int
	for _, id := range taskIDs {
		if t, ok := m.tasks[id]; ok {
			t.Qa1Username = qa1Username
			assigned++
		}
	}
	return assigned, nil
}

func (m *memDB) InsertTask(t *core.Task) error {
	var copied = *t
	m.tasks[t.ID] = &copied
	return nil
}

// newCoreDB returns a CoreDB over a memDB with bob and carol as QA1 and zara
// as QA2. alice and dan are plain annotators.
func newCoreDB() (*core.CoreDB, *memDB) {
	mem := newMemDB()
	db := &core.CoreDB{
		TaskDB: mem,
		Roles:  auth.NewRoles([]string{"bob", "carol"}, []string{"zara"}),
	}
	return db, mem
}

func seedTask(mem *memDB, id string, rowNum int, owner string) *core.Task {
	t := &core.Task{
		ID:           id,
		RowNum:       rowNum,
		Username:     owner,
		OriginalText: "Berita sukan terkini untuk " + id,
		Language:     "ms",
	}
	mem.InsertTask(t)
	return t
}

func completeRatings() map[string]core.Rating {
	var ratings = make(map[string]core.Rating)
	for i, key := range core.ModelKeys {
		ratings[key] = core.Rating{Score: i % 5, Justification: "terjemahan lancar"}
	}
	return ratings
}
