package sqldb

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jiayueytl/malaymeta-eval/core"
)

type TaskDB struct {
	*sql.DB
	assign       *sql.Stmt
	get          *sql.Stmt
	insert       *sql.Stmt
	listAll      *sql.Stmt
	listByOwner  *sql.Stmt
	listByQa1    *sql.Stmt
	updateReview *sql.Stmt
}

const taskColumns = `id, row_num, username, original_text, language, url, notes, outputs, ratings,
	qa1_username, qa1_flag, qa1_status, qa1_feedback, qa1_ratings,
	qa2_flag, qa2_status, qa2_feedback, qa2_ratings, is_submitted, updated`

func NewTaskDB(db *sql.DB) *TaskDB {

	db.Exec(
		`CREATE TABLE IF NOT EXISTS task (
			id varchar(64) PRIMARY KEY,
			row_num INTEGER NOT NULL,
			username varchar(128) NOT NULL,
			original_text TEXT NOT NULL,
			language varchar(32) NOT NULL DEFAULT '',
			url TEXT NOT NULL DEFAULT '',
			notes TEXT NOT NULL DEFAULT '',
			outputs TEXT NOT NULL DEFAULT '{}',
			ratings TEXT NOT NULL DEFAULT '{}',
			qa1_username varchar(128) NOT NULL DEFAULT '',
			qa1_flag varchar(8) NOT NULL DEFAULT '',
			qa1_status varchar(16) NOT NULL DEFAULT '',
			qa1_feedback TEXT NOT NULL DEFAULT '',
			qa1_ratings TEXT NOT NULL DEFAULT '{}',
			qa2_flag varchar(8) NOT NULL DEFAULT '',
			qa2_status varchar(16) NOT NULL DEFAULT '',
			qa2_feedback TEXT NOT NULL DEFAULT '',
			qa2_ratings TEXT NOT NULL DEFAULT '{}',
			is_submitted INTEGER NOT NULL DEFAULT 0,
			updated INTEGER NOT NULL DEFAULT 0,
			UNIQUE(row_num)
		);`)

	var taskDB = &TaskDB{}
	taskDB.DB = db
	taskDB.assign = mustPrepare(db, "UPDATE task SET qa1_username = ? WHERE id = ?")
	taskDB.get = mustPrepare(db, "SELECT "+taskColumns+" FROM task WHERE id = ? LIMIT 1")
	taskDB.insert = mustPrepare(db, "INSERT INTO task ("+taskColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)")
	taskDB.listAll = mustPrepare(db, "SELECT id, row_num, original_text, is_submitted, username FROM task ORDER BY username ASC, row_num ASC")
	taskDB.listByOwner = mustPrepare(db, "SELECT id, row_num, original_text, is_submitted FROM task WHERE username = ? ORDER BY row_num ASC")
	taskDB.listByQa1 = mustPrepare(db, "SELECT id, row_num, original_text, is_submitted, username FROM task WHERE qa1_username = ? ORDER BY row_num ASC")
	taskDB.updateReview = mustPrepare(db,
		`UPDATE task SET ratings = ?,
			qa1_flag = ?, qa1_status = ?, qa1_feedback = ?, qa1_ratings = ?,
			qa2_flag = ?, qa2_status = ?, qa2_feedback = ?, qa2_ratings = ?,
			is_submitted = 1, updated = ?
		WHERE id = ? AND username = ?`)
	return taskDB
}

func (db *TaskDB) Writeable() bool {
	return true
}

func marshal(v interface{}) string {
	data, err := json.Marshal(v)
	if err != nil {
		return "{}"
	}
	return string(data)
}

func (db *TaskDB) GetTask(id string) (*core.Task, error) {

	var t = &core.Task{}
	var outputs, ratings, qa1Ratings, qa2Ratings string
	err := db.get.QueryRow(id).Scan(
		&t.ID, &t.RowNum, &t.Username, &t.OriginalText, &t.Language, &t.URL, &t.Notes, &outputs, &ratings,
		&t.Qa1Username, &t.Qa1Flag, &t.Qa1Status, &t.Qa1Feedback, &qa1Ratings,
		&t.Qa2Flag, &t.Qa2Status, &t.Qa2Feedback, &qa2Ratings, &t.IsSubmitted, &t.Updated,
	)
	if err == sql.ErrNoRows {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(outputs), &t.Outputs); err != nil {
		return nil, fmt.Errorf("task %s: corrupt outputs: %v", id, err)
	}
	if err := json.Unmarshal([]byte(ratings), &t.Ratings); err != nil {
		return nil, fmt.Errorf("task %s: corrupt ratings: %v", id, err)
	}
	if err := json.Unmarshal([]byte(qa1Ratings), &t.Qa1Ratings); err != nil {
		return nil, fmt.Errorf("task %s: corrupt qa1 ratings: %v", id, err)
	}
	if err := json.Unmarshal([]byte(qa2Ratings), &t.Qa2Ratings); err != nil {
		return nil, fmt.Errorf("task %s: corrupt qa2 ratings: %v", id, err)
	}

	return t, nil
}

func (db *TaskDB) ListByOwner(username string) ([]core.TaskSummary, error) {

	rows, err := db.listByOwner.Query(username)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var all = []core.TaskSummary{}
	for rows.Next() {
		var s core.TaskSummary
		if err = rows.Scan(&s.ID, &s.RowNum, &s.OriginalText, &s.IsSubmitted); err != nil {
			return nil, err
		}
		all = append(all, s)
	}
	return all, rows.Err()
}

func (db *TaskDB) listOwned(stmt *sql.Stmt, args ...interface{}) ([]core.OwnedSummary, error) {

	rows, err := stmt.Query(args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var all = []core.OwnedSummary{}
	for rows.Next() {
		var s core.OwnedSummary
		if err = rows.Scan(&s.ID, &s.RowNum, &s.OriginalText, &s.IsSubmitted, &s.Username); err != nil {
			return nil, err
		}
		all = append(all, s)
	}
	return all, rows.Err()
}

func (db *TaskDB) ListAll() ([]core.OwnedSummary, error) {
	return db.listOwned(db.listAll)
}

func (db *TaskDB) ListByQa1(qa1Username string) ([]core.OwnedSummary, error) {
	return db.listOwned(db.listByQa1, qa1Username)
}

// UpdateReview writes the full mutable state of a task. The predicate is
// scoped by the owning username so an annotator can never write someone
// else's row; zero affected rows is an error, never success.
func (db *TaskDB) UpdateReview(id, owner string, upd core.ReviewUpdate) error {

	result, err := db.updateReview.Exec(
		marshal(upd.Ratings),
		upd.Qa1.Flag, upd.Qa1.Status, upd.Qa1.Feedback, marshal(upd.Qa1.Ratings),
		upd.Qa2.Flag, upd.Qa2.Status, upd.Qa2.Feedback, marshal(upd.Qa2.Ratings),
		time.Now().Unix(),
		id, owner,
	)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return core.ErrNotFound
	}
	return nil
}

// AssignQa1 reassigns the QA1 reviewer of every given task in one
// transaction. Either all tasks are reassigned or none.
func (db *TaskDB) AssignQa1(taskIDs []string, qa1Username string) (int, error) {

	tx, err := db.Begin()
	if err != nil {
		return 0, err
	}

	var assigned int64
	for _, id := range taskIDs {
		result, err := tx.Stmt(db.assign).Exec(qa1Username, id)
		if err != nil {
			tx.Rollback()
			return 0, err
		}
		n, err := result.RowsAffected()
		if err != nil {
			tx.Rollback()
			return 0, err
		}
		assigned += n
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return int(assigned), nil
}

func (db *TaskDB) InsertTask(t *core.Task) error {
	if t.ID == "" || t.Username == "" {
		return errors.New("task needs an id and an owning username")
	}
	_, err := db.insert.Exec(
		t.ID, t.RowNum, t.Username, t.OriginalText, t.Language, t.URL, t.Notes,
		marshal(t.Outputs), marshal(t.Ratings),
		t.Qa1Username, t.Qa1Flag, t.Qa1Status, t.Qa1Feedback, marshal(t.Qa1Ratings),
		t.Qa2Flag, t.Qa2Status, t.Qa2Feedback, marshal(t.Qa2Ratings),
		t.IsSubmitted, t.Updated,
	)
	return err
}
