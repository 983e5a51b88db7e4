package api_test

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/alexedwards/scs/v2/memstore"
	_ "github.com/mattn/go-sqlite3"

	"github.com/jiayueytl/malaymeta-eval/api"
	"github.com/jiayueytl/malaymeta-eval/auth"
	"github.com/jiayueytl/malaymeta-eval/core"
	"github.com/jiayueytl/malaymeta-eval/sqldb"
)

// fakeUpstream accepts the password "hunter2" for everybody.
type fakeUpstream struct{}

func (fakeUpstream) Authenticate(username, password string) (string, error) {
	if password == "hunter2" {
		return "tok-" + username, nil
	}
	return "", auth.ErrInvalidCredentials
}

func newServer(t *testing.T) (*httptest.Server, *core.CoreDB) {
	t.Helper()

	sqlDB, err := sql.Open("sqlite3", filepath.Join(t.TempDir(), "test.sqlite3"))
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { sqlDB.Close() })

	db := &core.CoreDB{
		TaskDB:   sqldb.NewTaskDB(sqlDB),
		Upstream: fakeUpstream{},
		Roles:    auth.NewRoles([]string{"bob", "carol"}, []string{"zara"}),
	}
	if err := db.Init(memstore.New(), ""); err != nil {
		t.Fatalf("init: %v", err)
	}

	srv := httptest.NewServer(db.SessionManager.LoadAndSave(api.NewRouter(db)))
	t.Cleanup(srv.Close)
	return srv, db
}

func seedTask(t *testing.T, db *core.CoreDB, id string, rowNum int, owner string) {
	t.Helper()
	err := db.InsertTask(&core.Task{
		ID:           id,
		RowNum:       rowNum,
		Username:     owner,
		OriginalText: "Harga minyak naik lagi, kata " + id,
		Language:     "ms",
	})
	if err != nil {
		t.Fatalf("seed %s: %v", id, err)
	}
}

func newClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookiejar: %v", err)
	}
	return &http.Client{Jar: jar}
}

func do(t *testing.T, client *http.Client, method, url string, body interface{}) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	return resp
}

func decode(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func loginAs(t *testing.T, srv *httptest.Server, username string) *http.Client {
	t.Helper()
	client := newClient(t)
	resp := do(t, client, "POST", srv.URL+"/auth/login", map[string]string{
		"username": username, "password": "hunter2",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login as %s: status %d", username, resp.StatusCode)
	}
	resp.Body.Close()
	return client
}

func completeRatings() map[string]core.Rating {
	var ratings = make(map[string]core.Rating)
	for i, key := range core.ModelKeys {
		ratings[key] = core.Rating{Score: i % 5, Justification: "terjemahan boleh diterima"}
	}
	return ratings
}

func TestLogin(t *testing.T) {

	srv, _ := newServer(t)
	client := newClient(t)

	// empty body and empty fields are rejected before the upstream is asked
	for _, body := range []interface{}{
		nil,
		map[string]string{"username": "", "password": ""},
		map[string]string{"username": "alice"},
	} {
		resp := do(t, client, "POST", srv.URL+"/auth/login", body)
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", resp.StatusCode)
		}
		resp.Body.Close()
	}

	resp := do(t, client, "POST", srv.URL+"/auth/login", map[string]string{
		"username": "alice", "password": "wrong",
	})
	var failure struct {
		Error string `json:"error"`
	}
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
	decode(t, resp, &failure)
	if failure.Error != "Invalid credentials" {
		t.Fatalf("unexpected error message %q", failure.Error)
	}

	// the username is normalized before it reaches the session
	resp = do(t, client, "POST", srv.URL+"/auth/login", map[string]string{
		"username": "  Alice ", "password": "hunter2",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var success struct {
		Ok       bool   `json:"ok"`
		Username string `json:"username"`
	}
	decode(t, resp, &success)
	if !success.Ok || success.Username != "alice" {
		t.Fatalf("unexpected login response: %+v", success)
	}
}

func TestListTasks(t *testing.T) {

	srv, db := newServer(t)
	seedTask(t, db, "t2", 2, "alice")
	seedTask(t, db, "t1", 1, "alice")
	seedTask(t, db, "t3", 3, "dan")

	resp := do(t, newClient(t), "GET", srv.URL+"/tasks", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 without a session, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	client := loginAs(t, srv, "alice")
	resp = do(t, client, "GET", srv.URL+"/tasks", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var tasks []struct {
		ID          string `json:"id"`
		RowNum      int    `json:"row_num"`
		IsSubmitted bool   `json:"is_submitted"`
	}
	decode(t, resp, &tasks)
	if len(tasks) != 2 || tasks[0].ID != "t1" || tasks[1].ID != "t2" {
		t.Fatalf("expected alice's tasks in row order, got %+v", tasks)
	}
}

func TestGetTask(t *testing.T) {

	srv, db := newServer(t)
	seedTask(t, db, "t1", 1, "alice")

	// unrelated annotator
	resp := do(t, loginAs(t, srv, "dan"), "GET", srv.URL+"/tasks/t1", nil)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	// qa2 sees everything
	client := loginAs(t, srv, "zara")
	resp = do(t, client, "GET", srv.URL+"/tasks/t1", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var task struct {
		ID       string `json:"id"`
		Username string `json:"username"`
	}
	decode(t, resp, &task)
	if task.ID != "t1" || task.Username != "alice" {
		t.Fatalf("unexpected detail: %+v", task)
	}

	resp = do(t, client, "GET", srv.URL+"/tasks/missing", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestPatchTask(t *testing.T) {

	srv, db := newServer(t)
	seedTask(t, db, "t1", 1, "alice")
	client := loginAs(t, srv, "alice")

	// incomplete ratings fail the completeness gate
	partial := map[string]interface{}{"ratings": map[string]core.Rating{
		core.ModelKeys[0]: {Score: 3, Justification: "ok"},
	}}
	resp := do(t, client, "PATCH", srv.URL+"/tasks/t1", partial)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for incomplete ratings, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = do(t, client, "PATCH", srv.URL+"/tasks/t1", map[string]interface{}{
		"ratings": completeRatings(),
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	got, err := db.GetTask("t1")
	if err != nil {
		t.Fatalf("GetTask failed: %v", err)
	}
	if !got.IsSubmitted || len(got.Ratings) != len(core.ModelKeys) {
		t.Fatalf("submit not persisted: %+v", got)
	}

	// a QA1 done save locks the task against the annotator
	qa := loginAs(t, srv, "zara")
	resp = do(t, qa, "PATCH", srv.URL+"/tasks/t1", map[string]interface{}{
		"qa": map[string]interface{}{"flag": core.FlagPass, "status": core.StatusDone},
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 for the QA save, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	locked, _ := db.GetTask("t1")
	if len(locked.Ratings) != len(core.ModelKeys) {
		t.Fatal("QA save must keep the annotator's ratings")
	}

	resp = do(t, client, "PATCH", srv.URL+"/tasks/t1", map[string]interface{}{
		"ratings": completeRatings(),
	})
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403 on a locked task, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestAssign(t *testing.T) {

	srv, db := newServer(t)
	seedTask(t, db, "t1", 1, "alice")
	seedTask(t, db, "t2", 2, "alice")
	seedTask(t, db, "t3", 3, "dan")

	// only qa2 may assign
	resp := do(t, loginAs(t, srv, "bob"), "POST", srv.URL+"/tasks/assign", map[string]interface{}{
		"taskIds": []string{"t1"}, "qa1Username": "carol",
	})
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403 for qa1, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	admin := loginAs(t, srv, "zara")
	resp = do(t, admin, "POST", srv.URL+"/tasks/assign", map[string]interface{}{
		"taskIds": []string{}, "qa1Username": "bob",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty taskIds, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = do(t, admin, "POST", srv.URL+"/tasks/assign", map[string]interface{}{
		"taskIds": []string{"t1", "t2", "t3"}, "qa1Username": "bob",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var result struct {
		Ok       bool `json:"ok"`
		Assigned int  `json:"assigned"`
	}
	decode(t, resp, &result)
	if !result.Ok || result.Assigned != 3 {
		t.Fatalf("unexpected assign response: %+v", result)
	}

	// the assigned reviewer can now open the task
	resp = do(t, loginAs(t, srv, "bob"), "GET", srv.URL+"/tasks/t1", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 for the assigned reviewer, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestLogout(t *testing.T) {

	srv, db := newServer(t)
	seedTask(t, db, "t1", 1, "alice")

	client := loginAs(t, srv, "alice")
	resp := do(t, client, "POST", srv.URL+"/auth/logout", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = do(t, client, "GET", srv.URL+"/tasks", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 after logout, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}
