package api

import (
	"encoding/json"
	"net/http"

	"github.com/julienschmidt/httprouter"
)

func assign(w http.ResponseWriter, req *http.Request, ctx *context, _ httprouter.Params) error {

	var body struct {
		TaskIDs     []string `json:"taskIds"`
		Qa1Username string   `json:"qa1Username"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{"Missing taskIds or qa1Username"})
		return nil
	}

	assigned, err := ctx.db.AssignQa1(ctx.Username, body.TaskIDs, body.Qa1Username)
	if err != nil {
		return err
	}

	writeJSON(w, http.StatusOK, struct {
		Ok       bool `json:"ok"`
		Assigned int  `json:"assigned"`
	}{true, assigned})
	return nil
}
