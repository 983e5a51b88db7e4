package api

import (
	"encoding/json"
	"net/http"

	"github.com/jiayueytl/malaymeta-eval/core"
	"github.com/julienschmidt/httprouter"
)

func listTasks(w http.ResponseWriter, req *http.Request, ctx *context, _ httprouter.Params) error {
	summaries, err := ctx.db.ListOwnTasks(ctx.Username)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, summaries)
	return nil
}

func getTask(w http.ResponseWriter, req *http.Request, ctx *context, params httprouter.Params) error {
	task, err := ctx.db.GetTaskDetail(params.ByName("id"), ctx.Username)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, task)
	return nil
}

// qaPayload mirrors the wire format of a QA save. The annotator client sends
// the stored QA values back unchanged; whether they take effect is decided by
// the state machine, not here.
type qaPayload struct {
	Flag       string                     `json:"flag"`
	Feedback   string                     `json:"feedback"`
	Status     string                     `json:"status"`
	Qa1Ratings map[string]core.ReviewNote `json:"qa1Ratings"`

	Qa2Flag     string                     `json:"qa2Flag"`
	Qa2Feedback string                     `json:"qa2Feedback"`
	Qa2Status   string                     `json:"qa2Status"`
	Qa2Ratings  map[string]core.ReviewNote `json:"qa2Ratings"`
}

func patchTask(w http.ResponseWriter, req *http.Request, ctx *context, params httprouter.Params) error {

	var body struct {
		Ratings map[string]core.Rating `json:"ratings"`
		Qa      qaPayload              `json:"qa"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{"Malformed body"})
		return nil
	}

	err := ctx.db.SubmitReview(ctx.Username, params.ByName("id"), core.ReviewInput{
		Ratings: body.Ratings,
		Qa1: core.Review{
			Flag:     body.Qa.Flag,
			Status:   body.Qa.Status,
			Feedback: body.Qa.Feedback,
			Ratings:  body.Qa.Qa1Ratings,
		},
		Qa2: core.Review{
			Flag:     body.Qa.Qa2Flag,
			Status:   body.Qa.Qa2Status,
			Feedback: body.Qa.Qa2Feedback,
			Ratings:  body.Qa.Qa2Ratings,
		},
	})
	if err != nil {
		return err
	}

	writeJSON(w, http.StatusOK, struct {
		Ok bool `json:"ok"`
	}{true})
	return nil
}
