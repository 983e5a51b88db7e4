package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/julienschmidt/httprouter"
)

func login(w http.ResponseWriter, req *http.Request, ctx *context, _ httprouter.Params) error {

	var body struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{"Missing credentials"})
		return nil
	}
	if strings.TrimSpace(body.Username) == "" || body.Password == "" {
		writeJSON(w, http.StatusBadRequest, errorBody{"Missing credentials"})
		return nil
	}

	if err := ctx.Login(body.Username, body.Password); err != nil {
		return err
	}

	writeJSON(w, http.StatusOK, struct {
		Ok       bool   `json:"ok"`
		Username string `json:"username"`
	}{true, ctx.Username})
	return nil
}

func logout(w http.ResponseWriter, req *http.Request, ctx *context, _ httprouter.Params) error {
	ctx.Logout()
	writeJSON(w, http.StatusOK, struct {
		Ok bool `json:"ok"`
	}{true})
	return nil
}
