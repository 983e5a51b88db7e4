package web

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
)

var loginTmpl = tmpl(`<h1>Login</h1>
	<form method="post" style="max-width: 20rem;">
		<div>
			<label>Username</label><br>
			<input type="text" name="username" value="{{ .LoginName }}" required autofocus>
		</div>
		<div>
			<label>Password</label><br>
			<input type="password" name="password" required>
		</div>
		<div style="margin-top: .5rem;">
			<button type="submit" name="login">Login</button>
		</div>
	</form>`)

type loginData struct {
	*context
	LoginName string
}

func login(w http.ResponseWriter, req *http.Request, ctx *context, _ httprouter.Params) error {

	var username string

	if req.Method == http.MethodPost {

		username = req.PostFormValue("username")
		password := req.PostFormValue("password")

		err := ctx.Login(username, password)
		if err == nil {
			ctx.Success("Welcome %s!", ctx.Username)
			ctx.SeeOther("/annotate")
			return nil
		}
		ctx.Danger(err)
		// keep POST data for the username field
	}

	return loginTmpl.Execute(w, &loginData{
		context:   ctx,
		LoginName: username,
	})
}
