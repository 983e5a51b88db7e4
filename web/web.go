// Package web serves the browser pages of the evaluation tool.
package web

import (
	"html/template"
	"net/http"

	"github.com/jiayueytl/malaymeta-eval/core"
	"github.com/jiayueytl/malaymeta-eval/util"
	"github.com/julienschmidt/httprouter"
)

// we need the CoreDB in the page handlers
type context struct {
	*core.Request
	db *core.CoreDB
}

func middleware(db *core.CoreDB, requireLoggedIn bool, f func(http.ResponseWriter, *http.Request, *context, httprouter.Params) error) httprouter.Handle {
	return func(w http.ResponseWriter, req *http.Request, params httprouter.Params) {

		var ctx = &context{
			Request: db.NewRequest(w, req),
			db:      db,
		}
		defer ctx.Cleanup()

		// pages redirect to the login form, the JSON api answers 401
		if requireLoggedIn && !ctx.LoggedIn() {
			ctx.SeeOther("/login")
			return
		}

		if err := f(w, req, ctx, params); err != nil {
			errorTmpl.Execute(w, struct {
				*context
				Err error
			}{
				context: ctx,
				Err:     err,
			})
		}
	}
}

var errorTmpl = tmpl(`
	<div class="alert alert-danger" role="alert">
		{{ .Err }}
	</div>`)

func NewRouter(db *core.CoreDB) http.Handler {

	var router = httprouter.New()

	var GETAndPOST = func(path string, handle httprouter.Handle) {
		router.GET(path, handle)
		router.POST(path, handle)
	}

	// public
	GETAndPOST("/login", middleware(db, false, login))

	// private
	router.GET("/", middleware(db, true, root))
	router.GET("/annotate", middleware(db, true, taskList))
	GETAndPOST("/annotate/:id", middleware(db, true, taskDetail))
	router.GET("/logout", middleware(db, true, logout))
	router.GET("/qa", middleware(db, true, qaDashboard))
	router.POST("/qa/assign", middleware(db, true, qaAssign))

	return router
}

func root(w http.ResponseWriter, req *http.Request, ctx *context, _ httprouter.Params) error {
	ctx.SeeOther("/annotate")
	return nil
}

func logout(w http.ResponseWriter, req *http.Request, ctx *context, _ httprouter.Params) error {
	ctx.Logout()
	ctx.SeeOther("/login")
	return nil
}

func tmpl(text string) *template.Template {
	t := template.Must(layoutTmpl.Clone())
	t = template.Must(t.Parse(`{{ define "content" }}` + text + `{{ end }}`))
	return t
}

var layoutTmpl = template.Must(template.New("layout").Funcs(
	template.FuncMap{
		"ModelLabel": core.ModelLabel,
		"Trunc":      util.Trunc,
		"Scores": func() []int {
			return []int{0, 1, 2, 3, 4}
		},
	},
).Parse(`
<!DOCTYPE html>
<html>
	<head>
		<meta charset="utf-8">
		<meta name="viewport" content="width=device-width, initial-scale=1">
		<title>MalayMeta Translation Eval</title>
		<link rel="stylesheet" type="text/css" href="/static/style.css">

		<style>

			body {
				font-family: sans-serif;
				margin: 0;
				padding-bottom: 1rem;
				background: #f5f5f7;
			}

			nav {
				background: #fff;
				border-bottom: 1px solid #ddd;
				padding: 0.6rem 1rem;
			}

			nav a {
				margin-right: 1rem;
				text-decoration: none;
			}

			main {
				max-width: 60rem;
				margin: auto;
				padding: 1rem;
			}

			.alert {
				border: 1px solid transparent;
				border-radius: .2rem;
				margin: .5rem 0;
				padding: .5rem .8rem;
			}

			.alert-danger { background: #f8d7da; }
			.alert-success { background: #d4edda; }

			.card {
				background: #fff;
				border: 1px solid #ddd;
				border-radius: .3rem;
				margin: .5rem 0;
				padding: .8rem;
			}

			.muted { color: #666; font-size: .85rem; }

			textarea { width: 100%; min-height: 4rem; tab-size: 4; }

			table { border-collapse: collapse; }
			td, th { padding: .3rem .6rem; text-align: left; }

		</style>
	</head>
	<body>

		{{ if .LoggedIn }}
			<nav>
				<a href="/annotate">My Tasks</a>
				{{ if .IsQaUser }}<a href="/qa">QA Dashboard</a>{{ end }}
				<a href="/logout">Logout ({{ .Username }})</a>
			</nav>
		{{ end }}

		<main>
			{{ .RenderNotifications }}
			{{ template "content" . }}
		</main>
	</body>
</html>`))
