package web

import (
	"fmt"
	"net/http"

	"github.com/jiayueytl/malaymeta-eval/core"
	"github.com/julienschmidt/httprouter"
)

var qaTmpl = tmpl(`<h1>QA Dashboard</h1>

	{{ if .IsQa2 }}
		<p class="muted">All tasks, grouped by annotator.</p>
	{{ else }}
		<p class="muted">Your assigned tasks. Annotator identities are masked.</p>
	{{ end }}

	{{ if not .Groups }}
		<p>Nothing to review yet.</p>
	{{ end }}

	<form method="post" action="/qa/assign">

		{{ range .Groups }}
			<div class="card">
				<h2>{{ .Label }}</h2>
				<table>
					{{ range .Tasks }}
						<tr>
							{{ if $.IsQa2 }}
								<td><input type="checkbox" name="task" value="{{ .ID }}"></td>
							{{ end }}
							<td>Row {{ .RowNum }}</td>
							<td>{{ if .IsSubmitted }}submitted{{ else }}pending{{ end }}</td>
							<td>{{ Trunc .OriginalText 80 }}&hellip;</td>
							<td><a href="/annotate/{{ .ID }}">Review</a></td>
						</tr>
					{{ end }}
				</table>
			</div>
		{{ end }}

		{{ if and .IsQa2 .Groups }}
			<div class="card">
				<label>Assign selected tasks to QA1 reviewer:</label>
				<select name="qa1_username">
					{{ range .Qa1Candidates }}
						<option value="{{ . }}">{{ . }}</option>
					{{ end }}
				</select>
				<button type="submit">Assign</button>
			</div>
		{{ end }}
	</form>`)

type qaData struct {
	*context
	Groups        []core.TaskGroup
	Qa1Candidates []string
}

func qaDashboard(w http.ResponseWriter, req *http.Request, ctx *context, _ httprouter.Params) error {

	if !ctx.IsQaUser() {
		ctx.SeeOther("/annotate")
		return nil
	}

	var groups []core.TaskGroup
	var err error
	if ctx.IsQa2() {
		groups, err = ctx.db.ListAllGrouped()
	} else {
		groups, err = ctx.db.ListAssignedGroupedMasked(ctx.Username)
	}
	if err != nil {
		return err
	}

	return qaTmpl.Execute(w, &qaData{
		context:       ctx,
		Groups:        groups,
		Qa1Candidates: ctx.db.Roles.Qa1Members(),
	})
}

func qaAssign(w http.ResponseWriter, req *http.Request, ctx *context, _ httprouter.Params) error {

	if err := req.ParseForm(); err != nil {
		return err
	}

	taskIDs := req.PostForm["task"]
	qa1Username := req.PostFormValue("qa1_username")

	assigned, err := ctx.db.AssignQa1(ctx.Username, taskIDs, qa1Username)
	if err != nil {
		ctx.Danger(fmt.Errorf("assignment failed: %v", err))
		ctx.SeeOther("/qa")
		return nil
	}

	ctx.Success("Assigned %d tasks to %s.", assigned, qa1Username)
	ctx.SeeOther("/qa")
	return nil
}
