package web

import (
	"html/template"
	"net/http"
	"strconv"
	"strings"

	"github.com/jiayueytl/malaymeta-eval/core"
	"github.com/jiayueytl/malaymeta-eval/util"
	"github.com/julienschmidt/httprouter"
	"gitlab.com/golang-commonmark/markdown"
)

// notes are seeded content, but they are rendered into everyone's browser,
// so raw HTML stays off
var notesParser = markdown.New(markdown.HTML(false), markdown.Linkify(true), markdown.Typographer(true), markdown.MaxNesting(10))

var taskListTmpl = tmpl(`<h1>My Allocated Tasks</h1>

	{{ if .Tasks }}

		<p class="muted">{{ .Submitted }} / {{ len .Tasks }} completed</p>

		{{ range .Tasks }}
			<div class="card">
				<strong>Row {{ .RowNum }}</strong>
				{{ if .IsSubmitted }}
					<span class="muted">submitted</span>
				{{ else }}
					<span class="muted">pending</span>
				{{ end }}
				<p>{{ Trunc .OriginalText 120 }}&hellip;</p>
				<a href="/annotate/{{ .ID }}">Open</a>
			</div>
		{{ end }}

	{{ else }}
		<p>No tasks allocated.</p>
	{{ end }}`)

type taskListData struct {
	*context
	Tasks     []core.TaskSummary
	Submitted int
}

func taskList(w http.ResponseWriter, req *http.Request, ctx *context, _ httprouter.Params) error {

	tasks, err := ctx.db.ListOwnTasks(ctx.Username)
	if err != nil {
		return err
	}

	var submitted int
	for _, t := range tasks {
		if t.IsSubmitted {
			submitted++
		}
	}

	return taskListTmpl.Execute(w, &taskListData{
		context:   ctx,
		Tasks:     tasks,
		Submitted: submitted,
	})
}

var taskDetailTmpl = tmpl(`<h1>Task Row {{ .Task.RowNum }}</h1>

	<p class="muted">
		<a href="/annotate">&laquo; Back to list</a>
		&middot; {{ .Task.Language }}
		{{ if .TaskBriefURL }}&middot; <a href="{{ .TaskBriefURL }}" target="_blank" rel="noopener noreferrer">Task Brief</a>{{ end }}
		{{ if .Task.IsSubmitted }}&middot; previously submitted{{ end }}
		{{ if .Locked }}&middot; <strong>locked by QA1</strong>{{ end }}
	</p>

	<div class="card">
		<p class="muted">Original Text &middot; {{ .Task.Language }}</p>
		<p>{{ .Task.OriginalText }}</p>
		{{ with .Task.URL }}<a href="{{ . }}" target="_blank" rel="noopener noreferrer">Source URL</a>{{ end }}
	</div>

	{{ if .NotesHTML }}
		<div class="card">
			<p class="muted">{{ .NotesCaption }}</p>
			{{ .NotesHTML }}
		</div>
	{{ end }}

	<form method="post">

		<h2>Model Evaluation</h2>

		{{ range $key := .ModelKeys }}
			{{ $rating := index $.Task.Ratings $key }}
			<div class="card">
				<p class="muted">{{ ModelLabel $key }}</p>
				<p>{{ index $.Task.Outputs $key }}</p>

				<label>Rating</label>
				<select name="score_{{ $key }}" {{ if not $.Editable }}disabled{{ end }}>
					{{ range $score := Scores }}
						<option value="{{ $score }}" {{ if eq $score $rating.Score }}selected{{ end }}>{{ $score }}</option>
					{{ end }}
				</select>

				<label>Justification</label>
				<textarea name="just_{{ $key }}" {{ if not $.Editable }}disabled{{ end }}>{{ $rating.Justification }}</textarea>

				{{ if $.IsQaUser }}
					<label>QA1 note</label>
					<textarea name="qa1_note_{{ $key }}">{{ (index $.Task.Qa1Ratings $key).Justification }}</textarea>
					{{ if $.IsQa2 }}
						<label>QA2 note</label>
						<textarea name="qa2_note_{{ $key }}">{{ (index $.Task.Qa2Ratings $key).Justification }}</textarea>
					{{ end }}
				{{ end }}
			</div>
		{{ end }}

		{{ if .IsQaUser }}

			<h2>QA1 Review</h2>
			<div class="card">
				<label>Flag</label>
				<select name="qa1_flag">
					<option value="" {{ if eq .Task.Qa1Flag "" }}selected{{ end }}>&mdash;</option>
					<option value="PASS" {{ if eq .Task.Qa1Flag "PASS" }}selected{{ end }}>PASS</option>
					<option value="FAIL" {{ if eq .Task.Qa1Flag "FAIL" }}selected{{ end }}>FAIL</option>
				</select>
				<label>Status</label>
				<select name="qa1_status">
					<option value="" {{ if eq .Task.Qa1Status "" }}selected{{ end }}>&mdash;</option>
					<option value="pending" {{ if eq .Task.Qa1Status "pending" }}selected{{ end }}>pending</option>
					<option value="in_review" {{ if eq .Task.Qa1Status "in_review" }}selected{{ end }}>in_review</option>
					<option value="done" {{ if eq .Task.Qa1Status "done" }}selected{{ end }}>done</option>
				</select>
				<label>Feedback</label>
				<textarea name="qa1_feedback">{{ .Task.Qa1Feedback }}</textarea>
			</div>

			{{ if .IsQa2 }}
				<h2>QA2 Review</h2>
				<div class="card">
					<label>Flag</label>
					<select name="qa2_flag">
						<option value="" {{ if eq .Task.Qa2Flag "" }}selected{{ end }}>&mdash;</option>
						<option value="PASS" {{ if eq .Task.Qa2Flag "PASS" }}selected{{ end }}>PASS</option>
						<option value="FAIL" {{ if eq .Task.Qa2Flag "FAIL" }}selected{{ end }}>FAIL</option>
					</select>
					<label>Status</label>
					<select name="qa2_status">
						<option value="" {{ if eq .Task.Qa2Status "" }}selected{{ end }}>&mdash;</option>
						<option value="pending" {{ if eq .Task.Qa2Status "pending" }}selected{{ end }}>pending</option>
						<option value="in_review" {{ if eq .Task.Qa2Status "in_review" }}selected{{ end }}>in_review</option>
						<option value="done" {{ if eq .Task.Qa2Status "done" }}selected{{ end }}>done</option>
					</select>
					<label>Feedback</label>
					<textarea name="qa2_feedback">{{ .Task.Qa2Feedback }}</textarea>
				</div>
			{{ end }}

		{{ end }}

		{{ if or .Editable .IsQaUser }}
			<div style="margin-top: .5rem;">
				<button type="submit" name="save">Submit &amp; Next</button>
			</div>
		{{ end }}

		{{ with .Task.Updated }}
			<p class="muted">Last saved {{ $.FormatDateTime . }}</p>
		{{ end }}
	</form>`)

type taskDetailData struct {
	*context
	Task         *core.Task
	ModelKeys    []string
	NotesHTML    template.HTML
	NotesCaption string
	TaskBriefURL string
	Editable     bool
	Locked       bool
}

func taskDetail(w http.ResponseWriter, req *http.Request, ctx *context, params httprouter.Params) error {

	var id = params.ByName("id")

	task, err := ctx.db.GetTaskDetail(id, ctx.Username)
	if err != nil {
		return err
	}

	if req.Method == http.MethodPost {

		var in = core.ReviewInput{
			Ratings: make(map[string]core.Rating),
		}
		for _, key := range core.ModelKeys {
			score, _ := strconv.Atoi(req.PostFormValue("score_" + key))
			in.Ratings[key] = core.Rating{
				Score:         score,
				Justification: req.PostFormValue("just_" + key),
			}
		}
		if ctx.IsQaUser() {
			in.Qa1 = core.Review{
				Flag:     req.PostFormValue("qa1_flag"),
				Status:   req.PostFormValue("qa1_status"),
				Feedback: req.PostFormValue("qa1_feedback"),
				Ratings:  reviewNotes(req, "qa1_note_"),
			}
			if ctx.IsQa2() {
				in.Qa2 = core.Review{
					Flag:     req.PostFormValue("qa2_flag"),
					Status:   req.PostFormValue("qa2_status"),
					Feedback: req.PostFormValue("qa2_feedback"),
					Ratings:  reviewNotes(req, "qa2_note_"),
				}
			}
		}

		if err := ctx.db.SubmitReview(ctx.Username, id, in); err != nil {
			ctx.Danger(err)
			ctx.SeeOther("/annotate/%s", id)
			return nil
		}

		ctx.Success("Task row %d saved.", task.RowNum)

		if task.Username != ctx.Username {
			ctx.SeeOther("/qa")
			return nil
		}

		// skip to the next pending task, wrapping around
		own, err := ctx.db.ListOwnTasks(ctx.Username)
		if err != nil {
			return err
		}
		if next := core.FindNextPending(own, id, task.RowNum); next != "" {
			ctx.SeeOther("/annotate/%s", next)
		} else {
			ctx.SeeOther("/annotate")
		}
		return nil
	}

	var notesHTML template.HTML
	var caption = "Notes / Reference"
	if task.Notes != "" {
		rendered := notesParser.RenderToString([]byte(task.Notes))
		notesHTML = template.HTML(rendered)
		if h := util.Heading(strings.NewReader(rendered)); h != "" {
			caption = h
		}
	}

	return taskDetailTmpl.Execute(w, &taskDetailData{
		context:      ctx,
		Task:         task,
		ModelKeys:    core.ModelKeys,
		NotesHTML:    notesHTML,
		NotesCaption: caption,
		TaskBriefURL: ctx.db.TaskBriefURL,
		Editable:     ctx.IsQaUser() || task.State() == core.Open,
		Locked:       task.State() == core.Locked,
	})
}

func reviewNotes(req *http.Request, prefix string) map[string]core.ReviewNote {
	var notes = make(map[string]core.ReviewNote)
	for _, key := range core.ModelKeys {
		if just := req.PostFormValue(prefix + key); just != "" {
			notes[key] = core.ReviewNote{Justification: just}
		}
	}
	return notes
}
