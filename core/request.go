package core

import (
	"encoding/gob"
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/jiayueytl/malaymeta-eval/auth"
	"golang.org/x/text/language"
)

type Notification struct {
	Message string
	Style   string
}

func init() {
	gob.Register([]Notification{}) // required for storing Notifications in a session
}

var langMatcher = language.NewMatcher([]language.Tag{
	language.AmericanEnglish, // default
	language.Malay,
})

var monthNamesMs = strings.NewReplacer(
	"January", "Januari",
	"February", "Februari",
	"March", "Mac",
	"May", "Mei",
	"June", "Jun",
	"July", "Julai",
	"August", "Ogos",
	"October", "Oktober",
	"December", "Disember",
)

// A Request is created by CoreDB.NewRequest. It binds the session state of
// one HTTP exchange: the logged-in username (if any), the upstream access
// token and the notification queue.
type Request struct {
	db       *CoreDB // unexported, so it can't be accessed in templates
	Username string  // empty if not logged in
	Token    string  // upstream access token

	writer  http.ResponseWriter
	request *http.Request

	statusWritten bool
	language      language.Tag
}

// NewRequest creates a Request with the given http.ResponseWriter and
// http.Request. If the session carries a valid login, it sets Request.Username.
func (c *CoreDB) NewRequest(w http.ResponseWriter, httpreq *http.Request) *Request {

	var req = &Request{
		db:      c,
		writer:  w,
		request: httpreq,
	}

	req.language, _ = language.MatchStrings(langMatcher, httpreq.Header.Get("Accept-Language"))

	req.Username = c.SessionManager.GetString(httpreq.Context(), "username")
	req.Token = c.SessionManager.GetString(httpreq.Context(), "token")

	return req
}

func (req *Request) LoggedIn() bool {
	return req.Username != ""
}

// Login checks the credentials against the upstream authority and, on
// success, stores the normalized username and the access token in the
// session. Every failure is auth.ErrInvalidCredentials.
func (req *Request) Login(username, password string) error {

	if req.LoggedIn() {
		return nil
	}

	username = auth.Clean(username)

	token, err := req.db.Upstream.Authenticate(username, password)
	if err != nil {
		return err
	}

	req.Username = username
	req.Token = token
	req.db.SessionManager.Put(req.request.Context(), "username", username)
	req.db.SessionManager.Put(req.request.Context(), "token", token)
	return nil
}

// Logout removes the credentials from the session and calls req.Cleanup().
func (req *Request) Logout() {
	if req.LoggedIn() {
		req.db.SessionManager.Remove(req.request.Context(), "username")
		req.db.SessionManager.Remove(req.request.Context(), "token")
		req.Username = ""
		req.Token = ""
	}
	req.Cleanup()
}

// Destroys the session (which means re-setting the cookie with zero lifetime)
// if the session has been modified and is empty now.
func (req *Request) Cleanup() {
	sessMan := req.db.SessionManager
	if sessMan.Status(req.request.Context()) == scs.Modified && len(sessMan.Keys(req.request.Context())) == 0 {
		_ = sessMan.Destroy(req.request.Context())
	}
}

func (req *Request) IsQa1() bool {
	return req.LoggedIn() && req.db.Roles.IsQa1(req.Username)
}

func (req *Request) IsQa2() bool {
	return req.LoggedIn() && req.db.Roles.IsQa2(req.Username)
}

func (req *Request) IsQaUser() bool {
	return req.LoggedIn() && req.db.Roles.IsQaUser(req.Username)
}

// Danger adds a "danger" notification to the session.
func (req *Request) Danger(err error) {
	req.addNotification(err.Error(), "danger")
}

// Success adds a "success" notification to the session.
func (req *Request) Success(format string, args ...interface{}) {
	req.addNotification(fmt.Sprintf(format, args...), "success")
}

func (req *Request) addNotification(message, style string) {
	notifications, _ := req.db.SessionManager.Get(req.request.Context(), "notifications").([]Notification)
	notifications = append(notifications, Notification{message, style})
	req.db.SessionManager.Put(req.request.Context(), "notifications", notifications)
}

// RenderNotifications removes all notifications from the session
// and renders them into an HTML string.
// If the HTTP status had already been written, it does nothing.
func (req *Request) RenderNotifications() template.HTML {
	var r string
	if !req.statusWritten {
		notifications, _ := req.db.SessionManager.Pop(req.request.Context(), "notifications").([]Notification)
		for _, n := range notifications {
			r += `<div class="alert alert-` + n.Style + `" role="alert">` + template.HTMLEscapeString(n.Message) + `</div>`
		}
	}
	return template.HTML(r)
}

// SeeOther sets the HTTP header to redirect to an URL.
func (req *Request) SeeOther(format string, args ...interface{}) {
	if req.statusWritten {
		return
	}
	var url = fmt.Sprintf(format, args...)
	http.Redirect(req.writer, req.request, url, http.StatusSeeOther)
	req.statusWritten = true
}

func (req *Request) FormatDateTime(ts int64) string {
	if ts == 0 {
		return ""
	}
	b, _ := req.language.Base()
	switch b.String() {
	case "ms":
		return monthNamesMs.Replace(time.Unix(ts, 0).Format("2 January 2006 15:04"))
	default:
		return time.Unix(ts, 0).Format("January 2, 2006 3:04 PM")
	}
}
