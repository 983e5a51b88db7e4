package core

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/jiayueytl/malaymeta-eval/auth"
)

// SessionLifetime bounds the session cookie. A credential older than this is
// rejected on every surface, API and pages alike.
const SessionLifetime = 8 * time.Hour

type CoreDB struct {
	TaskDB
	Upstream       auth.Upstream
	Roles          auth.Roles
	SessionManager *scs.SessionManager

	TaskBriefURL string // linked from the detail page, exported because main sets it
	SqlDB        *sql.DB
}

func (c *CoreDB) Init(sessionStore scs.Store, cookiePath string) error {

	c.SessionManager = scs.New()
	c.SessionManager.Store = sessionStore
	c.SessionManager.Cookie.Path = cookiePath + "/"
	c.SessionManager.Cookie.Persist = true                  // the cookie carries its 8h expiry
	c.SessionManager.Cookie.SameSite = http.SameSiteLaxMode // good CSRF protection if HTTP GET doesn't modify anything
	c.SessionManager.Cookie.Secure = false                  // else running on localhost or behind a http proxy fails
	c.SessionManager.IdleTimeout = SessionLifetime
	c.SessionManager.Lifetime = SessionLifetime

	return nil
}
