package main

import (
	"database/sql"
	"encoding/json"
	"flag"
	"fmt"
	"io/ioutil"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/jiayueytl/malaymeta-eval/api"
	"github.com/jiayueytl/malaymeta-eval/auth"
	"github.com/jiayueytl/malaymeta-eval/core"
	"github.com/jiayueytl/malaymeta-eval/sqldb"
	"github.com/jiayueytl/malaymeta-eval/sqldb/mysql"
	"github.com/jiayueytl/malaymeta-eval/sqldb/sqlite3"
	"github.com/jiayueytl/malaymeta-eval/util"
	"github.com/jiayueytl/malaymeta-eval/web"
	_ "github.com/mattn/go-sqlite3"
	"github.com/xo/dburl"
	"golang.org/x/crypto/ssh/terminal"
)

func init() {
	log.SetFlags(0) // no log prefixes, on most systems systemd-journald adds them
}

func main() {

	var dbArg string    // is in both FlagSets
	var configArg string

	// default FlagSet

	// Your reverse proxy must not strip the prefix. So if you're using nginx, the "proxy_pass" value should not end with a slash.
	var base = flag.String("base", "", "strip off this `prefix` from every HTTP request and prepend it to every link")
	flag.StringVar(&configArg, "config", "config/malaymeta.ini", "read role lists and upstream auth credentials from this `file`")
	flag.StringVar(&dbArg, "db", "sqlite3:malaymeta.sqlite3?_busy_timeout=10000&_journal=WAL&_sync=NORMAL&cache=shared", "sql database url, see github.com/xo/dburl")
	var listenAddr = flag.String("listen", "127.0.0.1:8080", "serve HTTP content at this `ip:port`")

	// init FlagSet

	var initFlags = flag.NewFlagSet("init", flag.ExitOnError)

	initFlags.StringVar(&configArg, "config", "config/malaymeta.ini", "read role lists and upstream auth credentials from this `file`")
	initFlags.StringVar(&dbArg, "db", "sqlite3:malaymeta.sqlite3?_busy_timeout=10000&_journal=WAL&_sync=NORMAL&cache=shared", "sql database url, see github.com/xo/dburl") // copied from above
	var initImport = initFlags.String("import", "", "seed tasks from this JSON `file`")
	var initProbeLogin = initFlags.Bool("probe-login", false, "check the upstream credentials of the given user")
	var username = initFlags.String("user", "", "specifies a user `name`")

	if len(os.Args) > 1 && os.Args[1] == "init" {
		initFlags.Parse(os.Args[2:])
	} else {
		flag.Parse()
	}

	// config

	cfg, err := util.Ini(configArg)
	if err != nil {
		log.Printf("could not read config file: %v", err)
		return
	}

	// database

	dbURL, err := dburl.Parse(dbArg)
	if err != nil {
		log.Printf("could not parse database url: %v", err)
		return
	}

	sqlDB, err := sql.Open(dbURL.Driver, dbURL.DSN)
	if err != nil {
		log.Printf("could not open sql database: %v", err)
		return
	}

	if err = sqlDB.Ping(); err != nil {
		log.Printf("could not ping sql database: %v", err)
		return
	}

	log.Printf("using database %s", dbURL.String())

	// base

	*base = strings.Trim(*base, "/")
	if *base != "" {
		*base = "/" + *base
	}

	// assemble stuff

	var sessionStore scs.Store
	switch dbURL.Driver {
	case "mysql":
		sessionStore = mysql.NewSessionStore(sqlDB)
	case "sqlite3":
		sessionStore = sqlite3.NewSessionStore(sqlDB)
	default:
		log.Printf("unknown database backend: %s", dbURL.Driver)
		return
	}

	db := &core.CoreDB{}
	if err := db.Init(sessionStore, *base); err != nil {
		log.Println(err) // log.Fatalln would not run deferred functions
		return
	}

	db.TaskDB = sqldb.NewTaskDB(sqlDB)
	db.Upstream = auth.NewDOT(cfg["dot-token-url"], cfg["dot-client-id"], cfg["dot-client-secret"])
	db.Roles = auth.NewRoles(util.SplitList(cfg["qa1-users"]), util.SplitList(cfg["qa2-users"]))
	db.TaskBriefURL = cfg["task-brief-url"]
	db.SqlDB = sqlDB

	defer func() {
		log.Println("closing database")
		sqlDB.Close()
	}()

	// init

	if initFlags.Parsed() {
		switch {
		case *initImport != "":
			importTasks(db, *initImport)
		case *initProbeLogin:
			if *username != "" {
				probeLogin(db, *username)
			}
		}
		return
	}

	listen(db, *listenAddr, *base)
}

// importTasks seeds the task table from a JSON array. Tasks are created
// already owned by an annotator, with empty ratings and QA fields.
func importTasks(db *core.CoreDB, path string) {

	data, err := ioutil.ReadFile(path)
	if err != nil {
		log.Printf("error reading %s: %v", path, err)
		return
	}

	var tasks []core.Task
	if err := json.Unmarshal(data, &tasks); err != nil {
		log.Printf("error parsing %s: %v", path, err)
		return
	}

	var inserted int
	for i := range tasks {
		t := &tasks[i]
		if t.ID == "" {
			t.ID, err = util.RandomString32()
			if err != nil {
				log.Printf("error generating task id: %v", err)
				return
			}
		}
		t.Username = auth.Clean(t.Username)
		t.Qa1Username = auth.Clean(t.Qa1Username)
		if err := db.InsertTask(t); err != nil {
			log.Printf("error inserting task row %d: %v", t.RowNum, err)
			return
		}
		inserted++
	}

	log.Printf("inserted %d tasks", inserted)
}

func probeLogin(db *core.CoreDB, username string) {

	fmt.Printf("password for user %s: ", username)
	password, err := terminal.ReadPassword(0)
	fmt.Println()
	if err != nil {
		log.Printf("error reading password: %v", err)
		return
	}

	if _, err := db.Upstream.Authenticate(auth.Clean(username), string(password)); err != nil {
		log.Printf("login failed: %v", err)
		return
	}

	log.Printf("login ok")
}

func listen(db *core.CoreDB, addr string, base string) {

	// mux
	//
	// golang mux recovers from panics, so the program won't crash

	var inner = http.NewServeMux()

	var apiRouter = api.NewRouter(db)
	inner.Handle("/auth/", apiRouter)
	inner.Handle("/tasks", apiRouter)
	inner.Handle("/tasks/", apiRouter)
	inner.Handle("/static/", http.StripPrefix("/static", http.FileServer(http.Dir("static"))))
	inner.Handle("/", web.NewRouter(db))

	var mux = http.NewServeMux()
	util.HandlePrefix(mux, base, inner)

	// listener and listen

	sigintChannel := make(chan os.Signal, 1)

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		log.Println(err)
		return
	}

	log.Printf("listening to %s", addr)

	httpSrv := &http.Server{
		Handler:      db.SessionManager.LoadAndSave(mux),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		if err := httpSrv.Serve(listener); err != nil {

			// don't panic, we want a graceful shutdown
			if err != http.ErrServerClosed {
				log.Printf("error listening: %v", err)
			}

			// ensure graceful shutdown
			sigintChannel <- os.Interrupt
		}
	}()

	// graceful shutdown

	signal.Notify(sigintChannel, os.Interrupt, syscall.SIGTERM) // SIGINT (Interrupt) or SIGTERM
	<-sigintChannel

	log.Println("shutting down")
	httpSrv.Close()
}
