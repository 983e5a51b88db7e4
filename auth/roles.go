package auth

import (
	"sort"
	"strings"
)

// Clean normalizes a username for comparison and storage.
func Clean(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

// Roles holds the configured QA role memberships. It is built once at startup
// and read-only afterwards, so it can be shared between requests.
type Roles struct {
	qa1 map[string]struct{}
	qa2 map[string]struct{}
}

func NewRoles(qa1Users, qa2Users []string) Roles {
	var r = Roles{
		qa1: make(map[string]struct{}),
		qa2: make(map[string]struct{}),
	}
	for _, u := range qa1Users {
		if u = Clean(u); u != "" {
			r.qa1[u] = struct{}{}
		}
	}
	for _, u := range qa2Users {
		if u = Clean(u); u != "" {
			r.qa2[u] = struct{}{}
		}
	}
	return r
}

func (r Roles) IsQa1(username string) bool {
	_, ok := r.qa1[Clean(username)]
	return ok
}

func (r Roles) IsQa2(username string) bool {
	_, ok := r.qa2[Clean(username)]
	return ok
}

// IsQaUser returns whether the user is in any QA role.
func (r Roles) IsQaUser(username string) bool {
	return r.IsQa1(username) || r.IsQa2(username)
}

// Qa1Members returns the QA1 usernames in ascending order.
// They are the assignment candidates offered to QA2.
func (r Roles) Qa1Members() []string {
	var members = make([]string, 0, len(r.qa1))
	for u := range r.qa1 {
		members = append(members, u)
	}
	sort.Strings(members)
	return members
}
