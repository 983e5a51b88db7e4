/*
Package auth is for authentication and authorization.

Authentication is delegated to an upstream OAuth2 password-grant endpoint
(the DOT identity service). This process never stores passwords; a successful
login yields an upstream access token which is kept in the session alongside
the username.

Authorization is role-based. Two role sets are configured at startup: QA1
(first-tier reviewers, who see masked annotator identities) and QA2
(second-tier reviewers, who see everything and can reassign QA1 ownership).
Everyone else is a plain annotator. Role sets may overlap; QA2 checks take
precedence wherever both apply.
*/
package auth
