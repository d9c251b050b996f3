package google

// ScopeSet is an ordered set of OAuth scope identifiers. Order is not
// functionally significant but is kept stable so that authorization URLs are
// reproducible across restarts.
type ScopeSet []string

// Scopes requested during authentication. The base set is deliberately
// narrow: only the OpenID identity-assertion scope, because the userinfo
// email/profile read scopes were dropped so that a leaked token grants no
// access to profile data the server never uses.
const (
	ScopeOpenID = "openid"

	ScopeCalendar = "https://www.googleapis.com/auth/calendar"
	ScopeDrive    = "https://www.googleapis.com/auth/drive"
	ScopeDocs     = "https://www.googleapis.com/auth/documents"
)

// Deprecated profile scopes. These must never be requested again; the scope
// registry silently filters them out.
const (
	scopeUserinfoEmail   = "https://www.googleapis.com/auth/userinfo.email"
	scopeUserinfoProfile = "https://www.googleapis.com/auth/userinfo.profile"
)

// serviceScopes maps tool group names to the scopes their tools require.
var serviceScopes = map[string]ScopeSet{
	"calendar": {ScopeCalendar},
	"drive":    {ScopeDrive},
	"docs":     {ScopeDocs, ScopeDrive},
}

// CurrentScopes returns the fixed base scope set requested during every
// authorization: the OpenID identity-assertion scope and nothing else.
func CurrentScopes() ScopeSet {
	return ScopeSet{ScopeOpenID}
}

// ScopesForServices returns the base scope set extended with the scopes of
// the named tool groups, in the order given, de-duplicated. Unknown group
// names are ignored; validating group names is the CLI's concern.
func ScopesForServices(services ...string) ScopeSet {
	scopes := CurrentScopes()
	for _, svc := range services {
		for _, s := range serviceScopes[svc] {
			scopes = scopes.add(s)
		}
	}
	return scopes
}

// add appends a scope, preserving order and uniqueness and refusing the
// deprecated profile scopes.
func (s ScopeSet) add(scope string) ScopeSet {
	if scope == scopeUserinfoEmail || scope == scopeUserinfoProfile {
		return s
	}
	for _, existing := range s {
		if existing == scope {
			return s
		}
	}
	return append(s, scope)
}

// Contains reports whether the set includes the given scope.
func (s ScopeSet) Contains(scope string) bool {
	for _, existing := range s {
		if existing == scope {
			return true
		}
	}
	return false
}

// Strings returns the set as a plain string slice for oauth2.Config.
func (s ScopeSet) Strings() []string {
	return []string(s)
}
