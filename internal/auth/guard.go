package auth

import (
	"strings"

	"github.com/spec-kit/bookshelf-auth/internal/domain"
)

// PathClass groups request paths for route gating.
type PathClass int

const (
	PathOther PathClass = iota
	PathAuthPage
	PathAdminPage
)

// Decision is the outcome of gating one request.
type Decision int

const (
	Allow Decision = iota
	RedirectLogin
	RedirectHome
)

const (
	LoginPath    = "/login"
	RegisterPath = "/register"
	HomePath     = "/"
	adminPrefix  = "/admin"
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case RedirectLogin:
		return "redirect_login"
	case RedirectHome:
		return "redirect_home"
	default:
		return "unknown"
	}
}

// Target returns the redirect location, or "" for Allow.
func (d Decision) Target() string {
	switch d {
	case RedirectLogin:
		return LoginPath
	case RedirectHome:
		return HomePath
	default:
		return ""
	}
}

// ClassifyPath maps a request path onto a PathClass. Matching ignores case
// because the router does.
func ClassifyPath(path string) PathClass {
	path = strings.TrimSuffix(strings.ToLower(path), "/")
	switch {
	case path == LoginPath || path == RegisterPath:
		return PathAuthPage
	case path == adminPrefix || strings.HasPrefix(path, adminPrefix+"/"):
		return PathAdminPage
	default:
		return PathOther
	}
}

// guardTable is indexed by [requester][PathClass]. Row 0 is the anonymous
// requester, the remaining rows follow Role.Level.
var guardTable = [3][3]Decision{
	// PathOther, PathAuthPage, PathAdminPage
	{Allow, Allow, RedirectLogin},       // anonymous
	{Allow, RedirectHome, RedirectHome}, // USER
	{Allow, RedirectHome, Allow},        // ADMIN
}

// Decide evaluates the route table for a requester. role is nil for an
// anonymous request (absent or invalid token); unknown roles count as
// anonymous.
func Decide(role *domain.Role, class PathClass) Decision {
	if class < PathOther || class > PathAdminPage {
		class = PathOther
	}
	row := 0
	if role != nil {
		row = role.Level()
	}
	return guardTable[row][class]
}
