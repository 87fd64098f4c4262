package middleware

import "strings"

// Access is the protection level of a request path.
type Access int

const (
	Protected Access = iota
	Public
	Excluded
	Admin
)

func (a Access) String() string {
	switch a {
	case Public:
		return "public"
	case Excluded:
		return "excluded"
	case Admin:
		return "admin"
	}
	return "protected"
}

// never matched by the gate; the grpc-web prefix is guarded by the gRPC
// interceptors instead
var (
	excludedPaths    = []string{"/favicon.ico", "/metrics"}
	excludedPrefixes = []string{"/static/", "/krankmeldung.v1.KrankmeldungService/"}
)

// Classify maps a URL path to its access level.
func Classify(path string) Access {
	for _, p := range excludedPaths {
		if path == p {
			return Excluded
		}
	}
	for _, p := range excludedPrefixes {
		if strings.HasPrefix(path, p) {
			return Excluded
		}
	}
	switch {
	case path == "/" || path == "/login":
		return Public
	case strings.HasPrefix(path, "/api/auth/"):
		return Public
	case path == "/admin" || strings.HasPrefix(path, "/admin/"):
		return Admin
	}
	return Protected
}
