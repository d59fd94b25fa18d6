package httpkit

import (
	"net/http"
	"strings"

	pstrings "narrativeradar/internal/platform/strings"
)

// MountUnder mounts a subrouter at prefix and applies per module middleware.
// An empty prefix mounts a group on r itself. Stray slashes are trimmed
func MountUnder(r Router, prefix string, mw []func(http.Handler) http.Handler, mount func(Router)) {
	attach := func(sub Router) {
		if len(mw) > 0 {
			sub.Use(mw...)
		}
		mount(sub)
	}
	if strings.Trim(prefix, " /") == "" {
		r.Group(attach)
		return
	}
	r.Route(pstrings.MustPrefix(prefix), attach)
}
