package routegroups

import (
	"net/http"

	"rightswatch/core/rbac"
)

type Guards struct {
	RequirePermission func(rbac.Permission) func(http.HandlerFunc) http.HandlerFunc
}

func (g Guards) Perm(perm rbac.Permission, next http.HandlerFunc) http.HandlerFunc {
	if g.RequirePermission == nil {
		return next
	}
	return g.RequirePermission(perm)(next)
}
