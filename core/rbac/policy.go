package rbac

import (
	"errors"
	"fmt"
	"strings"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
)

type Permission string

const (
	PermIndividualsCreate Permission = "individuals.create"
)

const (
	RoleAdmin   = "admin"
	RoleViewer  = "viewer"
	RoleAnalyst = "analyst"
)

var (
	ErrInvalidRole = errors.New("invalid role")
	ErrForbidden   = errors.New("forbidden")
)

const policyModel = `
[request_definition]
r = sub, act

[policy_definition]
p = sub, act

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = r.sub == p.sub && r.act == p.act
`

// DefaultGrants maps each known role to the permissions it holds.
func DefaultGrants() map[string][]Permission {
	return map[string][]Permission{
		RoleAdmin:   {PermIndividualsCreate},
		RoleViewer:  {},
		RoleAnalyst: {},
	}
}

type Policy struct {
	enforcer *casbin.Enforcer
	roles    map[string]struct{}
}

func NewPolicy(grants map[string][]Permission) (*Policy, error) {
	m, err := model.NewModelFromString(policyModel)
	if err != nil {
		return nil, fmt.Errorf("rbac model: %w", err)
	}
	e, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("rbac enforcer: %w", err)
	}
	p := &Policy{enforcer: e, roles: map[string]struct{}{}}
	for role, perms := range grants {
		p.roles[role] = struct{}{}
		for _, perm := range perms {
			if _, err := e.AddPolicy(role, string(perm)); err != nil {
				return nil, fmt.Errorf("rbac grant %s %s: %w", role, perm, err)
			}
		}
	}
	return p, nil
}

func (p *Policy) KnownRole(role string) bool {
	if p == nil {
		return false
	}
	_, ok := p.roles[strings.TrimSpace(role)]
	return ok
}

// Authorize returns ErrInvalidRole for a missing or unknown role and
// ErrForbidden when the role lacks perm.
func (p *Policy) Authorize(role string, perm Permission) error {
	role = strings.TrimSpace(role)
	if !p.KnownRole(role) {
		return ErrInvalidRole
	}
	ok, err := p.enforcer.Enforce(role, string(perm))
	if err != nil {
		return fmt.Errorf("rbac enforce: %w", err)
	}
	if !ok {
		return fmt.Errorf("role %s lacks %s: %w", role, perm, ErrForbidden)
	}
	return nil
}
