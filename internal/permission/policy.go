// Package permission resolves an actor's capability tier from their guild
// role set and gates operations on it.
package permission

import (
	"fmt"
	"log/slog"
)

// Capability is the resolved permission tier. The ordering
// None < CitizenshipManager < Admin is used for threshold checks; ban
// authority is deliberately outside the ordering (see AuthorizeBan).
type Capability int

const (
	None Capability = iota
	CitizenshipManager
	Admin
)

func (c Capability) String() string {
	switch c {
	case Admin:
		return "admin"
	case CitizenshipManager:
		return "citizenship manager"
	default:
		return "none"
	}
}

// DeniedError reports a failed authorization and names the missing
// capability so the adapter can render a precise message.
type DeniedError struct {
	Need Capability
}

func (e *DeniedError) Error() string {
	return fmt.Sprintf("permission denied: %s role required", e.Need)
}

// Policy maps role membership to capabilities using the configured admin and
// citizenship-manager role ID lists.
type Policy struct {
	adminRoles   map[string]struct{}
	managerRoles map[string]struct{}
	allowAll     bool
}

// New builds a Policy. If both role lists are empty the policy degrades to
// allow-all: every actor resolves to Admin. That is an insecure default meant
// only for unconfigured development guilds, and it is logged loudly here so
// it cannot happen silently.
func New(adminRoleIDs, managerRoleIDs []string, logger *slog.Logger) *Policy {
	p := &Policy{
		adminRoles:   toSet(adminRoleIDs),
		managerRoles: toSet(managerRoleIDs),
	}
	if len(p.adminRoles) == 0 && len(p.managerRoles) == 0 {
		p.allowAll = true
		if logger != nil {
			logger.Warn("no admin or citizenship manager roles configured; permission checks are DISABLED and every actor is treated as admin")
		}
	}
	return p
}

// Capability resolves the tier for a role set. Admin wins over manager when
// an actor holds both.
func (p *Policy) Capability(roleIDs []string) Capability {
	if p.allowAll {
		return Admin
	}
	got := None
	for _, id := range roleIDs {
		if _, ok := p.adminRoles[id]; ok {
			return Admin
		}
		if _, ok := p.managerRoles[id]; ok {
			got = CitizenshipManager
		}
	}
	return got
}

// Authorize passes iff have is need or strictly greater in the ordering.
func (p *Policy) Authorize(have, need Capability) error {
	if have >= need {
		return nil
	}
	return &DeniedError{Need: need}
}

// AuthorizeBan grants ban authority to Admin only. This is an explicit
// equality check, not a threshold on the ordering: a CitizenshipManager must
// never ban regardless of any future reordering of the tiers.
func (p *Policy) AuthorizeBan(have Capability) error {
	if have == Admin {
		return nil
	}
	return &DeniedError{Need: Admin}
}

func toSet(ids []string) map[string]struct{} {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		set[id] = struct{}{}
	}
	return set
}
