package service

import (
	"context"
	"net/url"

	"github.com/rs/zerolog"

	"github.com/snapmatch/client-engine/internal/core/domain"
	"github.com/snapmatch/client-engine/internal/metrics"
)

// Well-known navigation targets.
const (
	LoginPath        = "/login"
	ForbiddenPath    = "/forbidden"
	PhotographerHome = "/photographer"
	GuestHome        = "/guest"
)

// Decision is the Role Guard resolution state. A guard starts in
// DecisionPending and settles on exactly one of the other three; it never
// transitions again for the lifetime of the requesting view.
type Decision int

const (
	DecisionPending Decision = iota
	DecisionUnauthenticated
	DecisionForbidden
	DecisionAllowed
)

func (d Decision) String() string {
	switch d {
	case DecisionUnauthenticated:
		return "unauthenticated"
	case DecisionForbidden:
		return "forbidden"
	case DecisionAllowed:
		return "allowed"
	default:
		return "pending"
	}
}

// Resolution is the settled outcome of a guard check. Protected content may
// render only on DecisionAllowed. Redirect carries the navigation target for
// the two denial states and is deliberately generic: it never reveals which
// roles would have been sufficient.
type Resolution struct {
	Decision Decision
	Identity domain.Identity
	Redirect string
}

// Guard gates access to role-restricted views. It is presentation-independent:
// callers render, navigate, or block based solely on the returned Resolution.
type Guard struct {
	refresher *Refresher
	log       zerolog.Logger
}

// NewGuard returns a Guard backed by the given refresher.
func NewGuard(refresher *Refresher, log zerolog.Logger) *Guard {
	return &Guard{refresher: refresher, log: log}
}

// Resolve settles the access decision for a view allowing the listed roles.
// The caller's state is DecisionPending until Resolve returns. No role
// hierarchy is assumed: allowed roles are explicit membership, per view.
func (g *Guard) Resolve(ctx context.Context, allowed ...domain.Role) Resolution {
	id, ok := g.refresher.Refresh(ctx)
	if !ok {
		metrics.GuardDecisionsTotal.WithLabelValues(DecisionUnauthenticated.String()).Inc()
		return Resolution{Decision: DecisionUnauthenticated, Redirect: LoginPath}
	}

	set := make(map[domain.Role]struct{}, len(allowed))
	for _, r := range allowed {
		set[r] = struct{}{}
	}
	if _, ok := set[id.Role]; !ok {
		g.log.Debug().Str("user_id", id.UserID).Str("role", string(id.Role)).Msg("role not permitted for view")
		metrics.GuardDecisionsTotal.WithLabelValues(DecisionForbidden.String()).Inc()
		return Resolution{Decision: DecisionForbidden, Identity: id, Redirect: ForbiddenPath}
	}

	metrics.GuardDecisionsTotal.WithLabelValues(DecisionAllowed.String()).Inc()
	return Resolution{Decision: DecisionAllowed, Identity: id}
}

// RoleHome maps a role to its post-login landing location. Staff roles land
// on the photographer home; guests and anything unrecognized land on the
// guest home.
func RoleHome(role domain.Role) string {
	switch role {
	case domain.RoleSuperAdmin, domain.RoleAdmin, domain.RolePhotographer:
		return PhotographerHome
	default:
		return GuestHome
	}
}

// LoginRedirect builds the login navigation target, attaching returnTo so
// the caller can be sent back after re-authentication.
func LoginRedirect(returnTo string) string {
	if returnTo == "" {
		return LoginPath
	}
	return LoginPath + "?next=" + url.QueryEscape(returnTo)
}
