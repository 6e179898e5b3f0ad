// Package actions is the role-gated action panel of a selected record: delete, forward and markers.
package actions

import "xfinance-dashboard/internal/domain"

// Kind of action panel.
type Kind string

const (
	KindDelete  Kind = "delete"
	KindForward Kind = "forward"
	KindMarker  Kind = "marker"
)

// Capabilities what the session's role may do. Resolved once per session.
type Capabilities struct {
	Delete  bool
	Forward bool
	Marker  bool
}

// CapabilitiesFor delete is admin only; forward and markers are admin or BackOffice.
func CapabilitiesFor(role string) Capabilities {
	switch role {
	case domain.RoleAdmin:
		return Capabilities{Delete: true, Forward: true, Marker: true}
	case domain.RoleBackOffice:
		return Capabilities{Forward: true, Marker: true}
	default:
		return Capabilities{}
	}
}

// Allows unknown kinds are never allowed.
func (c Capabilities) Allows(k Kind) bool {
	switch k {
	case KindDelete:
		return c.Delete
	case KindForward:
		return c.Forward
	case KindMarker:
		return c.Marker
	}
	return false
}
