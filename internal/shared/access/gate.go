package access

import (
	"errors"

	"github.com/google/uuid"
)

// Role is a caller role granted by the external identity provider.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleLibrarian Role = "librarian"
	RoleMember    Role = "member"
)

// Operation names every permission-checked mutation in the system.
type Operation string

const (
	OpManageCatalog      Operation = "catalog:manage" // book/member create, update, delete
	OpCreateLoan         Operation = "loan:create"
	OpReturnLoan         Operation = "loan:return"
	OpCreateReservation  Operation = "reservation:create"
	OpFulfillReservation Operation = "reservation:fulfill"
)

// ErrPermissionDenied is returned when the caller's roles do not allow the
// requested operation. Checked before any store mutation is attempted.
var ErrPermissionDenied = errors.New("permission denied")

// Caller is the verified identity attached to a request. MemberID is the
// library member record linked to the caller, when one exists.
type Caller struct {
	UserID   uuid.UUID
	MemberID *uuid.UUID
	Roles    []Role
}

// HasRole reports whether the caller holds the given role.
func (c Caller) HasRole(role Role) bool {
	for _, r := range c.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// IsStaff reports whether the caller may administer catalog and circulation.
func (c Caller) IsStaff() bool {
	return c.HasRole(RoleAdmin) || c.HasRole(RoleLibrarian)
}

// policy maps each operation to the roles allowed to perform it.
var policy = map[Operation][]Role{
	OpManageCatalog:      {RoleAdmin, RoleLibrarian},
	OpCreateLoan:         {RoleAdmin, RoleLibrarian},
	OpReturnLoan:         {RoleAdmin, RoleLibrarian},
	OpCreateReservation:  {RoleAdmin, RoleLibrarian, RoleMember},
	OpFulfillReservation: {RoleAdmin, RoleLibrarian},
}

// Require checks the policy table for op. It must be called before any store
// mutation so a denial leaves no partial side effects.
func Require(caller Caller, op Operation) error {
	allowed, ok := policy[op]
	if !ok {
		return ErrPermissionDenied
	}
	for _, role := range allowed {
		if caller.HasRole(role) {
			return nil
		}
	}
	return ErrPermissionDenied
}

// RequireForMember is Require plus the self-service rule: a caller acting
// only under the member role may target their own member record and nobody
// else's. Staff roles may act on behalf of any member.
func RequireForMember(caller Caller, op Operation, memberID uuid.UUID) error {
	if err := Require(caller, op); err != nil {
		return err
	}
	if caller.IsStaff() {
		return nil
	}
	if caller.MemberID == nil || *caller.MemberID != memberID {
		return ErrPermissionDenied
	}
	return nil
}
