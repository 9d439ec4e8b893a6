// Package authz holds the access-control rules of the service as pure
// decision functions. Handlers resolve the acting principal from the
// request context and consult these before touching storage, so a deny
// never depends on whether the target row exists.
package authz

import (
	"errors"

	"github.com/campushub/registrar/internal/domain/user"
)

// Principal is the identity attached to an authenticated request.
type Principal struct {
	UserID int64
	Role   string
}

var (
	// ErrForbidden: authenticated but not allowed. Distinct from the
	// middleware's unauthenticated rejection, and never downgraded to
	// a not-found answer.
	ErrForbidden = errors.New("forbidden")

	// ErrTargetRequired: an admin acting on behalf of a student must
	// name the student explicitly.
	ErrTargetRequired = errors.New("target user_id required")
)

func (p Principal) IsAdmin() bool {
	return p.Role == user.RoleAdmin
}

// CanViewUser: self or admin.
func CanViewUser(p Principal, targetID int64) error {
	if p.IsAdmin() || p.UserID == targetID {
		return nil
	}
	return ErrForbidden
}

// CanUpdateUser: self or admin, but a role change is admin-only even
// when bundled with otherwise-permitted fields.
func CanUpdateUser(p Principal, targetID int64, changesRole bool) error {
	if !p.IsAdmin() && p.UserID != targetID {
		return ErrForbidden
	}
	if changesRole && !p.IsAdmin() {
		return ErrForbidden
	}
	return nil
}

// CanDeleteUser: admin only, and an admin may not delete their own
// account.
func CanDeleteUser(p Principal, targetID int64) error {
	if !p.IsAdmin() {
		return ErrForbidden
	}
	if p.UserID == targetID {
		return ErrForbidden
	}
	return nil
}

// ResolveEnrollmentTarget decides which user an enroll/unenroll request
// acts on. Students act on themselves only; naming anybody else is a
// deny. Admins always act on an explicitly supplied target, never an
// inferred one.
func ResolveEnrollmentTarget(p Principal, requested *int64) (int64, error) {
	switch p.Role {
	case user.RoleStudent:
		if requested != nil && *requested != p.UserID {
			return 0, ErrForbidden
		}
		return p.UserID, nil
	case user.RoleAdmin:
		if requested == nil || *requested <= 0 {
			return 0, ErrTargetRequired
		}
		return *requested, nil
	default:
		return 0, ErrForbidden
	}
}

// CanViewStudentEnrollments: a student sees their own list, an admin
// sees anyone's.
func CanViewStudentEnrollments(p Principal, studentID int64) error {
	if p.IsAdmin() || p.UserID == studentID {
		return nil
	}
	return ErrForbidden
}

// CanViewCourseRoster: admin only.
func CanViewCourseRoster(p Principal) error {
	if p.IsAdmin() {
		return nil
	}
	return ErrForbidden
}
