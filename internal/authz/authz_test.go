package authz_test

import (
	"errors"
	"testing"

	"github.com/campushub/registrar/internal/authz"
)

func int64ptr(v int64) *int64 {
	return &v
}

func TestCanViewUser(t *testing.T) {
	tests := []struct {
		name    string
		p       authz.Principal
		target  int64
		wantErr error
	}{
		{"self", authz.Principal{UserID: 5, Role: "student"}, 5, nil},
		{"other_student", authz.Principal{UserID: 5, Role: "student"}, 6, authz.ErrForbidden},
		{"admin_any", authz.Principal{UserID: 1, Role: "admin"}, 6, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := authz.CanViewUser(tt.p, tt.target)
			if !errors.Is(err, tt.wantErr) && err != tt.wantErr {
				t.Fatalf("got %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestCanUpdateUser(t *testing.T) {
	tests := []struct {
		name        string
		p           authz.Principal
		target      int64
		changesRole bool
		wantErr     error
	}{
		{"self_profile", authz.Principal{UserID: 5, Role: "student"}, 5, false, nil},
		{"self_role_escalation", authz.Principal{UserID: 5, Role: "student"}, 5, true, authz.ErrForbidden},
		{"other_user", authz.Principal{UserID: 5, Role: "student"}, 9, false, authz.ErrForbidden},
		{"admin_any_with_role", authz.Principal{UserID: 1, Role: "admin"}, 9, true, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := authz.CanUpdateUser(tt.p, tt.target, tt.changesRole)
			if err != tt.wantErr {
				t.Fatalf("got %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestCanDeleteUser(t *testing.T) {
	tests := []struct {
		name    string
		p       authz.Principal
		target  int64
		wantErr error
	}{
		{"student_cannot_delete", authz.Principal{UserID: 5, Role: "student"}, 6, authz.ErrForbidden},
		{"admin_other", authz.Principal{UserID: 1, Role: "admin"}, 6, nil},
		{"admin_self", authz.Principal{UserID: 1, Role: "admin"}, 1, authz.ErrForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := authz.CanDeleteUser(tt.p, tt.target)
			if err != tt.wantErr {
				t.Fatalf("got %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestResolveEnrollmentTarget(t *testing.T) {
	tests := []struct {
		name      string
		p         authz.Principal
		requested *int64
		wantID    int64
		wantErr   error
	}{
		{"student_self_implicit", authz.Principal{UserID: 5, Role: "student"}, nil, 5, nil},
		{"student_self_explicit", authz.Principal{UserID: 5, Role: "student"}, int64ptr(5), 5, nil},
		{"student_other", authz.Principal{UserID: 5, Role: "student"}, int64ptr(6), 0, authz.ErrForbidden},
		{"admin_explicit", authz.Principal{UserID: 1, Role: "admin"}, int64ptr(42), 42, nil},
		{"admin_missing_target", authz.Principal{UserID: 1, Role: "admin"}, nil, 0, authz.ErrTargetRequired},
		{"unknown_role", authz.Principal{UserID: 7, Role: "auditor"}, int64ptr(7), 0, authz.ErrForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := authz.ResolveEnrollmentTarget(tt.p, tt.requested)
			if err != tt.wantErr {
				t.Fatalf("got err %v, want %v", err, tt.wantErr)
			}
			if id != tt.wantID {
				t.Fatalf("got id %d, want %d", id, tt.wantID)
			}
		})
	}
}

func TestCanViewStudentEnrollments(t *testing.T) {
	if err := authz.CanViewStudentEnrollments(authz.Principal{UserID: 5, Role: "student"}, 5); err != nil {
		t.Fatalf("student should view own enrollments: %v", err)
	}
	if err := authz.CanViewStudentEnrollments(authz.Principal{UserID: 5, Role: "student"}, 6); err != authz.ErrForbidden {
		t.Fatalf("student viewing another student's enrollments: got %v, want forbidden", err)
	}
	if err := authz.CanViewStudentEnrollments(authz.Principal{UserID: 1, Role: "admin"}, 6); err != nil {
		t.Fatalf("admin should view any: %v", err)
	}
}

func TestCanViewCourseRoster(t *testing.T) {
	if err := authz.CanViewCourseRoster(authz.Principal{UserID: 1, Role: "admin"}); err != nil {
		t.Fatalf("admin should view roster: %v", err)
	}
	if err := authz.CanViewCourseRoster(authz.Principal{UserID: 5, Role: "student"}); err != authz.ErrForbidden {
		t.Fatalf("student roster access: got %v, want forbidden", err)
	}
}
