package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/classtrack/classtrack-api/internal/models"
	"github.com/classtrack/classtrack-api/internal/repository"
	appErrors "github.com/classtrack/classtrack-api/pkg/errors"
)

// AccessService derives admin capability from profile plus session and
// implements role grants and impersonation. Impersonation is a one-deep
// stack: an admin parks their own id in the session's prior slot, acts as
// the target teacher, and returns by popping the slot.
type AccessService struct {
	teachers teacherRepository
	sessions sessionRepository
	logger   *zap.Logger
}

// NewAccessService constructs an AccessService.
func NewAccessService(teachers teacherRepository, sessions sessionRepository, logger *zap.Logger) *AccessService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AccessService{teachers: teachers, sessions: sessions, logger: logger}
}

// DeriveAccess computes the capability projection. The admin affordance
// follows the session: a teacher currently impersonated-into by an admin is
// admin-capable even though their own role is "teacher".
func (s *AccessService) DeriveAccess(profile *models.Teacher, session models.SessionContext) models.Access {
	return models.Access{
		IsAdminCapable: profile.IsAdmin() || session.Impersonating(),
		Impersonating:  session.Impersonating(),
	}
}

// ListTeachers returns the full teacher directory for the admin page.
func (s *AccessService) ListTeachers(ctx context.Context, session models.SessionContext) ([]models.Teacher, error) {
	if _, err := s.requireAdminCapable(ctx, session); err != nil {
		return nil, err
	}
	teachers, err := s.teachers.List(ctx)
	if err != nil {
		return nil, appErrors.Store(err, "failed to list teachers")
	}
	return teachers, nil
}

// Promote grants the admin role to the teacher with the exact email.
func (s *AccessService) Promote(ctx context.Context, session models.SessionContext, email string) (*models.Teacher, error) {
	if _, err := s.requireAdminCapable(ctx, session); err != nil {
		return nil, err
	}

	target, err := s.findByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	if err := s.teachers.UpdateRole(ctx, target.ID, models.RoleAdmin); err != nil {
		return nil, appErrors.Store(err, "failed to promote teacher")
	}
	target.Role = models.RoleAdmin

	s.logger.Info("teacher promoted", zap.String("teacher_id", target.ID))
	return target, nil
}

// Revoke removes the admin role from the teacher with the exact email. An
// admin cannot revoke their own rights; the refusal happens before any store
// write.
func (s *AccessService) Revoke(ctx context.Context, session models.SessionContext, email string) (*models.Teacher, error) {
	actor, err := s.requireAdminCapable(ctx, session)
	if err != nil {
		return nil, err
	}

	if strings.EqualFold(strings.TrimSpace(email), actor.Email) {
		return nil, appErrors.Clone(appErrors.ErrPermissionDenied, "self-revoke forbidden")
	}

	target, err := s.findByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if target.Role != models.RoleAdmin {
		return nil, appErrors.Clone(appErrors.ErrValidation, "target is not an admin")
	}

	if err := s.teachers.UpdateRole(ctx, target.ID, models.RoleTeacher); err != nil {
		return nil, appErrors.Store(err, "failed to revoke admin rights")
	}
	target.Role = models.RoleTeacher

	s.logger.Info("admin rights revoked", zap.String("teacher_id", target.ID))
	return target, nil
}

// BeginImpersonation switches the session to act as the target teacher,
// parking the current id in the one-deep prior slot. Nesting is refused.
func (s *AccessService) BeginImpersonation(ctx context.Context, session models.SessionContext, targetTeacherID string) (*models.SessionContext, error) {
	if session.Impersonating() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "impersonation already active")
	}
	if _, err := s.requireAdminCapable(ctx, session); err != nil {
		return nil, err
	}

	if _, err := s.teachers.FindByID(ctx, targetTeacherID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "target teacher not found")
		}
		return nil, appErrors.Store(err, "failed to load target teacher")
	}

	prior := session.ActiveTeacherID
	session.PriorAdminID = &prior
	session.ActiveTeacherID = targetTeacherID

	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, appErrors.Store(err, "failed to persist session")
	}

	s.logger.Info("impersonation started",
		zap.String("admin_id", prior),
		zap.String("target_id", targetTeacherID))
	return &session, nil
}

// EndImpersonation pops the prior slot back into the active identity. A
// session that is not impersonating is returned unchanged.
func (s *AccessService) EndImpersonation(ctx context.Context, session models.SessionContext) (*models.SessionContext, error) {
	if !session.Impersonating() {
		return &session, nil
	}

	session.ActiveTeacherID = *session.PriorAdminID
	session.PriorAdminID = nil

	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, appErrors.Store(err, "failed to persist session")
	}

	s.logger.Info("impersonation ended", zap.String("admin_id", session.ActiveTeacherID))
	return &session, nil
}

func (s *AccessService) findByEmail(ctx context.Context, email string) (*models.Teacher, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "email is required")
	}
	target, err := s.teachers.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "no teacher found with that email")
		}
		return nil, appErrors.Store(err, "failed to look up teacher")
	}
	return target, nil
}

// requireAdminCapable resolves the acting admin account for the session.
// While impersonating, the acting admin is the parked prior identity.
func (s *AccessService) requireAdminCapable(ctx context.Context, session models.SessionContext) (*models.Teacher, error) {
	if session.ActiveTeacherID == "" {
		return nil, appErrors.Clone(appErrors.ErrContextMissing, "no active teacher in session")
	}

	actingID := session.ActiveTeacherID
	if session.Impersonating() {
		actingID = *session.PriorAdminID
	}

	actor, err := s.teachers.FindByID(ctx, actingID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "acting teacher not found")
		}
		return nil, appErrors.Store(err, "failed to load acting teacher")
	}

	if !actor.IsAdmin() && !session.Impersonating() {
		return nil, appErrors.Clone(appErrors.ErrPermissionDenied, "admin capability required")
	}
	return actor, nil
}
