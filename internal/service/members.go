package service

import (
	"context"
	"log/slog"

	"report-bot/internal/apperr"
	"report-bot/internal/model"
	"report-bot/internal/repo"
	"report-bot/internal/roster"
)

type MemberService struct {
	members repo.Members
}

func NewMemberService(members repo.Members) *MemberService {
	return &MemberService{members: members}
}

// Save creates or replaces a member after checking the role and that the
// supervisor link keeps the hierarchy a tree.
func (s *MemberService) Save(ctx context.Context, m *model.Member) error {
	if m.Name == "" {
		return apperr.Invalid("name", "required")
	}
	if m.Email == "" {
		return apperr.Invalid("email", "required")
	}
	if !m.Role.Valid() {
		return apperr.Invalid("role", "unknown role %q", m.Role)
	}
	if m.SupervisorID != "" {
		all, err := s.members.ListAll(ctx)
		if err != nil {
			return err
		}
		if err := roster.CheckSupervisor(all, m.ID, m.SupervisorID); err != nil {
			return err
		}
	}
	if err := s.members.Save(ctx, m); err != nil {
		return err
	}
	slog.Info("member saved", "id", m.ID, "role", m.Role)
	return nil
}

func (s *MemberService) Deactivate(ctx context.Context, id string) error {
	if err := s.members.Deactivate(ctx, id); err != nil {
		return err
	}
	slog.Info("member deactivated", "id", id)
	return nil
}

func (s *MemberService) Delete(ctx context.Context, id string) error {
	if err := s.members.Delete(ctx, id); err != nil {
		return err
	}
	slog.Info("member deleted", "id", id)
	return nil
}

func (s *MemberService) List(ctx context.Context) ([]model.Member, error) {
	return s.members.ListAll(ctx)
}
