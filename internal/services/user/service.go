package user

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/1auto-market/vehiclestore-backend/config"
	"github.com/1auto-market/vehiclestore-backend/internal/adapters/repository"
	"github.com/1auto-market/vehiclestore-backend/internal/core/domain"
	"github.com/1auto-market/vehiclestore-backend/internal/models"
	"github.com/1auto-market/vehiclestore-backend/internal/validation"
	"github.com/1auto-market/vehiclestore-backend/utils"
	"github.com/sirupsen/logrus"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

type Service interface {
	Register(ctx context.Context, in models.RegisterInput) (models.AuthResult, error)
	Login(ctx context.Context, in models.LoginInput) (models.AuthResult, error)
	Profile(ctx context.Context, p domain.Principal) (models.User, error)
	UpdateProfile(ctx context.Context, p domain.Principal, in models.ProfileUpdate) (models.User, error)
	LinkTelegram(ctx context.Context, p domain.Principal, link models.TelegramLink) (models.User, error)
	UnlinkTelegram(ctx context.Context, p domain.Principal) (models.User, error)

	List(ctx context.Context, p domain.Principal, page, limit int) (models.UserPage, error)
	UpdateRole(ctx context.Context, p domain.Principal, id string, in models.RoleUpdateInput) (models.User, error)
	Delete(ctx context.Context, p domain.Principal, id string) error

	// SeedAdmin creates the configured administrator if the email is unused.
	SeedAdmin(ctx context.Context, cfg config.AdminConfig) (models.User, bool, error)
}

type service struct {
	users repository.UserRepository
	now   func() time.Time
}

func NewService(users repository.UserRepository) Service {
	return &service{
		users: users,
		now:   func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
	}
}

var titleCaser = cases.Title(language.Spanish)

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func normalizeName(name string) string {
	return titleCaser.String(strings.Join(strings.Fields(name), " "))
}

func (s *service) Register(ctx context.Context, in models.RegisterInput) (models.AuthResult, error) {
	in.Email = normalizeEmail(in.Email)
	in.Name = normalizeName(in.Name)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Location = strings.TrimSpace(in.Location)
	if err := validation.Struct(&in); err != nil {
		return models.AuthResult{}, err
	}

	created, err := s.create(ctx, in.Name, in.Email, in.Password, domain.RoleUser, func(u *models.User) {
		u.Phone = in.Phone
		u.Location = in.Location
	})
	if err != nil {
		return models.AuthResult{}, err
	}
	return s.issue(created)
}

func (s *service) create(ctx context.Context, name, email, password, role string, extra func(*models.User)) (models.User, error) {
	hash, err := utils.HashPassword(password)
	if err != nil {
		return models.User{}, fmt.Errorf("hash password: %w", err)
	}
	now := s.now()
	u := models.User{
		Name:      name,
		Email:     email,
		Password:  hash,
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if extra != nil {
		extra(&u)
	}
	return s.users.Create(ctx, u)
}

func (s *service) Login(ctx context.Context, in models.LoginInput) (models.AuthResult, error) {
	in.Email = normalizeEmail(in.Email)
	if err := validation.Struct(&in); err != nil {
		return models.AuthResult{}, err
	}
	u, err := s.users.GetByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return models.AuthResult{}, domain.ErrInvalidCredentials
		}
		return models.AuthResult{}, err
	}
	if !utils.CheckPasswordHash(in.Password, u.Password) {
		return models.AuthResult{}, domain.ErrInvalidCredentials
	}
	return s.issue(u)
}

func (s *service) issue(u models.User) (models.AuthResult, error) {
	token, err := utils.GenerateToken(u.ID.Hex(), u.Email, u.Role)
	if err != nil {
		return models.AuthResult{}, fmt.Errorf("generate token: %w", err)
	}
	u.Password = ""
	return models.AuthResult{Token: token, User: u}, nil
}

func (s *service) Profile(ctx context.Context, p domain.Principal) (models.User, error) {
	if p.UserID.IsZero() {
		return models.User{}, domain.ErrUnauthorized
	}
	return s.users.GetByID(ctx, p.UserID)
}

func (s *service) UpdateProfile(ctx context.Context, p domain.Principal, in models.ProfileUpdate) (models.User, error) {
	if p.UserID.IsZero() {
		return models.User{}, domain.ErrUnauthorized
	}
	if in.Name != nil {
		name := normalizeName(*in.Name)
		in.Name = &name
	}
	if err := validation.Struct(&in); err != nil {
		return models.User{}, err
	}
	return s.users.UpdateProfile(ctx, p.UserID, in)
}

func (s *service) LinkTelegram(ctx context.Context, p domain.Principal, link models.TelegramLink) (models.User, error) {
	if p.UserID.IsZero() {
		return models.User{}, domain.ErrUnauthorized
	}
	link.Username = strings.TrimPrefix(strings.TrimSpace(link.Username), "@")
	if err := validation.Struct(&link); err != nil {
		return models.User{}, err
	}
	return s.users.SetTelegram(ctx, p.UserID, &link)
}

func (s *service) UnlinkTelegram(ctx context.Context, p domain.Principal) (models.User, error) {
	if p.UserID.IsZero() {
		return models.User{}, domain.ErrUnauthorized
	}
	return s.users.SetTelegram(ctx, p.UserID, nil)
}

func (s *service) List(ctx context.Context, p domain.Principal, page, limit int) (models.UserPage, error) {
	if !p.IsAdmin() {
		return models.UserPage{}, domain.ErrForbidden
	}
	q := models.VehicleQuery{Page: page, Limit: limit}
	q.Normalize()
	users, total, err := s.users.List(ctx, q.Page, q.Limit)
	if err != nil {
		return models.UserPage{}, err
	}
	return models.UserPage{Users: users, Total: total, Page: q.Page, Limit: q.Limit}, nil
}

func (s *service) UpdateRole(ctx context.Context, p domain.Principal, id string, in models.RoleUpdateInput) (models.User, error) {
	if !p.IsAdmin() {
		return models.User{}, domain.ErrForbidden
	}
	in.Role = strings.ToLower(strings.TrimSpace(in.Role))
	if err := validation.Struct(&in); err != nil {
		return models.User{}, err
	}
	oid, err := domain.ParseID("user", id)
	if err != nil {
		return models.User{}, err
	}
	if oid == p.UserID && in.Role != domain.RoleAdmin {
		return models.User{}, fmt.Errorf("%w: administrators cannot demote themselves", domain.ErrConflict)
	}

	updated, err := s.users.UpdateRole(ctx, oid, in.Role)
	if err != nil {
		return models.User{}, err
	}
	logrus.WithFields(logrus.Fields{
		"userId":  oid.Hex(),
		"role":    in.Role,
		"adminId": p.UserID.Hex(),
	}).Info("User role updated")
	return updated, nil
}

func (s *service) Delete(ctx context.Context, p domain.Principal, id string) error {
	if !p.IsAdmin() {
		return domain.ErrForbidden
	}
	oid, err := domain.ParseID("user", id)
	if err != nil {
		return err
	}
	if oid == p.UserID {
		return fmt.Errorf("%w: administrators cannot delete themselves", domain.ErrConflict)
	}
	if err := s.users.DeleteCascade(ctx, oid); err != nil {
		return err
	}
	logrus.WithFields(logrus.Fields{"userId": oid.Hex(), "adminId": p.UserID.Hex()}).Info("User deleted")
	return nil
}

func (s *service) SeedAdmin(ctx context.Context, cfg config.AdminConfig) (models.User, bool, error) {
	email := normalizeEmail(cfg.Email)
	if email == "" || cfg.Password == "" {
		return models.User{}, false, fmt.Errorf("admin email and password are required")
	}

	existing, err := s.users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		logrus.WithField("email", email).Info("Admin already exists. Seeding skipped.")
		return existing, false, nil
	case !errors.Is(err, domain.ErrNotFound):
		return models.User{}, false, err
	}

	name := normalizeName(cfg.Name)
	if name == "" {
		name = "Administrador"
	}
	created, err := s.create(ctx, name, email, cfg.Password, domain.RoleAdmin, nil)
	if err != nil {
		return models.User{}, false, err
	}
	logrus.WithField("email", email).Info("Admin seeded successfully")
	return created, true, nil
}
