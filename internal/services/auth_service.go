package services

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"orderdesk/internal/auth"
	"orderdesk/internal/domain"
	"orderdesk/internal/domain/models"
	"orderdesk/internal/utils"
)

const minPasswordLen = 6

// ErrBadCredentials is the umbrella for failed logins.
var ErrBadCredentials = errors.New("invalid credentials")

// CredentialError names which login field was wrong. It matches
// ErrBadCredentials under errors.Is.
type CredentialError struct {
	Field string
}

func (e CredentialError) Error() string { return "invalid credentials" }

func (e CredentialError) Is(target error) bool { return target == ErrBadCredentials }

type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone"`
}

type AuthService struct {
	Users  UserStore
	Issuer *auth.Issuer
	Now    func() time.Time
}

func (s AuthService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return utils.NowUTC()
}

// Register creates a regular user and issues its first credential. Roles
// cannot be self-assigned; admins are promoted through the user admin API.
func (s AuthService) Register(ctx context.Context, in RegisterInput) (models.User, string, error) {
	name := utils.NormalizeSpace(in.Name)
	if name == "" {
		return models.User{}, "", domain.ValidationError{Field: "name", Msg: "Name is required"}
	}
	addr, err := mail.ParseAddress(strings.TrimSpace(in.Email))
	if err != nil {
		return models.User{}, "", domain.ValidationError{Field: "email", Msg: "A valid email is required"}
	}
	email := strings.ToLower(addr.Address)
	if len(in.Password) < minPasswordLen {
		return models.User{}, "", domain.ValidationError{Field: "password", Msg: "Password must be at least 6 characters"}
	}

	exists, err := s.Users.EmailExists(ctx, email)
	if err != nil {
		return models.User{}, "", err
	}
	if exists {
		return models.User{}, "", domain.ValidationError{Field: "email", Msg: "Email already exists"}
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return models.User{}, "", domain.InternalError{Msg: "hash password", Err: err}
	}

	now := s.now()
	u := models.User{
		ID:           domain.NewID(),
		Name:         name,
		Email:        email,
		Phone:        strings.TrimSpace(in.Phone),
		PasswordHash: hash,
		Role:         domain.RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.Users.Create(ctx, u); err != nil {
		return models.User{}, "", err
	}

	token, err := s.Issuer.Issue(u.ID, u.Email)
	if err != nil {
		return models.User{}, "", domain.InternalError{Msg: "sign token", Err: err}
	}
	utils.LogEvent(utils.RequestID(ctx), "auth", "register", "user_id="+u.ID)
	return u, token, nil
}

// Login checks the password, then the blocked flag, and issues a credential.
func (s AuthService) Login(ctx context.Context, email, password string) (models.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return models.User{}, "", CredentialError{Field: "email"}
	}
	u, err := s.Users.FindByEmail(ctx, email)
	if err != nil {
		if domain.IsNotFound(err) {
			return models.User{}, "", CredentialError{Field: "email"}
		}
		return models.User{}, "", err
	}
	if !auth.CheckPassword(u.PasswordHash, password) {
		return models.User{}, "", CredentialError{Field: "password"}
	}
	if u.Blocked {
		return models.User{}, "", domain.ForbiddenError{Msg: "User is blocked"}
	}

	token, err := s.Issuer.Issue(u.ID, u.Email)
	if err != nil {
		return models.User{}, "", domain.InternalError{Msg: "sign token", Err: err}
	}
	u.PasswordHash = ""
	utils.LogEvent(utils.RequestID(ctx), "auth", "login", "user_id="+u.ID)
	return u, token, nil
}
