package auth

import (
	"context"
	"errors"

	"github.com/bankdesk/bankdesk/internal/shared"
)

// Session is the view returned on successful signin. The stored password
// digest is never part of it.
type Session struct {
	UserID      int64
	Username    string
	Name        string
	Email       string
	AccessToken string
}

// Service wraps authentication business rules.
type Service struct {
	repo   Repository
	hasher *Hasher
	tokens TokenService
}

// NewService constructs a new Service.
func NewService(repo Repository, hasher *Hasher, tokens TokenService) *Service {
	return &Service{repo: repo, hasher: hasher, tokens: tokens}
}

// Signin validates username/password credentials and mints a bearer token.
// Unknown username and wrong password collapse into the same error so the
// response cannot be used for username enumeration; storage failures are
// not an authentication outcome and pass through unchanged.
func (s *Service) Signin(ctx context.Context, username, password string) (*Session, error) {
	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.ErrInvalidCredentials
		}
		return nil, err
	}
	if !s.hasher.Verify(password, user.PasswordHash) {
		return nil, shared.ErrInvalidCredentials
	}
	token, err := s.tokens.Sign(user.ID)
	if err != nil {
		return nil, err
	}
	return &Session{
		UserID:      user.ID,
		Username:    user.Username,
		Name:        user.Name,
		Email:       user.Email,
		AccessToken: token,
	}, nil
}

// Resolve loads the principal for a verified token subject.
func (s *Service) Resolve(ctx context.Context, userID int64) (*shared.Principal, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &shared.Principal{
		ID:       user.ID,
		Username: user.Username,
		Name:     user.Name,
		Email:    user.Email,
		RoleID:   user.RoleID,
	}, nil
}
