package services

import (
	"chat-relay/auth"
	"chat-relay/domain"
	"chat-relay/errors"
	"chat-relay/repositories"
)

type IAuthService interface {
	Register(name, password string) (domain.UserIdentity, string, error)
	Login(name, password string) (domain.UserIdentity, string, error)
	Authenticate(tokenString string) (domain.UserIdentity, error)
	ListUsers(excludeID string) ([]domain.UserIdentity, error)
}

// AuthService owns account creation and the authenticate hook every
// connection goes through at register time.
type AuthService struct {
	users  repositories.IUserRepository
	tokens *auth.TokenIssuer
}

func NewAuthService(users repositories.IUserRepository, tokens *auth.TokenIssuer) *AuthService {
	return &AuthService{users: users, tokens: tokens}
}

func (s *AuthService) Register(name, password string) (domain.UserIdentity, string, error) {
	if err := auth.ValidateCredentials(auth.CredentialsRequest{Name: name, Password: password}); err != nil {
		return domain.UserIdentity{}, "", errors.ValidationError{Err: err}
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return domain.UserIdentity{}, "", err
	}
	identity, err := s.users.CreateUser(name, hash)
	if err != nil {
		return domain.UserIdentity{}, "", err
	}
	token, err := s.tokens.Generate(identity.ID, identity.Name)
	return identity, token, err
}

func (s *AuthService) Login(name, password string) (domain.UserIdentity, string, error) {
	user, err := s.users.GetUserByName(name)
	if err != nil {
		// Same answer whether the name or the password is wrong
		return domain.UserIdentity{}, "", errors.ErrInvalidCredentials
	}
	match, err := auth.ComparePassword(password, user.PasswordHash)
	if err != nil || !match {
		return domain.UserIdentity{}, "", errors.ErrInvalidCredentials
	}
	token, err := s.tokens.Generate(user.ID, user.Name)
	return user.Identity(), token, err
}

// Authenticate resolves a presented token to a live account. Claims
// alone are not enough: the account must still exist.
func (s *AuthService) Authenticate(tokenString string) (domain.UserIdentity, error) {
	claims, err := s.tokens.Validate(tokenString)
	if err != nil {
		return domain.UserIdentity{}, errors.AuthorizationError{Err: err}
	}
	identity, err := s.users.GetUser(claims.UserID)
	if err != nil {
		return domain.UserIdentity{}, errors.AuthorizationError{Err: err}
	}
	return identity, nil
}

func (s *AuthService) ListUsers(excludeID string) ([]domain.UserIdentity, error) {
	return s.users.ListUsers(excludeID)
}
