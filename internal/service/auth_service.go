package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"taskflow/internal/auth"
	"taskflow/internal/model"
	"taskflow/internal/repository"
)

// dummyDigest is compared against when the email is unknown so a failed
// login costs the same whether or not the account exists.
const dummyDigest = "$2a$10$7EqJtq98hPqEX7fNZaFWoOhi5BWX4Z3ZsI2Yj6ZV6dS/6Eo8n5O1e"

// SignupInput represents data required to register a user.
type SignupInput struct {
	Email    string
	Password string
	FullName *string
}

// LoginResult is returned on successful authentication.
type LoginResult struct {
	AccessToken string
	TokenType   string
	User        *model.User
}

// AuthService wraps registration, login and token resolution.
type AuthService struct {
	users  *repository.UserRepository
	tokens *auth.TokenIssuer
}

func NewAuthService(users *repository.UserRepository, tokens *auth.TokenIssuer) *AuthService {
	return &AuthService{users: users, tokens: tokens}
}

func (s *AuthService) Signup(ctx context.Context, input SignupInput) (*model.User, error) {
	if err := requireText("email", input.Email); err != nil {
		return nil, err
	}
	if input.Password == "" {
		return nil, invalid("password", "must not be empty")
	}

	_, err := s.users.FindByEmail(ctx, input.Email)
	switch {
	case err == nil:
		return nil, ErrEmailTaken
	case !errors.Is(err, repository.ErrNotFound):
		return nil, fmt.Errorf("find user: %w", err)
	}

	digest, err := auth.HashPassword(input.Password)
	if err != nil {
		if errors.Is(err, auth.ErrPasswordTooLong) {
			return nil, invalid("password", "must be at most 72 bytes")
		}
		return nil, err
	}

	user := &model.User{
		Email:          input.Email,
		FullName:       input.FullName,
		HashedPassword: digest,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	return user, nil
}

// Login checks credentials and issues a bearer token for the user's email.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("find user: %w", err)
		}
		auth.VerifyPassword(password, dummyDigest)
		return nil, ErrBadCredentials
	}
	if !auth.VerifyPassword(password, user.HashedPassword) {
		return nil, ErrBadCredentials
	}

	token, _, err := s.tokens.Issue(user.Email)
	if err != nil {
		return nil, err
	}
	return &LoginResult{AccessToken: token, TokenType: "bearer", User: user}, nil
}

// Authenticate resolves a bearer token to its user. A token whose subject
// no longer exists is reported as invalid.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*model.User, error) {
	email, err := s.tokens.Validate(strings.TrimSpace(token))
	if err != nil {
		return nil, err
	}
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, auth.ErrTokenInvalid
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return user, nil
}
