package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/iliyamo/hotel-booking/internal/model"
	"github.com/iliyamo/hotel-booking/internal/repository"
	"github.com/iliyamo/hotel-booking/internal/utils"
)

type RegisterInput struct {
	Username string
	Email    string
	Password string
}

// LoginResult is a freshly issued token and the account it belongs to.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	Account   model.Account
}

// AccountService registers and authenticates accounts of one role.  Users
// and admins each get their own instance over their own repository.
type AccountService struct {
	role   model.Role
	repo   repository.AccountRepository
	hasher utils.PasswordHasher
	tokens *utils.TokenIssuer
	tracer trace.Tracer
	log    zerolog.Logger
}

func NewAccountService(role model.Role, repo repository.AccountRepository, hasher utils.PasswordHasher,
	tokens *utils.TokenIssuer, tracer trace.Tracer, log zerolog.Logger) *AccountService {
	if repo == nil || tokens == nil {
		panic("nil dependency passed to NewAccountService")
	}
	return &AccountService{
		role:   role,
		repo:   repo,
		hasher: hasher,
		tokens: tokens,
		tracer: tracerOrDefault(tracer),
		log:    log.With().Str("role", string(role)).Logger(),
	}
}

func (s *AccountService) Role() model.Role { return s.role }

// Register hashes the password and stores a new account.  Duplicate email
// or username surfaces as repository.ErrEmailExists/ErrUsernameExists.
func (s *AccountService) Register(ctx context.Context, in RegisterInput) (model.Account, error) {
	ctx, span := s.tracer.Start(ctx, "AccountService.Register", trace.WithAttributes(attribute.String("role", string(s.role))))
	defer span.End()

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return model.Account{}, fail(span, fmt.Errorf("hash password: %w", err))
	}
	a := model.Account{
		Email:        strings.ToLower(strings.TrimSpace(in.Email)),
		Username:     strings.TrimSpace(in.Username),
		PasswordHash: hash,
	}
	if err := s.repo.Create(ctx, &a); err != nil {
		if errors.Is(err, repository.ErrEmailExists) || errors.Is(err, repository.ErrUsernameExists) {
			return model.Account{}, err
		}
		return model.Account{}, fail(span, fmt.Errorf("create account: %w", err))
	}
	s.log.Info().Str("account_id", a.ID).Msg("account registered")
	return a, nil
}

// Login verifies the credentials and issues a token carrying the service's
// role.  Unknown email and wrong password both return ErrInvalidCredentials
// after the same amount of bcrypt work.
func (s *AccountService) Login(ctx context.Context, email, password string) (LoginResult, error) {
	ctx, span := s.tracer.Start(ctx, "AccountService.Login", trace.WithAttributes(attribute.String("role", string(s.role))))
	defer span.End()

	a, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.hasher.Burn(password)
			return LoginResult{}, ErrInvalidCredentials
		}
		return LoginResult{}, fail(span, fmt.Errorf("find account: %w", err))
	}
	if !s.hasher.Verify(a.PasswordHash, password) {
		return LoginResult{}, ErrInvalidCredentials
	}

	tok, err := s.tokens.Issue(model.Identity{ID: a.ID, Email: a.Email, Role: s.role})
	if err != nil {
		return LoginResult{}, fail(span, fmt.Errorf("issue token: %w", err))
	}
	return LoginResult{Token: tok.Token, ExpiresAt: tok.Exp, Account: a}, nil
}

// List returns every account of this role.
func (s *AccountService) List(ctx context.Context) ([]model.Account, error) {
	ctx, span := s.tracer.Start(ctx, "AccountService.List")
	defer span.End()

	out, err := s.repo.List(ctx)
	if err != nil {
		return nil, fail(span, fmt.Errorf("list accounts: %w", err))
	}
	return out, nil
}
