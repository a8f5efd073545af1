package user

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"taskboard-backend/internal/storage"
	"taskboard-backend/internal/user/entity"
)

// Repository is the persistence surface the service needs.
type Repository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
}

// PasswordHasher defines minimal hashing interface (abstract so we can swap to argon2 later).
type PasswordHasher interface {
	Hash(pw string) (string, error)
	Verify(hash, pw string) bool
}

// BcryptHasher implementation.
type BcryptHasher struct{ Cost int }

func (b BcryptHasher) Hash(pw string) (string, error) {
	cost := b.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	h, err := bcrypt.GenerateFromPassword([]byte(pw), cost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

func (b BcryptHasher) Verify(hash, pw string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw)) == nil
}

var (
	ErrEmailTaken    = errors.New("user already exists")
	ErrUserNotFound  = errors.New("user not found")
	ErrWrongPassword = errors.New("incorrect password")
)

// ValidationError marks input the caller can fix; handlers map it to 400.
type ValidationError string

func (e ValidationError) Error() string { return string(e) }

const minPasswordLen = 8

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Service orchestrates registration and password authentication.
type Service struct {
	repo   Repository
	hasher PasswordHasher
}

func NewService(repo Repository, hasher PasswordHasher) *Service {
	if hasher == nil {
		hasher = BcryptHasher{Cost: 10}
	}
	return &Service{repo: repo, hasher: hasher}
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// Register validates the input, checks email uniqueness and persists a new
// user with a hashed password and normalized email.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*entity.User, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, ValidationError("name is required")
	}
	email, err := validateEmail(in.Email)
	if err != nil {
		return nil, err
	}
	if err := validatePassword(in.Password); err != nil {
		return nil, err
	}

	if _, err := s.repo.GetByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, storage.ErrNotFound) {
		return nil, err
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u := &entity.User{Name: name, Email: email, PasswordHash: hash}
	if err := s.repo.Create(ctx, u); err != nil {
		// unique constraint backstops the lookup above under concurrency
		if errors.Is(err, storage.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	return u, nil
}

type LoginInput struct {
	Email    string
	Password string
}

// Login verifies the supplied credentials against the stored hash. Unknown
// email and wrong password are distinct errors on purpose; see DESIGN.md.
func (s *Service) Login(ctx context.Context, in LoginInput) (*entity.User, error) {
	email, err := validateEmail(in.Email)
	if err != nil {
		return nil, err
	}
	if err := validatePassword(in.Password); err != nil {
		return nil, err
	}

	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if !s.hasher.Verify(u.PasswordHash, in.Password) {
		return nil, ErrWrongPassword
	}
	return u, nil
}

func validateEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" {
		return "", ValidationError("email is required")
	}
	if !emailPattern.MatchString(email) {
		return "", ValidationError("email is invalid")
	}
	return email, nil
}

func validatePassword(pw string) error {
	if pw == "" {
		return ValidationError("password is required")
	}
	if len(pw) < minPasswordLen {
		return ValidationError("password must be at least 8 characters")
	}
	return nil
}
