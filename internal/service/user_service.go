package service

import (
	"context"
	"errors"
	"strings"

	"github.com/Eursukkul/bus-booking/internal/apperror"
	"github.com/Eursukkul/bus-booking/internal/models"
	"github.com/Eursukkul/bus-booking/internal/repository"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrUserNotFound      = apperror.NotFound("user not found")
	ErrEmailTaken        = apperror.Validation("user with same email found")
	ErrIncorrectPassword = apperror.Unauthenticated("incorrect password")
	ErrMissingUserFields = apperror.Validation("all fields are required")
)

type TokenIssuer interface {
	Issue(userID uint) (string, error)
}

type RegisterInput struct {
	FirstName    string
	InitialNames string
	LastName     string
	Email        string
	Password     string
}

type UserService interface {
	Register(ctx context.Context, in RegisterInput) (*models.User, error)
	Login(ctx context.Context, email, password string) (string, *models.User, error)
}

type userService struct {
	userRepo repository.UserRepository
	tokens   TokenIssuer
	hashCost int
}

func NewUserService(userRepo repository.UserRepository, tokens TokenIssuer) UserService {
	return &userService{userRepo: userRepo, tokens: tokens, hashCost: bcrypt.DefaultCost}
}

func (s *userService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if strings.TrimSpace(in.FirstName) == "" || strings.TrimSpace(in.LastName) == "" || email == "" || in.Password == "" {
		return nil, ErrMissingUserFields
	}

	_, err := s.userRepo.FindByEmail(ctx, email)
	if err == nil {
		return nil, ErrEmailTaken
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.Internal(err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.hashCost)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	user := &models.User{
		FirstName:      strings.TrimSpace(in.FirstName),
		InitialNames:   strings.TrimSpace(in.InitialNames),
		LastName:       strings.TrimSpace(in.LastName),
		Email:          email,
		PasswordHash:   string(hash),
		ProfilePicture: models.DefaultProfilePicture,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailTaken
		}
		return nil, apperror.Internal(err)
	}
	return user, nil
}

func (s *userService) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return "", nil, ErrMissingUserFields
	}

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, ErrUserNotFound
		}
		return "", nil, apperror.Internal(err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrIncorrectPassword
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return "", nil, apperror.Internal(err)
	}
	return token, user, nil
}
