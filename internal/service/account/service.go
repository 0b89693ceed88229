// Package account covers registration, login/logout and profile management.
package account

import (
	"context"
	"errors"
	"strings"
	"unicode"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/devtinder/api/internal/app"
	"github.com/devtinder/api/internal/db"
	svcErr "github.com/devtinder/api/internal/errors"
	"github.com/devtinder/api/internal/repository"
)

// SignUpInput is the validated payload for registration.
type SignUpInput struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
	Age       *int
	Gender    string
	About     string
	Skills    []string
}

// EditProfileInput carries the editable profile fields. Nil pointers mean
// "leave unchanged"; email and password are deliberately not editable here.
type EditProfileInput struct {
	FirstName *string   `json:"firstName"`
	LastName  *string   `json:"lastName"`
	Age       *int      `json:"age"`
	Gender    *string   `json:"gender"`
	About     *string   `json:"about"`
	PhotoURL  *string   `json:"photoURL"`
	Skills    *[]string `json:"skills"`
}

// Service contains the account business logic.
type Service struct {
	appCtx   *app.AppContext
	userRepo *repository.UserRepository
}

// NewService creates the account service with dependencies from AppContext.
func NewService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx:   appCtx,
		userRepo: repository.NewUserRepository(appCtx.DB),
	}
}

// SignUp validates and registers a new user. The password is stored as a
// bcrypt hash, and a missing photo defaults by gender.
func (s *Service) SignUp(ctx context.Context, in SignUpInput) (*db.User, error) {
	s.appCtx.Logger.Debug("SignUp called", "email", in.Email)

	gender, err := normalizeGender(in.Gender)
	if err != nil {
		return nil, err
	}
	if !isStrongPassword(in.Password) {
		return nil, svcErr.Validation("Enter a strong password")
	}
	if in.Age != nil && *in.Age < 18 {
		return nil, svcErr.Validation("age must be at least 18")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, svcErr.Map(err)
	}

	user := &db.User{
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		Email:        in.Email,
		PasswordHash: string(hash),
		Age:          in.Age,
		Gender:       gender,
		About:        in.About,
		PhotoURL:     db.DefaultPhotoURL(gender),
		Skills:       in.Skills,
	}
	if user.Skills == nil {
		user.Skills = []string{}
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, svcErr.Conflict("Email already registered")
		}
		return nil, svcErr.Map(err)
	}
	return user, nil
}

// Login verifies the credential and returns the user plus a fresh session
// token. Unknown email and bad password both come back as the same 401 so
// the response does not reveal which part was wrong.
func (s *Service) Login(ctx context.Context, email, password string) (*db.User, string, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", svcErr.Unauthorized("Invalid credentials")
		}
		return nil, "", svcErr.Map(err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", svcErr.Unauthorized("Invalid credentials")
	}

	token, err := s.appCtx.Tokens.Issue(user.ID)
	if err != nil {
		return nil, "", svcErr.Map(err)
	}
	return user, token, nil
}

// Profile returns the caller's own full record.
func (s *Service) Profile(ctx context.Context, userID uint64) (*db.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return user, nil
}

// EditProfile merges the provided editable fields into the caller's record
// and returns the updated document. Fields outside the allow-list cannot be
// touched through this path.
func (s *Service) EditProfile(ctx context.Context, userID uint64, in EditProfileInput) (*db.User, error) {
	s.appCtx.Logger.Debug("EditProfile called", "user", userID)

	fields := map[string]interface{}{}

	if in.FirstName != nil {
		name := strings.TrimSpace(*in.FirstName)
		if len(name) < 3 {
			return nil, svcErr.Validation("Enter a valid first name")
		}
		fields["first_name"] = name
	}
	if in.LastName != nil {
		name := strings.TrimSpace(*in.LastName)
		if name == "" {
			return nil, svcErr.Validation("Enter a valid last name")
		}
		fields["last_name"] = name
	}
	if in.Age != nil {
		if *in.Age < 18 {
			return nil, svcErr.Validation("age must be at least 18")
		}
		fields["age"] = *in.Age
	}
	if in.Gender != nil {
		gender, err := normalizeGender(*in.Gender)
		if err != nil {
			return nil, err
		}
		fields["gender"] = gender
	}
	if in.About != nil {
		fields["about"] = *in.About
	}
	if in.PhotoURL != nil {
		fields["photo_url"] = *in.PhotoURL
	}

	if err := s.userRepo.UpdateFields(ctx, userID, fields); err != nil {
		return nil, svcErr.Map(err)
	}

	// skills go through a separate save because of the JSON serializer
	if in.Skills != nil {
		err := s.appCtx.DB.WithContext(ctx).
			Model(&db.User{}).
			Where("id = ?", userID).
			Update("skills", *in.Skills).Error
		if err != nil {
			return nil, svcErr.Map(err)
		}
	}

	return s.Profile(ctx, userID)
}

// normalizeGender lowercases and validates the gender enum. "others" is
// accepted as an alias for "other".
func normalizeGender(gender string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(gender)) {
	case db.GenderMale:
		return db.GenderMale, nil
	case db.GenderFemale:
		return db.GenderFemale, nil
	case db.GenderOther, "others":
		return db.GenderOther, nil
	default:
		return "", svcErr.Validation("Not a valid gender (male, female and other)")
	}
}

// isStrongPassword requires at least 8 characters with an upper, a lower,
// a digit and a symbol.
func isStrongPassword(password string) bool {
	if len(password) < 8 {
		return false
	}
	var upper, lower, digit, symbol bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			symbol = true
		}
	}
	return upper && lower && digit && symbol
}
