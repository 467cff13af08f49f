// Package auth implements registration with OTP email verification, login
// and session token issuance, and the OTP-based password reset flow.
package auth

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/sreesansree/Quill-Backend/internal/mail"
	"github.com/sreesansree/Quill-Backend/internal/model"
	"github.com/sreesansree/Quill-Backend/internal/otp"
	"github.com/sreesansree/Quill-Backend/internal/pending"
	"github.com/sreesansree/Quill-Backend/internal/store"
)

// Sentinel errors; the http layer maps them to status codes.
var (
	ErrValidation         = errors.New("invalid input")
	ErrConflict           = errors.New("already registered")
	ErrNotFound           = errors.New("not found")
	ErrOTPExpired         = errors.New("otp has expired")
	ErrOTPMismatch        = errors.New("invalid otp")
	ErrDelivery           = errors.New("failed to send email")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrMissingToken       = errors.New("access token required")
	ErrInvalidToken       = errors.New("invalid token")
)

const minAge = 12

var emailRe = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// Service orchestrates the pending-registration table, the credential
// store, and the notification sender.
type Service struct {
	users      store.UserStore
	pending    *pending.Table
	sender     mail.Sender
	jwtSecret  []byte
	bcryptCost int
	tokenTTL   time.Duration
	otpTTL     time.Duration

	now func() time.Time
}

func NewService(users store.UserStore, table *pending.Table, sender mail.Sender, jwtSecret string, bcryptCost int, tokenTTL, otpTTL time.Duration) *Service {
	return &Service{
		users:      users,
		pending:    table,
		sender:     sender,
		jwtSecret:  []byte(jwtSecret),
		bcryptCost: bcryptCost,
		tokenTTL:   tokenTTL,
		otpTTL:     otpTTL,
		now:        time.Now,
	}
}

// RegisterRequest carries the registration form. DOB is YYYY-MM-DD.
type RegisterRequest struct {
	FirstName       string   `json:"first_name"`
	LastName        string   `json:"last_name"`
	Email           string   `json:"email"`
	Phone           string   `json:"phone"`
	Password        string   `json:"password"`
	ConfirmPassword string   `json:"confirm_password"`
	DOB             string   `json:"dob"`
	Preferences     []string `json:"preferences"`
}

// Register validates the request, stores a pending registration keyed by
// email, and mails a 6-digit OTP valid for the configured window. No user
// row is written until VerifyOTP succeeds. A repeat Register for the same
// email overwrites the earlier pending entry.
func (s *Service) Register(ctx context.Context, req RegisterRequest) error {
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)
	req.Email = pending.Normalize(req.Email)
	req.Phone = strings.TrimSpace(req.Phone)

	if req.FirstName == "" || req.LastName == "" || req.Email == "" || req.Phone == "" ||
		req.Password == "" || req.ConfirmPassword == "" || req.DOB == "" {
		return fmt.Errorf("%w: all fields are required", ErrValidation)
	}
	if !emailRe.MatchString(req.Email) {
		return fmt.Errorf("%w: invalid email format", ErrValidation)
	}
	if req.Password != req.ConfirmPassword {
		return fmt.Errorf("%w: passwords do not match", ErrValidation)
	}
	dob, err := time.Parse("2006-01-02", req.DOB)
	if err != nil {
		return fmt.Errorf("%w: dob must be YYYY-MM-DD", ErrValidation)
	}
	if yearsBetween(dob, s.now()) < minAge {
		return fmt.Errorf("%w: you must be at least %d years old", ErrValidation, minAge)
	}
	if err := validatePreferences(req.Preferences); err != nil {
		return err
	}

	if _, err := s.users.GetUserByEmail(ctx, req.Email); err == nil {
		return fmt.Errorf("%w: email in use", ErrConflict)
	} else if !errors.Is(err, store.ErrNotFound) {
		return err
	}
	if _, err := s.users.GetUserByPhone(ctx, req.Phone); err == nil {
		return fmt.Errorf("%w: phone in use", ErrConflict)
	} else if !errors.Is(err, store.ErrNotFound) {
		return err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return err
	}
	code, err := otp.Generate()
	if err != nil {
		return err
	}

	s.pending.Put(model.PendingRegistration{
		Email:          req.Email,
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Phone:          req.Phone,
		HashedPassword: string(hashed),
		DOB:            dob,
		Preferences:    req.Preferences,
		OTP:            code,
		OTPExpiresAt:   s.now().Add(s.otpTTL),
	})

	body := fmt.Sprintf("Your OTP code is %s. It will expire in %d minutes. Please enter this code to verify your account.", code, int(s.otpTTL.Minutes()))
	if err := s.sender.Send(req.Email, "Quill Verification", body); err != nil {
		// The pending entry stays so the client can retry with resend-otp.
		return fmt.Errorf("%w: %v", ErrDelivery, err)
	}
	return nil
}

// ResendOTP replaces the pending entry's code and restarts its expiry
// window. The previous code stops working immediately.
func (s *Service) ResendOTP(ctx context.Context, email string) error {
	reg, ok := s.pending.Get(email)
	if !ok {
		return fmt.Errorf("%w: no pending registration for this email", ErrNotFound)
	}
	code, err := otp.Generate()
	if err != nil {
		return err
	}
	reg.OTP = code
	reg.OTPExpiresAt = s.now().Add(s.otpTTL)
	s.pending.Put(reg)

	body := fmt.Sprintf("Your new OTP code is %s. It will expire in %d minutes.", code, int(s.otpTTL.Minutes()))
	if err := s.sender.Send(reg.Email, "Quill Verification - Resend OTP", body); err != nil {
		return fmt.Errorf("%w: %v", ErrDelivery, err)
	}
	return nil
}

// VerifyOTP checks the supplied code against the pending entry and, on
// success, persists the user and removes the entry. The entry is removed
// only after the user row is confirmed written, so a storage failure leaves
// the registration retryable.
func (s *Service) VerifyOTP(ctx context.Context, email, code string) (model.User, error) {
	reg, ok := s.pending.Get(email)
	if !ok {
		return model.User{}, fmt.Errorf("%w: user not found", ErrNotFound)
	}
	if s.now().After(reg.OTPExpiresAt) {
		return model.User{}, ErrOTPExpired
	}
	if code != reg.OTP {
		return model.User{}, ErrOTPMismatch
	}

	user := model.User{
		FirstName:      reg.FirstName,
		LastName:       reg.LastName,
		Email:          reg.Email,
		Phone:          reg.Phone,
		HashedPassword: reg.HashedPassword,
		DOB:            reg.DOB,
		Preferences:    reg.Preferences,
		CreatedAt:      s.now(),
	}
	id, err := s.users.CreateUser(ctx, &user)
	if err != nil {
		if errors.Is(err, store.ErrDuplicateEmail) || errors.Is(err, store.ErrDuplicatePhone) {
			return model.User{}, fmt.Errorf("%w: %v", ErrConflict, err)
		}
		return model.User{}, err
	}
	user.ID = id
	s.pending.Remove(email)
	return user, nil
}

// Login accepts an email or a phone number as credential, verifies the
// password, and returns a signed session token plus the user profile.
func (s *Service) Login(ctx context.Context, credential, password string) (string, model.User, error) {
	credential = strings.TrimSpace(credential)
	if credential == "" || password == "" {
		return "", model.User{}, fmt.Errorf("%w: credential and password are required", ErrValidation)
	}

	var user model.User
	var err error
	if emailRe.MatchString(credential) {
		user, err = s.users.GetUserByEmail(ctx, pending.Normalize(credential))
	} else {
		user, err = s.users.GetUserByPhone(ctx, credential)
	}
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", model.User{}, fmt.Errorf("%w: user not found", ErrNotFound)
		}
		return "", model.User{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(password)); err != nil {
		return "", model.User{}, ErrInvalidCredentials
	}

	token, err := s.signToken(user)
	if err != nil {
		return "", model.User{}, err
	}
	return token, user, nil
}

// Authenticate validates a bearer token and resolves it to the user it was
// issued for. It never issues or refreshes tokens.
func (s *Service) Authenticate(ctx context.Context, tokenString string) (model.User, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return model.User{}, ErrInvalidToken
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return model.User{}, ErrInvalidToken
	}
	sub, err := claims.GetSubject()
	if err != nil {
		return model.User{}, ErrInvalidToken
	}
	userID, err := strconv.ParseInt(sub, 10, 64)
	if err != nil {
		return model.User{}, ErrInvalidToken
	}

	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return model.User{}, fmt.Errorf("%w: user not found", ErrNotFound)
		}
		return model.User{}, err
	}
	return user, nil
}

// RequestPasswordReset writes a fresh OTP onto the persisted user record
// and mails it. Unlike registration, this operates on the database, not the
// pending table.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := s.users.GetUserByEmail(ctx, pending.Normalize(email))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("%w: user not found", ErrNotFound)
		}
		return err
	}
	code, err := otp.Generate()
	if err != nil {
		return err
	}
	expires := s.now().Add(s.otpTTL)
	if err := s.users.SetUserOTP(ctx, user.ID, code, expires.Unix()); err != nil {
		return err
	}

	body := fmt.Sprintf("Your password reset code is %s. It will expire in %d minutes.", code, int(s.otpTTL.Minutes()))
	if err := s.sender.Send(user.Email, "Quill Password Reset", body); err != nil {
		return fmt.Errorf("%w: %v", ErrDelivery, err)
	}
	return nil
}

// ResetPassword verifies the reset OTP against the user record, re-hashes
// the new password, and clears the OTP fields.
func (s *Service) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	user, err := s.users.GetUserByEmail(ctx, pending.Normalize(email))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("%w: user not found", ErrNotFound)
		}
		return err
	}
	if user.OTP == "" || user.OTPExpiresAt == nil {
		return fmt.Errorf("%w: no reset code requested", ErrOTPMismatch)
	}
	if s.now().After(*user.OTPExpiresAt) {
		return ErrOTPExpired
	}
	if code != user.OTP {
		return ErrOTPMismatch
	}
	if err := validatePasswordStrength(newPassword); err != nil {
		return err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.bcryptCost)
	if err != nil {
		return err
	}
	if err := s.users.UpdateUserPassword(ctx, user.ID, string(hashed)); err != nil {
		return err
	}
	return s.users.ClearUserOTP(ctx, user.ID)
}

// ChangePassword verifies the current password before re-hashing the new
// one. The new password must differ from the current one.
func (s *Service) ChangePassword(ctx context.Context, userID int64, current, newPassword string) error {
	if current == "" || newPassword == "" {
		return fmt.Errorf("%w: both current and new passwords are required", ErrValidation)
	}
	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("%w: user not found", ErrNotFound)
		}
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(current)); err != nil {
		return fmt.Errorf("%w: current password is incorrect", ErrInvalidCredentials)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(newPassword)) == nil {
		return fmt.Errorf("%w: new password must differ from the current password", ErrValidation)
	}
	if err := validatePasswordStrength(newPassword); err != nil {
		return err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.bcryptCost)
	if err != nil {
		return err
	}
	return s.users.UpdateUserPassword(ctx, userID, string(hashed))
}

// UpdateProfile applies profile edits after running the registration-time
// field checks. Email and phone uniqueness are enforced by the store.
func (s *Service) UpdateProfile(ctx context.Context, userID int64, firstName, lastName, email, phone, dobStr string, preferences []string) (model.User, error) {
	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return model.User{}, fmt.Errorf("%w: user not found", ErrNotFound)
		}
		return model.User{}, err
	}

	if firstName = strings.TrimSpace(firstName); firstName != "" {
		user.FirstName = firstName
	}
	if lastName = strings.TrimSpace(lastName); lastName != "" {
		user.LastName = lastName
	}
	if email = pending.Normalize(email); email != "" {
		if !emailRe.MatchString(email) {
			return model.User{}, fmt.Errorf("%w: invalid email format", ErrValidation)
		}
		user.Email = email
	}
	if phone = strings.TrimSpace(phone); phone != "" {
		user.Phone = phone
	}
	if dobStr != "" {
		dob, err := time.Parse("2006-01-02", dobStr)
		if err != nil {
			return model.User{}, fmt.Errorf("%w: dob must be YYYY-MM-DD", ErrValidation)
		}
		if yearsBetween(dob, s.now()) < minAge {
			return model.User{}, fmt.Errorf("%w: you must be at least %d years old", ErrValidation, minAge)
		}
		user.DOB = dob
	}
	if preferences != nil {
		if err := validatePreferences(preferences); err != nil {
			return model.User{}, err
		}
		user.Preferences = preferences
	}

	if err := s.users.UpdateUserProfile(ctx, &user); err != nil {
		if errors.Is(err, store.ErrDuplicateEmail) || errors.Is(err, store.ErrDuplicatePhone) {
			return model.User{}, fmt.Errorf("%w: %v", ErrConflict, err)
		}
		return model.User{}, err
	}
	return user, nil
}

func (s *Service) signToken(user model.User) (string, error) {
	now := s.now()
	claims := jwt.MapClaims{
		"sub":   strconv.FormatInt(user.ID, 10),
		"email": user.Email,
		"iat":   now.Unix(),
		"exp":   now.Add(s.tokenTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

func validatePreferences(preferences []string) error {
	var invalid []string
	for _, p := range preferences {
		if !model.ValidCategory(p) {
			invalid = append(invalid, p)
		}
	}
	if len(invalid) > 0 {
		return fmt.Errorf("%w: invalid preferences: %s", ErrConflict, strings.Join(invalid, ", "))
	}
	return nil
}

func validatePasswordStrength(password string) error {
	if len(password) < 8 {
		return fmt.Errorf("%w: password must be at least 8 characters", ErrValidation)
	}
	var hasUpper, hasLower, hasNumber bool
	for _, r := range password {
		switch {
		case r >= 'A' && r <= 'Z':
			hasUpper = true
		case r >= 'a' && r <= 'z':
			hasLower = true
		case r >= '0' && r <= '9':
			hasNumber = true
		}
	}
	if !hasUpper || !hasLower || !hasNumber {
		return fmt.Errorf("%w: password must contain an uppercase letter, a lowercase letter, and a number", ErrValidation)
	}
	return nil
}

// yearsBetween returns full calendar years elapsed between dob and now.
func yearsBetween(dob, now time.Time) int {
	years := now.Year() - dob.Year()
	if now.Before(dob.AddDate(years, 0, 0)) {
		years--
	}
	return years
}
