package auth

import (
	"context"
	"errors"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/sreesansree/Quill-Backend/internal/mail"
	"github.com/sreesansree/Quill-Backend/internal/model"
	"github.com/sreesansree/Quill-Backend/internal/pending"
	"github.com/sreesansree/Quill-Backend/internal/store"
)

// fakeUsers is an in-memory store.UserStore with the same uniqueness
// behavior as the sqlite implementation.
type fakeUsers struct {
	mu     sync.Mutex
	nextID int64
	byID   map[int64]model.User
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{byID: make(map[int64]model.User)}
}

func (f *fakeUsers) CreateUser(ctx context.Context, user *model.User) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byID {
		if u.Email == user.Email {
			return 0, store.ErrDuplicateEmail
		}
		if u.Phone == user.Phone {
			return 0, store.ErrDuplicatePhone
		}
	}
	f.nextID++
	user.ID = f.nextID
	f.byID[user.ID] = *user
	return user.ID, nil
}

func (f *fakeUsers) GetUser(ctx context.Context, id int64) (model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return model.User{}, store.ErrNotFound
	}
	return u, nil
}

func (f *fakeUsers) GetUserByEmail(ctx context.Context, email string) (model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byID {
		if u.Email == email {
			return u, nil
		}
	}
	return model.User{}, store.ErrNotFound
}

func (f *fakeUsers) GetUserByPhone(ctx context.Context, phone string) (model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byID {
		if u.Phone == phone {
			return u, nil
		}
	}
	return model.User{}, store.ErrNotFound
}

func (f *fakeUsers) UpdateUserProfile(ctx context.Context, user *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	existing, ok := f.byID[user.ID]
	if !ok {
		return store.ErrNotFound
	}
	for id, u := range f.byID {
		if id == user.ID {
			continue
		}
		if u.Email == user.Email {
			return store.ErrDuplicateEmail
		}
		if u.Phone == user.Phone {
			return store.ErrDuplicatePhone
		}
	}
	user.HashedPassword = existing.HashedPassword
	f.byID[user.ID] = *user
	return nil
}

func (f *fakeUsers) UpdateUserPassword(ctx context.Context, id int64, hashedPassword string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return store.ErrNotFound
	}
	u.HashedPassword = hashedPassword
	f.byID[id] = u
	return nil
}

func (f *fakeUsers) SetUserOTP(ctx context.Context, id int64, otp string, expiresAt int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return store.ErrNotFound
	}
	u.OTP = otp
	t := time.Unix(expiresAt, 0)
	u.OTPExpiresAt = &t
	f.byID[id] = u
	return nil
}

func (f *fakeUsers) ClearUserOTP(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return nil
	}
	u.OTP = ""
	u.OTPExpiresAt = nil
	f.byID[id] = u
	return nil
}

var _ store.UserStore = (*fakeUsers)(nil)

type fakeSender struct {
	mu    sync.Mutex
	sent  []string
	to    string
	fail  error
	codes *regexp.Regexp
}

func newFakeSender() *fakeSender {
	return &fakeSender{codes: regexp.MustCompile(`\d{6}`)}
}

func (f *fakeSender) Send(to, subject, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return f.fail
	}
	f.to = to
	f.sent = append(f.sent, body)
	return nil
}

// lastOTP extracts the 6-digit code from the most recent mail.
func (f *fakeSender) lastOTP(t *testing.T) string {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.sent) == 0 {
		t.Fatal("no mail sent")
	}
	code := f.codes.FindString(f.sent[len(f.sent)-1])
	if code == "" {
		t.Fatalf("no OTP in mail body %q", f.sent[len(f.sent)-1])
	}
	return code
}

var _ mail.Sender = (*fakeSender)(nil)

type testEnv struct {
	svc    *Service
	users  *fakeUsers
	table  *pending.Table
	sender *fakeSender
	now    time.Time
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		users:  newFakeUsers(),
		table:  pending.NewTable(),
		sender: newFakeSender(),
		now:    time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
	env.svc = NewService(env.users, env.table, env.sender, "test-secret", bcrypt.MinCost, 24*time.Hour, 10*time.Minute)
	env.svc.now = func() time.Time { return env.now }
	return env
}

func (e *testEnv) advance(d time.Duration) {
	e.now = e.now.Add(d)
}

func validRequest() RegisterRequest {
	return RegisterRequest{
		FirstName:       "Ada",
		LastName:        "Lovelace",
		Email:           "ada@example.com",
		Phone:           "5550101",
		Password:        "Secret-pw1",
		ConfirmPassword: "Secret-pw1",
		DOB:             "1990-12-10",
		Preferences:     []string{"Technology", "Science"},
	}
}

func TestRegisterHoldsPendingAndMailsOTP(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	require.NoError(t, env.svc.Register(ctx, validRequest()))

	reg, ok := env.table.Get("ada@example.com")
	require.True(t, ok)
	assert.Equal(t, "Ada", reg.FirstName)
	assert.Regexp(t, `^\d{6}$`, reg.OTP)
	assert.Equal(t, env.now.Add(10*time.Minute), reg.OTPExpiresAt)
	assert.Equal(t, "ada@example.com", env.sender.to)
	assert.Equal(t, reg.OTP, env.sender.lastOTP(t))

	// Nothing persisted yet.
	_, err := env.users.GetUserByEmail(ctx, "ada@example.com")
	assert.ErrorIs(t, err, store.ErrNotFound)

	// The stored password is hashed, not plaintext.
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(reg.HashedPassword), []byte("Secret-pw1")))
}

func TestRegisterValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	cases := []struct {
		name   string
		mutate func(*RegisterRequest)
	}{
		{"missing first name", func(r *RegisterRequest) { r.FirstName = " " }},
		{"missing password", func(r *RegisterRequest) { r.Password = "" }},
		{"password mismatch", func(r *RegisterRequest) { r.ConfirmPassword = "different" }},
		{"bad email", func(r *RegisterRequest) { r.Email = "not-an-email" }},
		{"bad dob format", func(r *RegisterRequest) { r.DOB = "10-12-1990" }},
		{"under age", func(r *RegisterRequest) { r.DOB = "2020-01-01" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := validRequest()
			tc.mutate(&req)
			err := env.svc.Register(ctx, req)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
	assert.Equal(t, 0, env.table.Len(), "failed registrations must not be held")
}

func TestRegisterUnknownPreference(t *testing.T) {
	env := newTestEnv(t)
	req := validRequest()
	req.Preferences = []string{"Technology", "Gardening"}
	err := env.svc.Register(context.Background(), req)
	assert.ErrorIs(t, err, ErrConflict)
	assert.Contains(t, err.Error(), "Gardening")
}

func TestRegisterConflicts(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	require.NoError(t, env.svc.Register(ctx, validRequest()))
	code := env.sender.lastOTP(t)
	_, err := env.svc.VerifyOTP(ctx, "ada@example.com", code)
	require.NoError(t, err)

	req := validRequest()
	assert.ErrorIs(t, env.svc.Register(ctx, req), ErrConflict)

	req.Email = "other@example.com"
	assert.ErrorIs(t, env.svc.Register(ctx, req), ErrConflict, "phone still taken")

	req.Phone = "5550199"
	assert.NoError(t, env.svc.Register(ctx, req))
}

func TestRegisterOverwritesPendingEntry(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	require.NoError(t, env.svc.Register(ctx, validRequest()))
	first, _ := env.table.Get("ada@example.com")

	env.advance(5 * time.Minute)
	req := validRequest()
	req.FirstName = "Augusta"
	require.NoError(t, env.svc.Register(ctx, req))

	second, ok := env.table.Get("ada@example.com")
	require.True(t, ok)
	assert.Equal(t, 1, env.table.Len())
	assert.Equal(t, "Augusta", second.FirstName)
	assert.Equal(t, env.now.Add(10*time.Minute), second.OTPExpiresAt, "OTP clock restarts")

	// The first code only still works if the generator happened to repeat.
	if first.OTP != second.OTP {
		_, err := env.svc.VerifyOTP(ctx, "ada@example.com", first.OTP)
		assert.ErrorIs(t, err, ErrOTPMismatch)
	}
}

func TestRegisterDeliveryFailureKeepsPending(t *testing.T) {
	env := newTestEnv(t)
	env.sender.fail = errors.New("smtp: connection refused")

	err := env.svc.Register(context.Background(), validRequest())
	assert.ErrorIs(t, err, ErrDelivery)
	// The entry survives so resend-otp can retry delivery.
	assert.Equal(t, 1, env.table.Len())
}

func TestVerifyOTP(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	require.NoError(t, env.svc.Register(ctx, validRequest()))
	code := env.sender.lastOTP(t)

	_, err := env.svc.VerifyOTP(ctx, "nobody@example.com", code)
	assert.ErrorIs(t, err, ErrNotFound)

	wrong := "000000"
	if wrong == code {
		wrong = "000001"
	}
	_, err = env.svc.VerifyOTP(ctx, "ada@example.com", wrong)
	assert.ErrorIs(t, err, ErrOTPMismatch)
	assert.Equal(t, 1, env.table.Len(), "failed attempts keep the entry")

	user, err := env.svc.VerifyOTP(ctx, "ADA@example.com", code)
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.Equal(t, "ada@example.com", user.Email)
	assert.Equal(t, 0, env.table.Len(), "entry removed after success")

	// A second verify finds nothing pending.
	_, err = env.svc.VerifyOTP(ctx, "ada@example.com", code)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestVerifyOTPKeepsPendingOnCreateFailure(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	require.NoError(t, env.svc.Register(ctx, validRequest()))
	first := env.sender.lastOTP(t)

	// A second registration with the same phone passes the pre-checks while
	// the first is still pending; the store rejects it at verify time.
	req := validRequest()
	req.Email = "grace@example.com"
	require.NoError(t, env.svc.Register(ctx, req))
	second := env.sender.lastOTP(t)

	_, err := env.svc.VerifyOTP(ctx, "ada@example.com", first)
	require.NoError(t, err)

	_, err = env.svc.VerifyOTP(ctx, "grace@example.com", second)
	assert.ErrorIs(t, err, ErrConflict)

	// Failed persistence must not consume the entry: the registration stays
	// verifiable once the conflict is resolved.
	_, ok := env.table.Get("grace@example.com")
	assert.True(t, ok, "pending entry must survive a failed user creation")
}

func TestVerifyOTPExpired(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	require.NoError(t, env.svc.Register(ctx, validRequest()))
	code := env.sender.lastOTP(t)

	env.advance(10*time.Minute + time.Second)
	_, err := env.svc.VerifyOTP(ctx, "ada@example.com", code)
	assert.ErrorIs(t, err, ErrOTPExpired, "correct but stale code must report expired")
}

func TestResendOTPInvalidatesOldCode(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	require.NoError(t, env.svc.Register(ctx, validRequest()))
	oldCode := env.sender.lastOTP(t)

	env.advance(9 * time.Minute)
	require.NoError(t, env.svc.ResendOTP(ctx, "ada@example.com"))
	newCode := env.sender.lastOTP(t)

	reg, _ := env.table.Get("ada@example.com")
	assert.Equal(t, env.now.Add(10*time.Minute), reg.OTPExpiresAt, "window restarts on resend")

	if oldCode != newCode {
		_, err := env.svc.VerifyOTP(ctx, "ada@example.com", oldCode)
		assert.ErrorIs(t, err, ErrOTPMismatch)
	}
	_, err := env.svc.VerifyOTP(ctx, "ada@example.com", newCode)
	assert.NoError(t, err)
}

func TestResendOTPUnknownEmail(t *testing.T) {
	env := newTestEnv(t)
	err := env.svc.ResendOTP(context.Background(), "nobody@example.com")
	assert.ErrorIs(t, err, ErrNotFound)
}

func registerAndVerify(t *testing.T, env *testEnv) model.User {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, env.svc.Register(ctx, validRequest()))
	user, err := env.svc.VerifyOTP(ctx, "ada@example.com", env.sender.lastOTP(t))
	require.NoError(t, err)
	return user
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	registerAndVerify(t, env)

	token, user, err := env.svc.Login(ctx, "ada@example.com", "Secret-pw1")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, "ada@example.com", user.Email)

	// Phone works as the credential too.
	_, _, err = env.svc.Login(ctx, "5550101", "Secret-pw1")
	assert.NoError(t, err)

	_, _, err = env.svc.Login(ctx, "nobody@example.com", "Secret-pw1")
	assert.ErrorIs(t, err, ErrNotFound)

	_, _, err = env.svc.Login(ctx, "ada@example.com", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthenticate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	created := registerAndVerify(t, env)

	token, _, err := env.svc.Login(ctx, "ada@example.com", "Secret-pw1")
	require.NoError(t, err)

	user, err := env.svc.Authenticate(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, created.ID, user.ID)

	_, err = env.svc.Authenticate(ctx, "not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)

	// A token signed with a different secret is rejected.
	other := NewService(env.users, env.table, env.sender, "other-secret", bcrypt.MinCost, time.Hour, time.Minute)
	other.now = env.svc.now
	foreign, err := other.signToken(created)
	require.NoError(t, err)
	_, err = env.svc.Authenticate(ctx, foreign)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestPasswordResetFlow(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	registerAndVerify(t, env)

	assert.ErrorIs(t, env.svc.RequestPasswordReset(ctx, "nobody@example.com"), ErrNotFound)

	require.NoError(t, env.svc.RequestPasswordReset(ctx, "ada@example.com"))
	code := env.sender.lastOTP(t)

	wrong := "000000"
	if wrong == code {
		wrong = "000001"
	}
	assert.ErrorIs(t, env.svc.ResetPassword(ctx, "ada@example.com", wrong, "New-secret2"), ErrOTPMismatch)

	assert.ErrorIs(t, env.svc.ResetPassword(ctx, "ada@example.com", code, "weak"), ErrValidation)

	require.NoError(t, env.svc.ResetPassword(ctx, "ada@example.com", code, "New-secret2"))

	// The code is single-use.
	assert.ErrorIs(t, env.svc.ResetPassword(ctx, "ada@example.com", code, "Another-pw3"), ErrOTPMismatch)

	_, _, err := env.svc.Login(ctx, "ada@example.com", "Secret-pw1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, _, err = env.svc.Login(ctx, "ada@example.com", "New-secret2")
	assert.NoError(t, err)
}

func TestPasswordResetExpired(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	registerAndVerify(t, env)

	require.NoError(t, env.svc.RequestPasswordReset(ctx, "ada@example.com"))
	code := env.sender.lastOTP(t)

	env.advance(11 * time.Minute)
	assert.ErrorIs(t, env.svc.ResetPassword(ctx, "ada@example.com", code, "New-secret2"), ErrOTPExpired)
}

func TestChangePassword(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := registerAndVerify(t, env)

	err := env.svc.ChangePassword(ctx, user.ID, "wrong", "New-secret2")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	err = env.svc.ChangePassword(ctx, user.ID, "Secret-pw1", "Secret-pw1")
	assert.ErrorIs(t, err, ErrValidation, "new password must differ")

	err = env.svc.ChangePassword(ctx, user.ID, "Secret-pw1", "alllowercase1")
	assert.ErrorIs(t, err, ErrValidation, "strength check")

	require.NoError(t, env.svc.ChangePassword(ctx, user.ID, "Secret-pw1", "New-secret2"))
	_, _, err = env.svc.Login(ctx, "ada@example.com", "New-secret2")
	assert.NoError(t, err)
}

func TestUpdateProfile(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := registerAndVerify(t, env)

	updated, err := env.svc.UpdateProfile(ctx, user.ID, "Augusta", "", "", "", "", []string{"Travel"})
	require.NoError(t, err)
	assert.Equal(t, "Augusta", updated.FirstName)
	assert.Equal(t, "Lovelace", updated.LastName, "blank fields keep their value")
	assert.Equal(t, []string{"Travel"}, updated.Preferences)

	_, err = env.svc.UpdateProfile(ctx, user.ID, "", "", "not-an-email", "", "", nil)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = env.svc.UpdateProfile(ctx, user.ID, "", "", "", "", "", []string{"Gardening"})
	assert.ErrorIs(t, err, ErrConflict)

	// Taking another user's phone is a conflict.
	req := validRequest()
	req.Email = "grace@example.com"
	req.Phone = "5550102"
	require.NoError(t, env.svc.Register(ctx, req))
	_, err = env.svc.VerifyOTP(ctx, "grace@example.com", env.sender.lastOTP(t))
	require.NoError(t, err)
	_, err = env.svc.UpdateProfile(ctx, user.ID, "", "", "", "5550102", "", nil)
	assert.ErrorIs(t, err, ErrConflict)
}
