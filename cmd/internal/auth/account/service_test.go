package account

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"quill/cmd/identity"
	"quill/cmd/security/password"
)

type fakeUsers struct {
	mu     sync.Mutex
	byMail map[string]identity.User
	nextID int64

	// hideExisting makes EmailExists lie, simulating a racing registration.
	hideExisting bool
	lookupErr    error
}

func newFakeUsers() *fakeUsers { return &fakeUsers{byMail: map[string]identity.User{}} }

func (f *fakeUsers) EmailExists(_ context.Context, email string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.hideExisting {
		return false, nil
	}
	_, ok := f.byMail[email]
	return ok, nil
}

func (f *fakeUsers) GetUserAuthByEmail(_ context.Context, email string) (identity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.lookupErr != nil {
		return identity.User{}, f.lookupErr
	}
	u, ok := f.byMail[email]
	if !ok {
		return identity.User{}, identity.NotFoundError{Op: "fake", Resource: "user"}
	}
	return u, nil
}

func (f *fakeUsers) CreateUser(_ context.Context, in identity.CreateUserInput) (identity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byMail[in.Email]; ok {
		return identity.User{}, identity.ConflictError{Op: "fake", Field: "email"}
	}
	f.nextID++
	u := identity.User{ID: f.nextID, Name: in.Name, Email: in.Email, PasswordHash: in.PasswordHash}
	f.byMail[in.Email] = u
	return u, nil
}

type fakeSessions struct {
	created []int64
	err     error
}

func (f *fakeSessions) Create(_ context.Context, _ time.Time, userID int64) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.created = append(f.created, userID)
	return "tok-" + string(rune('a'+len(f.created))), nil
}

func fastPassword() password.Config {
	cfg := password.DefaultConfig()
	cfg.Cost = bcrypt.MinCost
	return cfg
}

func validInput() RegisterInput {
	return RegisterInput{Name: "Ada Lovelace", Email: "ada@example.com", Password: "Str0ng!pw", Confirm: "Str0ng!pw"}
}

func TestRegister_Succeeds(t *testing.T) {
	users := newFakeUsers()
	sess := &fakeSessions{}
	svc := NewService(users, sess, fastPassword())

	res, err := svc.Register(context.Background(), validInput())
	require.NoError(t, err)
	require.Equal(t, int64(1), res.UserID)
	require.NotEmpty(t, res.Token)
	require.Equal(t, []int64{1}, sess.created)

	stored := users.byMail["ada@example.com"]
	require.NotEqual(t, "Str0ng!pw", stored.PasswordHash)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("Str0ng!pw")))
}

func TestRegister_TrimsFields(t *testing.T) {
	users := newFakeUsers()
	svc := NewService(users, &fakeSessions{}, fastPassword())

	in := RegisterInput{Name: "  Ada  ", Email: " ada@example.com ", Password: " Str0ng!pw ", Confirm: "Str0ng!pw"}
	_, err := svc.Register(context.Background(), in)
	require.NoError(t, err)
	require.Equal(t, "Ada", users.byMail["ada@example.com"].Name)
}

func TestRegister_ValidationFaults(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*RegisterInput)
		message string
	}{
		{"missing name", func(in *RegisterInput) { in.Name = "   " }, MsgFillAllRegister},
		{"missing confirm", func(in *RegisterInput) { in.Confirm = "" }, MsgFillAllRegister},
		{"illegal name", func(in *RegisterInput) { in.Name = "<b>Ada</b>" }, MsgInvalidName},
		{"illegal first char", func(in *RegisterInput) { in.Name = "!Ada" }, MsgInvalidName},
		{"bad email", func(in *RegisterInput) { in.Email = "ada@example" }, MsgInvalidEmail},
		{"email with space", func(in *RegisterInput) { in.Email = "a da@example.com" }, MsgInvalidEmail},
		{"mismatch", func(in *RegisterInput) { in.Confirm = "Str0ng!px" }, MsgPasswordMismatch},
		{"weak", func(in *RegisterInput) { in.Password, in.Confirm = "abc12345", "abc12345" }, MsgWeakPassword},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			users := newFakeUsers()
			svc := NewService(users, &fakeSessions{}, fastPassword())

			in := validInput()
			tc.mutate(&in)
			_, err := svc.Register(context.Background(), in)

			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			require.Equal(t, tc.message, ve.Message)
			require.Empty(t, users.byMail, "no row on validation fault")
		})
	}
}

func TestRegister_WeakPasswordReportsEachFailingRule(t *testing.T) {
	svc := NewService(newFakeUsers(), &fakeSessions{}, fastPassword())

	in := validInput()
	in.Password, in.Confirm = "abc12345", "abc12345"
	_, err := svc.Register(context.Background(), in)

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	require.Equal(t, []string{
		"Contains at least one uppercase letter",
		"Contains at least one special character",
	}, ve.Reasons)
	require.Equal(t, "Ada Lovelace", ve.Name)
	require.Equal(t, "ada@example.com", ve.Email)
}

func TestRegister_OverlongPasswordIsValidationFault(t *testing.T) {
	users := newFakeUsers()
	svc := NewService(users, &fakeSessions{}, fastPassword())

	long := "Aa1!" + strings.Repeat("x", 76)
	in := validInput()
	in.Password, in.Confirm = long, long
	_, err := svc.Register(context.Background(), in)

	require.True(t, IsValidation(err), "got %v", err)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	require.Equal(t, MsgWeakPassword, ve.Message)
	require.Equal(t, []string{"Is at most 72 bytes long"}, ve.Reasons)
	require.Empty(t, users.byMail)
}

func TestRegister_IllegalNameIsSanitizedForRedisplay(t *testing.T) {
	svc := NewService(newFakeUsers(), &fakeSessions{}, fastPassword())

	in := validInput()
	in.Name = "Ada<script>-L."
	_, err := svc.Register(context.Background(), in)

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	require.Equal(t, "Adascript-L.", ve.Name)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	users := newFakeUsers()
	svc := NewService(users, &fakeSessions{}, fastPassword())

	_, err := svc.Register(context.Background(), validInput())
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), validInput())
	require.ErrorIs(t, err, ErrAlreadyRegistered)
	require.Len(t, users.byMail, 1)
}

func TestRegister_RaceCaughtByConstraint(t *testing.T) {
	users := newFakeUsers()
	sess := &fakeSessions{}
	svc := NewService(users, sess, fastPassword())

	_, err := svc.Register(context.Background(), validInput())
	require.NoError(t, err)

	users.hideExisting = true
	_, err = svc.Register(context.Background(), validInput())
	require.ErrorIs(t, err, ErrAlreadyRegistered)
	require.Len(t, sess.created, 1)
}

func TestRegister_SessionFaultPropagates(t *testing.T) {
	boom := errors.New("session pool down")
	svc := NewService(newFakeUsers(), &fakeSessions{err: boom}, fastPassword())

	_, err := svc.Register(context.Background(), validInput())
	require.ErrorIs(t, err, boom)
	require.False(t, IsValidation(err))
}

func TestLogin_Succeeds(t *testing.T) {
	users := newFakeUsers()
	sess := &fakeSessions{}
	reg := prometheus.NewRegistry()
	svc := NewService(users, sess, fastPassword(), WithMetrics(NewMetrics(reg)))

	_, err := svc.Register(context.Background(), validInput())
	require.NoError(t, err)

	res, err := svc.Login(context.Background(), "ada@example.com", "Str0ng!pw")
	require.NoError(t, err)
	require.Equal(t, int64(1), res.UserID)
	require.Equal(t, "Ada Lovelace", res.Name)
	require.Len(t, sess.created, 2)

	mfs, err := reg.Gather()
	require.NoError(t, err)
	require.NotEmpty(t, mfs)
}

func TestLogin_FailuresAreIdenticalAndSlow(t *testing.T) {
	users := newFakeUsers()
	svc := NewService(users, &fakeSessions{}, fastPassword())

	_, err := svc.Register(context.Background(), validInput())
	require.NoError(t, err)

	start := time.Now()
	_, errWrong := svc.Login(context.Background(), "ada@example.com", "Wr0ng!pw")
	wrongTook := time.Since(start)

	start = time.Now()
	_, errMissing := svc.Login(context.Background(), "nobody@example.com", "Str0ng!pw")
	missingTook := time.Since(start)

	require.ErrorIs(t, errWrong, ErrInvalidCredentials)
	require.ErrorIs(t, errMissing, ErrInvalidCredentials)
	require.Equal(t, errWrong.Error(), errMissing.Error())
	require.GreaterOrEqual(t, wrongTook, DefaultLoginFloor)
	require.GreaterOrEqual(t, missingTook, DefaultLoginFloor)
}

func TestLogin_ConfigurableFloor(t *testing.T) {
	svc := NewService(newFakeUsers(), &fakeSessions{}, fastPassword(), WithLoginFloor(50*time.Millisecond))

	start := time.Now()
	_, err := svc.Login(context.Background(), "nobody@example.com", "Str0ng!pw")
	require.ErrorIs(t, err, ErrInvalidCredentials)
	require.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)
	require.Less(t, time.Since(start), DefaultLoginFloor)
}

func TestLogin_CanceledContextStopsWaiting(t *testing.T) {
	svc := NewService(newFakeUsers(), &fakeSessions{}, fastPassword(), WithLoginFloor(time.Hour))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := svc.Login(ctx, "nobody@example.com", "Str0ng!pw")
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestLogin_ValidationFaults(t *testing.T) {
	svc := NewService(newFakeUsers(), &fakeSessions{}, fastPassword())

	_, err := svc.Login(context.Background(), "", "x")
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	require.Equal(t, MsgFillAllLogin, ve.Message)

	_, err = svc.Login(context.Background(), "not-an-email", "x")
	require.ErrorAs(t, err, &ve)
	require.Equal(t, MsgInvalidLoginEmail, ve.Message)
}

func TestLogin_StoreFaultPropagates(t *testing.T) {
	users := newFakeUsers()
	boom := errors.New("readonly pool closed")
	users.lookupErr = boom
	svc := NewService(users, &fakeSessions{}, fastPassword())

	_, err := svc.Login(context.Background(), "ada@example.com", "Str0ng!pw")
	require.ErrorIs(t, err, boom)
	require.NotErrorIs(t, err, ErrInvalidCredentials)
}
