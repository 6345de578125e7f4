package auth

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/pquerna/otp/totp"

	"github.com/paintsnap/server/internal/apperr"
	"github.com/paintsnap/server/internal/blob"
	"github.com/paintsnap/server/internal/config"
	"github.com/paintsnap/server/internal/db"
	"github.com/paintsnap/server/internal/security"
	"github.com/paintsnap/server/internal/store"
)

type fakeVerifier struct {
	profile store.FederatedProfile
	err     error
}

func (f *fakeVerifier) Verify(context.Context, string) (store.FederatedProfile, error) {
	return f.profile, f.err
}

func newTestService(t *testing.T, verifier TokenVerifier) (*Service, *store.Store) {
	t.Helper()
	dsn := "file:" + filepath.Join(t.TempDir(), "paintsnap-test.db")
	conn, err := db.Open(dsn)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if errMigrate := db.Migrate(conn); errMigrate != nil {
		t.Fatalf("migrate: %v", errMigrate)
	}
	st := store.New(conn, blob.NewMemoryStore())
	jwtCfg := config.JWTConfig{Secret: "test-secret", Expiry: time.Hour}
	return NewService(st, jwtCfg, verifier), st
}

func TestRegisterAndSession(t *testing.T) {
	svc, _ := newTestService(t, nil)
	ctx := context.Background()

	result, err := svc.Register(ctx, "alice", "alice@example.com", "long-enough-password", "Alice")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if result.Token == "" || result.TOTPRequired {
		t.Fatalf("expected immediate session, got %+v", result)
	}

	user, err := svc.CurrentUser(ctx, result.Token)
	if err != nil {
		t.Fatalf("current user: %v", err)
	}
	if user.ID != result.User.ID {
		t.Fatalf("session resolved to wrong user")
	}
}

func TestRegister_ShortPassword(t *testing.T) {
	svc, _ := newTestService(t, nil)

	_, err := svc.Register(context.Background(), "alice", "alice@example.com", "short", "Alice")
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestLoginLocal_GenericFailureMessage(t *testing.T) {
	svc, _ := newTestService(t, nil)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "alice", "alice@example.com", "long-enough-password", "Alice"); err != nil {
		t.Fatalf("register: %v", err)
	}

	_, errWrongPassword := svc.LoginLocal(ctx, "alice", "wrong-password")
	_, errUnknownUser := svc.LoginLocal(ctx, "nobody", "wrong-password")

	for _, err := range []error{errWrongPassword, errUnknownUser} {
		if !apperr.Is(err, apperr.KindUnauthorized) {
			t.Fatalf("expected unauthorized, got %v", err)
		}
	}
	// Same message either way; login failures must not reveal whether the
	// account exists.
	if errWrongPassword.Error() != errUnknownUser.Error() {
		t.Fatalf("messages differ: %q vs %q", errWrongPassword.Error(), errUnknownUser.Error())
	}
}

func TestLoginLocal_TOTPFlow(t *testing.T) {
	svc, st := newTestService(t, nil)
	ctx := context.Background()

	registered, err := svc.Register(ctx, "alice", "alice@example.com", "long-enough-password", "Alice")
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	secret, _, err := security.GenerateTOTPSecret("alice")
	if err != nil {
		t.Fatalf("generate secret: %v", err)
	}
	if errSet := st.SetTOTPSecret(ctx, registered.User.ID, secret); errSet != nil {
		t.Fatalf("set secret: %v", errSet)
	}

	pending, err := svc.LoginLocal(ctx, "alice", "long-enough-password")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if !pending.TOTPRequired {
		t.Fatalf("expected totp-gated login")
	}
	// A pending token is not a session.
	if _, errSession := svc.CurrentUser(ctx, pending.Token); !apperr.Is(errSession, apperr.KindUnauthorized) {
		t.Fatalf("pending token must not open a session, got %v", errSession)
	}

	if _, errBadCode := svc.CompleteTOTP(ctx, pending.Token, "000000"); !apperr.Is(errBadCode, apperr.KindUnauthorized) {
		t.Fatalf("expected unauthorized for wrong code, got %v", errBadCode)
	}

	code, err := totp.GenerateCode(secret, time.Now())
	if err != nil {
		t.Fatalf("generate code: %v", err)
	}
	session, err := svc.CompleteTOTP(ctx, pending.Token, code)
	if err != nil {
		t.Fatalf("complete totp: %v", err)
	}
	if _, errSession := svc.CurrentUser(ctx, session.Token); errSession != nil {
		t.Fatalf("session after totp: %v", errSession)
	}
}

func TestVerifyFederated_Idempotent(t *testing.T) {
	verifier := &fakeVerifier{profile: store.FederatedProfile{
		SubjectID:   "provider|42",
		Email:       "fed@example.com",
		DisplayName: "Fed User",
	}}
	svc, _ := newTestService(t, verifier)
	ctx := context.Background()

	first, err := svc.VerifyFederated(ctx, "raw-token")
	if err != nil {
		t.Fatalf("first verify: %v", err)
	}
	second, err := svc.VerifyFederated(ctx, "raw-token")
	if err != nil {
		t.Fatalf("second verify: %v", err)
	}
	if first.User.ID != second.User.ID {
		t.Fatalf("expected one canonical user, got %d and %d", first.User.ID, second.User.ID)
	}

	if _, errSession := svc.CurrentUser(ctx, second.Token); errSession != nil {
		t.Fatalf("federated session: %v", errSession)
	}
}

func TestVerifyFederated_ProviderRejection(t *testing.T) {
	verifier := &fakeVerifier{err: errors.New("token expired")}
	svc, _ := newTestService(t, verifier)

	_, err := svc.VerifyFederated(context.Background(), "raw-token")
	if !apperr.Is(err, apperr.KindUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestVerifyFederated_Disabled(t *testing.T) {
	svc, _ := newTestService(t, nil)

	_, err := svc.VerifyFederated(context.Background(), "raw-token")
	if !apperr.Is(err, apperr.KindUnauthorized) {
		t.Fatalf("expected unauthorized when not configured, got %v", err)
	}
}
