package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/paintsnap/server/internal/blob"
	"github.com/paintsnap/server/internal/db"
	"github.com/paintsnap/server/internal/models"
)

func newTestStore(t *testing.T) (*Store, *blob.MemoryStore) {
	t.Helper()
	dsn := "file:" + filepath.Join(t.TempDir(), "paintsnap-test.db")
	conn, err := db.Open(dsn)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if errMigrate := db.Migrate(conn); errMigrate != nil {
		t.Fatalf("migrate: %v", errMigrate)
	}
	blobs := blob.NewMemoryStore()
	return New(conn, blobs), blobs
}

func newTestUser(t *testing.T, s *Store, username string) *models.User {
	t.Helper()
	user, err := s.CreateLocalUser(context.Background(), username, username+"@example.com", "hashed-password", username)
	if err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	return user
}

func TestCreateLocalUser_DuplicateUsername(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	if _, err := s.CreateLocalUser(ctx, "alice", "alice@example.com", "hash", "Alice"); err != nil {
		t.Fatalf("first create: %v", err)
	}
	if _, err := s.CreateLocalUser(ctx, "alice", "other@example.com", "hash", "Alice Again"); err == nil {
		t.Fatalf("expected duplicate username error")
	}
}

func TestCreateLocalUser_BootstrapsDefaultProject(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	user := newTestUser(t, s, "alice")
	projects, err := s.ListProjects(ctx, user.ID)
	if err != nil {
		t.Fatalf("list projects: %v", err)
	}
	if len(projects) != 1 {
		t.Fatalf("expected 1 project, got %d", len(projects))
	}
	if !projects[0].IsDefault {
		t.Fatalf("expected default project")
	}
}

func TestEnsureFederatedUser_Idempotent(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	profile := FederatedProfile{
		SubjectID:   "provider|12345",
		Email:       "fed@example.com",
		DisplayName: "Fed User",
	}

	first, err := s.EnsureFederatedUser(ctx, profile)
	if err != nil {
		t.Fatalf("first ensure: %v", err)
	}
	second, err := s.EnsureFederatedUser(ctx, profile)
	if err != nil {
		t.Fatalf("second ensure: %v", err)
	}
	if first.ID != second.ID {
		t.Fatalf("expected same user, got %d and %d", first.ID, second.ID)
	}

	var count int64
	if errCount := s.DB().Model(&models.User{}).Count(&count).Error; errCount != nil {
		t.Fatalf("count users: %v", errCount)
	}
	if count != 1 {
		t.Fatalf("expected 1 user row, got %d", count)
	}
}

func TestGetUserByLogin_UsernameOrEmail(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	created := newTestUser(t, s, "alice")

	byName, err := s.GetUserByLogin(ctx, "alice")
	if err != nil {
		t.Fatalf("lookup by username: %v", err)
	}
	byEmail, err := s.GetUserByLogin(ctx, "alice@example.com")
	if err != nil {
		t.Fatalf("lookup by email: %v", err)
	}
	if byName.ID != created.ID || byEmail.ID != created.ID {
		t.Fatalf("lookups resolved to different users")
	}
}
