package quota

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/paintsnap/server/internal/apperr"
	"github.com/paintsnap/server/internal/blob"
	"github.com/paintsnap/server/internal/db"
	"github.com/paintsnap/server/internal/models"
	"github.com/paintsnap/server/internal/store"
)

func newTestEnforcer(t *testing.T) (*Enforcer, *store.Store) {
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
	return New(st), st
}

func TestCheckAreaCreate_BasicTierLimit(t *testing.T) {
	enforcer, st := newTestEnforcer(t)
	ctx := context.Background()

	created, err := st.CreateLocalUser(ctx, "alice", "alice@example.com", "hash", "Alice")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	user, err := st.GetUserByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("load user: %v", err)
	}
	if user.Plan == nil || user.Plan.Tier != models.TierBasic {
		t.Fatalf("expected basic plan on new user")
	}

	for i := 0; i < user.Plan.MaxAreas; i++ {
		if errCheck := enforcer.CheckAreaCreate(ctx, user); errCheck != nil {
			t.Fatalf("check %d under limit: %v", i, errCheck)
		}
		if _, errCreate := st.CreateArea(ctx, user.ID, 0, "Area "+strings.Repeat("I", i+1)); errCreate != nil {
			t.Fatalf("create area %d: %v", i, errCreate)
		}
	}

	errCheck := enforcer.CheckAreaCreate(ctx, user)
	if !apperr.Is(errCheck, apperr.KindQuotaExceeded) {
		t.Fatalf("expected quota exceeded at limit, got %v", errCheck)
	}
	if !strings.Contains(errCheck.Error(), "upgrade") {
		t.Fatalf("quota error should suggest upgrading, got %q", errCheck.Error())
	}
}

func TestCheckAreaCreate_PremiumUnlimited(t *testing.T) {
	enforcer, st := newTestEnforcer(t)
	ctx := context.Background()

	created, err := st.CreateLocalUser(ctx, "alice", "alice@example.com", "hash", "Alice")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	if errTier := st.SetUserTier(ctx, created.ID, models.TierPremium); errTier != nil {
		t.Fatalf("set tier: %v", errTier)
	}
	user, err := st.GetUserByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("load user: %v", err)
	}

	for i := 0; i < 5; i++ {
		if errCheck := enforcer.CheckAreaCreate(ctx, user); errCheck != nil {
			t.Fatalf("premium check %d: %v", i, errCheck)
		}
		if _, errCreate := st.CreateArea(ctx, user.ID, 0, "Area "+strings.Repeat("I", i+1)); errCreate != nil {
			t.Fatalf("create area %d: %v", i, errCreate)
		}
	}
}

func TestCheckPhotoCreate_PerAreaLimit(t *testing.T) {
	enforcer, st := newTestEnforcer(t)
	ctx := context.Background()

	created, err := st.CreateLocalUser(ctx, "alice", "alice@example.com", "hash", "Alice")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	user, err := st.GetUserByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("load user: %v", err)
	}

	area, err := st.CreateArea(ctx, user.ID, 0, "Kitchen")
	if err != nil {
		t.Fatalf("create area: %v", err)
	}
	other, err := st.CreateArea(ctx, user.ID, 0, "Hall")
	if err != nil {
		t.Fatalf("create second area: %v", err)
	}

	for i := 0; i < user.Plan.MaxPhotosPerArea; i++ {
		if errCheck := enforcer.CheckPhotoCreate(ctx, user, area.ID); errCheck != nil {
			t.Fatalf("check %d under limit: %v", i, errCheck)
		}
		if _, errCreate := st.CreatePhoto(ctx, user.ID, store.PhotoUpload{
			AreaID:      area.ID,
			Name:        "photo",
			ContentType: "image/jpeg",
			Body:        strings.NewReader("bytes"),
		}); errCreate != nil {
			t.Fatalf("upload %d: %v", i, errCreate)
		}
	}

	if errCheck := enforcer.CheckPhotoCreate(ctx, user, area.ID); !apperr.Is(errCheck, apperr.KindQuotaExceeded) {
		t.Fatalf("expected quota exceeded in full area, got %v", errCheck)
	}
	// The limit is per area, not global.
	if errCheck := enforcer.CheckPhotoCreate(ctx, user, other.ID); errCheck != nil {
		t.Fatalf("empty area should still accept photos: %v", errCheck)
	}
}
