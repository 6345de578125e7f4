package store

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/paintsnap/server/internal/apperr"
	"github.com/paintsnap/server/internal/models"
)

func uploadTestPhoto(t *testing.T, s *Store, ownerID, areaID uint64, name string) *models.Photo {
	t.Helper()
	body := strings.NewReader("fake-image-bytes-" + name)
	photo, err := s.CreatePhoto(context.Background(), ownerID, PhotoUpload{
		AreaID:      areaID,
		Name:        name,
		Filename:    name + ".jpg",
		ContentType: "image/jpeg",
		Size:        int64(body.Len()),
		Body:        body,
	})
	if err != nil {
		t.Fatalf("upload photo %s: %v", name, err)
	}
	return photo
}

func TestCreatePhoto_StoresBlob(t *testing.T) {
	s, blobs := newTestStore(t)
	ctx := context.Background()
	alice := newTestUser(t, s, "alice")

	area, err := s.CreateArea(ctx, alice.ID, 0, "Kitchen")
	if err != nil {
		t.Fatalf("create area: %v", err)
	}

	photo := uploadTestPhoto(t, s, alice.ID, area.ID, "north-wall")
	if photo.StorageKey == "" {
		t.Fatalf("expected storage key on photo")
	}
	if blobs.Len() != 1 {
		t.Fatalf("expected 1 stored blob, got %d", blobs.Len())
	}

	body, contentType, errOpen := s.OpenPhotoImage(ctx, photo.ID)
	if errOpen != nil {
		t.Fatalf("open image: %v", errOpen)
	}
	defer body.Close()
	if contentType != "image/jpeg" {
		t.Fatalf("expected image/jpeg, got %s", contentType)
	}
	data, errRead := io.ReadAll(body)
	if errRead != nil {
		t.Fatalf("read image: %v", errRead)
	}
	if string(data) != "fake-image-bytes-north-wall" {
		t.Fatalf("unexpected image bytes: %q", data)
	}
}

func TestCreatePhoto_OtherUsersArea(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	alice := newTestUser(t, s, "alice")
	bob := newTestUser(t, s, "bob")

	area, err := s.CreateArea(ctx, alice.ID, 0, "Kitchen")
	if err != nil {
		t.Fatalf("create area: %v", err)
	}

	_, err = s.CreatePhoto(ctx, bob.ID, PhotoUpload{
		AreaID:      area.ID,
		Name:        "sneaky",
		ContentType: "image/jpeg",
		Body:        strings.NewReader("x"),
	})
	if !apperr.Is(err, apperr.KindForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestMovePhoto_SameOwnerOnly(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	alice := newTestUser(t, s, "alice")
	bob := newTestUser(t, s, "bob")

	kitchen, err := s.CreateArea(ctx, alice.ID, 0, "Kitchen")
	if err != nil {
		t.Fatalf("create kitchen: %v", err)
	}
	hall, err := s.CreateArea(ctx, alice.ID, 0, "Hall")
	if err != nil {
		t.Fatalf("create hall: %v", err)
	}
	bobRoom, err := s.CreateArea(ctx, bob.ID, 0, "Bob Room")
	if err != nil {
		t.Fatalf("create bob area: %v", err)
	}

	photo := uploadTestPhoto(t, s, alice.ID, kitchen.ID, "wall")

	moved, errMove := s.MovePhoto(ctx, photo.ID, alice.ID, hall.ID)
	if errMove != nil {
		t.Fatalf("move photo: %v", errMove)
	}
	if moved.AreaID != hall.ID {
		t.Fatalf("expected photo in area %d, got %d", hall.ID, moved.AreaID)
	}
	if moved.UserID != alice.ID {
		t.Fatalf("move must not change the owner")
	}

	if _, errCross := s.MovePhoto(ctx, photo.ID, alice.ID, bobRoom.ID); !apperr.Is(errCross, apperr.KindForbidden) {
		t.Fatalf("expected forbidden moving into another user's area, got %v", errCross)
	}
}

func TestListPhotosByOwner_ScopedToOwner(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	alice := newTestUser(t, s, "alice")
	bob := newTestUser(t, s, "bob")

	aliceArea, err := s.CreateArea(ctx, alice.ID, 0, "Kitchen")
	if err != nil {
		t.Fatalf("create area: %v", err)
	}
	bobArea, err := s.CreateArea(ctx, bob.ID, 0, "Bob Room")
	if err != nil {
		t.Fatalf("create bob area: %v", err)
	}

	uploadTestPhoto(t, s, alice.ID, aliceArea.ID, "one")
	uploadTestPhoto(t, s, alice.ID, aliceArea.ID, "two")
	uploadTestPhoto(t, s, bob.ID, bobArea.ID, "bob-photo")

	photos, errList := s.ListPhotosByOwner(ctx, alice.ID)
	if errList != nil {
		t.Fatalf("list photos: %v", errList)
	}
	if len(photos) != 2 {
		t.Fatalf("expected 2 photos, got %d", len(photos))
	}
	for _, p := range photos {
		if p.UserID != alice.ID {
			t.Fatalf("listing leaked photo of user %d", p.UserID)
		}
	}
}
