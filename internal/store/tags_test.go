package store

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/paintsnap/server/internal/apperr"
)

func TestCreateTag_PositionBounds(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	alice := newTestUser(t, s, "alice")

	area, err := s.CreateArea(ctx, alice.ID, 0, "Kitchen")
	if err != nil {
		t.Fatalf("create area: %v", err)
	}
	photo := uploadTestPhoto(t, s, alice.ID, area.ID, "wall")

	cases := []struct {
		x, y float64
		ok   bool
	}{
		{0, 0, true},
		{100, 100, true},
		{50, 50, true},
		{-0.1, 50, false},
		{50, 100.1, false},
	}
	for _, tc := range cases {
		_, errCreate := s.CreateTag(ctx, alice.ID, TagInput{
			PhotoID:     photo.ID,
			Description: "Benjamin Moore White Dove",
			PositionX:   tc.x,
			PositionY:   tc.y,
		})
		if tc.ok && errCreate != nil {
			t.Fatalf("position (%v,%v) should be accepted: %v", tc.x, tc.y, errCreate)
		}
		if !tc.ok && !apperr.Is(errCreate, apperr.KindValidation) {
			t.Fatalf("position (%v,%v) should be rejected, got %v", tc.x, tc.y, errCreate)
		}
	}
}

func TestCreateTag_TouchesPhoto(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	alice := newTestUser(t, s, "alice")

	area, err := s.CreateArea(ctx, alice.ID, 0, "Kitchen")
	if err != nil {
		t.Fatalf("create area: %v", err)
	}
	photo := uploadTestPhoto(t, s, alice.ID, area.ID, "wall")
	before := photo.UpdatedAt

	time.Sleep(10 * time.Millisecond)
	if _, errCreate := s.CreateTag(ctx, alice.ID, TagInput{
		PhotoID:     photo.ID,
		Description: "Eggshell finish",
		PositionX:   10,
		PositionY:   20,
	}); errCreate != nil {
		t.Fatalf("create tag: %v", errCreate)
	}

	refreshed, errGet := s.GetPhoto(ctx, photo.ID, alice.ID)
	if errGet != nil {
		t.Fatalf("get photo: %v", errGet)
	}
	if !refreshed.UpdatedAt.After(before) {
		t.Fatalf("expected photo last-modified to advance after tagging")
	}
}

func TestCreateTag_WithImage(t *testing.T) {
	s, blobs := newTestStore(t)
	ctx := context.Background()
	alice := newTestUser(t, s, "alice")

	area, err := s.CreateArea(ctx, alice.ID, 0, "Kitchen")
	if err != nil {
		t.Fatalf("create area: %v", err)
	}
	photo := uploadTestPhoto(t, s, alice.ID, area.ID, "wall")
	blobsBefore := blobs.Len()

	tag, errCreate := s.CreateTag(ctx, alice.ID, TagInput{
		PhotoID:          photo.ID,
		Description:      "Swatch",
		PositionX:        5,
		PositionY:        5,
		ImageBody:        strings.NewReader("swatch-bytes"),
		ImageContentType: "image/png",
		ImageSize:        12,
	})
	if errCreate != nil {
		t.Fatalf("create tag: %v", errCreate)
	}
	if tag.ImageStorageKey == "" {
		t.Fatalf("expected image storage key on tag")
	}
	if blobs.Len() != blobsBefore+1 {
		t.Fatalf("expected one extra blob, got %d", blobs.Len()-blobsBefore)
	}

	removed, errDelete := s.DeleteTag(ctx, tag.ID, alice.ID)
	if errDelete != nil || !removed {
		t.Fatalf("delete tag: removed=%v err=%v", removed, errDelete)
	}
	if blobs.Len() != blobsBefore {
		t.Fatalf("expected tag image blob released, got %d blobs", blobs.Len())
	}
}

func TestDeleteTag_Idempotent(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	alice := newTestUser(t, s, "alice")
	bob := newTestUser(t, s, "bob")

	area, err := s.CreateArea(ctx, alice.ID, 0, "Kitchen")
	if err != nil {
		t.Fatalf("create area: %v", err)
	}
	photo := uploadTestPhoto(t, s, alice.ID, area.ID, "wall")

	tag, errCreate := s.CreateTag(ctx, alice.ID, TagInput{
		PhotoID:     photo.ID,
		Description: "Trim color",
		PositionX:   1,
		PositionY:   1,
	})
	if errCreate != nil {
		t.Fatalf("create tag: %v", errCreate)
	}

	if _, errCross := s.DeleteTag(ctx, tag.ID, bob.ID); !apperr.Is(errCross, apperr.KindForbidden) {
		t.Fatalf("expected forbidden for other owner, got %v", errCross)
	}

	removed, errDelete := s.DeleteTag(ctx, tag.ID, alice.ID)
	if errDelete != nil || !removed {
		t.Fatalf("first delete: removed=%v err=%v", removed, errDelete)
	}
	removed, errDelete = s.DeleteTag(ctx, tag.ID, alice.ID)
	if errDelete != nil {
		t.Fatalf("second delete: %v", errDelete)
	}
	if removed {
		t.Fatalf("second delete must be a no-op")
	}
}

func TestUpdateTag_PositionRevalidated(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	alice := newTestUser(t, s, "alice")

	area, err := s.CreateArea(ctx, alice.ID, 0, "Kitchen")
	if err != nil {
		t.Fatalf("create area: %v", err)
	}
	photo := uploadTestPhoto(t, s, alice.ID, area.ID, "wall")

	tag, errCreate := s.CreateTag(ctx, alice.ID, TagInput{
		PhotoID:     photo.ID,
		Description: "Accent",
		PositionX:   50,
		PositionY:   50,
	})
	if errCreate != nil {
		t.Fatalf("create tag: %v", errCreate)
	}

	bad := 250.0
	if _, errUpdate := s.UpdateTag(ctx, tag.ID, alice.ID, TagPatch{PositionX: &bad}); !apperr.Is(errUpdate, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", errUpdate)
	}

	good := 75.0
	updated, errUpdate := s.UpdateTag(ctx, tag.ID, alice.ID, TagPatch{PositionX: &good})
	if errUpdate != nil {
		t.Fatalf("update tag: %v", errUpdate)
	}
	if updated.PositionX != 75 {
		t.Fatalf("expected position_x=75, got %v", updated.PositionX)
	}
}

func TestListTagsByPhoto_CreationOrder(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	alice := newTestUser(t, s, "alice")

	area, err := s.CreateArea(ctx, alice.ID, 0, "Kitchen")
	if err != nil {
		t.Fatalf("create area: %v", err)
	}
	photo := uploadTestPhoto(t, s, alice.ID, area.ID, "wall")

	for _, description := range []string{"first", "second", "third"} {
		if _, errCreate := s.CreateTag(ctx, alice.ID, TagInput{
			PhotoID:     photo.ID,
			Description: description,
			PositionX:   10,
			PositionY:   10,
		}); errCreate != nil {
			t.Fatalf("create tag %s: %v", description, errCreate)
		}
	}

	tags, errList := s.ListTagsByPhoto(ctx, photo.ID, alice.ID)
	if errList != nil {
		t.Fatalf("list tags: %v", errList)
	}
	want := []string{"first", "second", "third"}
	if len(tags) != len(want) {
		t.Fatalf("expected %d tags, got %d", len(want), len(tags))
	}
	for i, description := range want {
		if tags[i].Description != description {
			t.Fatalf("expected tags[%d]=%s, got %s", i, description, tags[i].Description)
		}
	}
}
