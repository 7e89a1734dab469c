package dialog_test

import (
	"context"
	"errors"
	"testing"

	"github.com/atelierbook/atelier-backend/internal/dialog"
)

func TestMemoryStore_GetMissing(t *testing.T) {
	store := dialog.NewMemoryStore()

	_, err := store.Get(context.Background(), "unknown")
	if !errors.Is(err, dialog.ErrNoState) {
		t.Fatalf("Get(missing) err = %v, want ErrNoState", err)
	}
}

func TestMemoryStore_SetGetDelete(t *testing.T) {
	store := dialog.NewMemoryStore()
	ctx := context.Background()

	state := &dialog.State{
		Mode:        dialog.ModeCollecting,
		ClientName:  "вася",
		ProductName: "куртка",
	}
	if err := store.Set(ctx, "s1", state); err != nil {
		t.Fatalf("Set: %v", err)
	}

	got, err := store.Get(ctx, "s1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Mode != dialog.ModeCollecting || got.ProductName != "куртка" || got.ClientName != "вася" {
		t.Errorf("Get = %+v", got)
	}

	// Sessions are independent
	if _, err := store.Get(ctx, "s2"); !errors.Is(err, dialog.ErrNoState) {
		t.Errorf("Get(other session) err = %v, want ErrNoState", err)
	}

	if err := store.Delete(ctx, "s1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := store.Get(ctx, "s1"); !errors.Is(err, dialog.ErrNoState) {
		t.Errorf("Get after delete err = %v, want ErrNoState", err)
	}

	// Deleting a missing state is not an error
	if err := store.Delete(ctx, "s1"); err != nil {
		t.Errorf("Delete(missing): %v", err)
	}
}

func TestMemoryStore_GetReturnsCopy(t *testing.T) {
	store := dialog.NewMemoryStore()
	ctx := context.Background()

	if err := store.Set(ctx, "s1", &dialog.State{Mode: dialog.ModeCollecting, Text: "талия 90"}); err != nil {
		t.Fatalf("Set: %v", err)
	}

	first, _ := store.Get(ctx, "s1")
	first.Append("бедра 95")

	second, _ := store.Get(ctx, "s1")
	if second.Text != "талия 90" {
		t.Errorf("stored state mutated through a returned copy: %q", second.Text)
	}
}

func TestState_Append(t *testing.T) {
	var s dialog.State

	s.Append("талия 90, бедра 95")
	if s.Text != "талия 90, бедра 95" {
		t.Errorf("Text = %q", s.Text)
	}

	s.Append("длина 70")
	if s.Text != "талия 90, бедра 95, длина 70" {
		t.Errorf("Text = %q", s.Text)
	}
}
