package keyringstore

import (
	"context"
	"errors"
	"testing"

	"github.com/zalando/go-keyring"

	"github.com/jdelaire/totpkit/core"
)

func TestMain(m *testing.M) {
	keyring.MockInit()
	m.Run()
}

func TestSaveAndLoad(t *testing.T) {
	store := New("totpkit-test")
	ctx := context.Background()

	err := store.Save(ctx, "alice", "GEZDGNBVGY3TQOJQ", 755224, []int{12345678, 87654321})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	secret, err := store.SecretKey(ctx, "alice")
	if err != nil {
		t.Fatalf("SecretKey: %v", err)
	}
	if secret != "GEZDGNBVGY3TQOJQ" {
		t.Errorf("SecretKey = %q, want %q", secret, "GEZDGNBVGY3TQOJQ")
	}
}

func TestSaveReplaces(t *testing.T) {
	store := New("totpkit-test")
	ctx := context.Background()

	if err := store.Save(ctx, "bob", "FIRST234", 1, nil); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := store.Save(ctx, "bob", "SECOND34", 2, nil); err != nil {
		t.Fatalf("Save: %v", err)
	}

	secret, err := store.SecretKey(ctx, "bob")
	if err != nil {
		t.Fatalf("SecretKey: %v", err)
	}
	if secret != "SECOND34" {
		t.Errorf("SecretKey = %q, want %q", secret, "SECOND34")
	}
}

func TestUnknownUser(t *testing.T) {
	store := New("totpkit-test")

	_, err := store.SecretKey(context.Background(), "nobody")
	if !errors.Is(err, core.ErrUserNotFound) {
		t.Errorf("SecretKey = %v, want core.ErrUserNotFound", err)
	}
}

func TestDefaultServiceName(t *testing.T) {
	store := New("")
	if store.service != "totpkit" {
		t.Errorf("service = %q, want %q", store.service, "totpkit")
	}
}

func TestImplementsCredentialStore(t *testing.T) {
	var _ core.CredentialStore = New("totpkit-test")
}
