package providers

import (
	"errors"
	"testing"

	"nathanbeddoewebdev/exosync/internal/services/auth"
)

func TestLookup(t *testing.T) {
	spec := Lookup("  Exoscale ")
	if spec == nil {
		t.Fatal("expected exoscale spec")
	}
	if got := spec.KeychainKey(spec.Keys[0]); got != "exoscale-apikey" {
		t.Errorf("KeychainKey = %q, want %q", got, "exoscale-apikey")
	}
	if Lookup("hetzner") != nil {
		t.Error("expected nil for unknown provider")
	}
}

func TestResolve_EnvWins(t *testing.T) {
	spec := Lookup("exoscale")
	store := auth.NewMockStore()
	_ = store.SetToken("exoscale-apikey", "from-keyring")
	t.Setenv("EXOSCALE_API_KEY", "from-env")

	v, src, err := spec.Resolve(store, spec.Keys[0])
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	if v != "from-env" || src != SourceEnv {
		t.Errorf("Resolve = %q, %q; want from-env, env", v, src)
	}
}

func TestResolve_FallsBackToKeyring(t *testing.T) {
	spec := Lookup("exoscale")
	store := auth.NewMockStore()
	_ = store.SetToken("exoscale-apisecret", "s3cr3t")
	t.Setenv("EXOSCALE_API_SECRET", "")

	v, src, err := spec.Resolve(store, spec.Keys[1])
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	if v != "s3cr3t" || src != SourceKeyring {
		t.Errorf("Resolve = %q, %q; want s3cr3t, keyring", v, src)
	}
}

func TestResolve_Missing(t *testing.T) {
	spec := Lookup("exoscale")
	t.Setenv("EXOSCALE_API_KEY", "")

	_, _, err := spec.Resolve(auth.NewMockStore(), spec.Keys[0])
	if !errors.Is(err, auth.ErrTokenNotFound) {
		t.Fatalf("expected ErrTokenNotFound, got %v", err)
	}
}
