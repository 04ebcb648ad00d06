package seed

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ishahzaibhaider/wasatah-poc-sub000/internal/domain"
)

func TestBundledDataset(t *testing.T) {
	ds, err := Bundled()
	if err != nil {
		t.Fatalf("bundled: %v", err)
	}
	if len(ds.Users) != 3 || len(ds.Properties) != 3 || len(ds.Offers) != 1 || len(ds.Events) != 5 {
		t.Fatalf("unexpected bundled sizes: %d users, %d properties, %d offers, %d events",
			len(ds.Users), len(ds.Properties), len(ds.Offers), len(ds.Events))
	}
	for _, u := range ds.Users {
		if u.Password == "" {
			t.Fatalf("user %s has no demo password", u.ID)
		}
		if !u.Role.Valid() {
			t.Fatalf("user %s has invalid role %q", u.ID, u.Role)
		}
	}
	for _, p := range ds.Properties {
		if domain.OpenHops(p.OwnershipHistory) > 1 {
			t.Fatalf("property %s has more than one open hop", p.ID)
		}
	}
	for _, ev := range ds.Events {
		if err := ev.Validate(); err != nil {
			t.Fatalf("bundled event invalid: %v", err)
		}
	}
}

func TestLoadDirTreatsMissingFilesAsEmpty(t *testing.T) {
	dir := t.TempDir()
	users := `[{"id":"u9","name":"Test","email":"t@example.com","role":"buyer","password":"pw"}]`
	if err := os.WriteFile(filepath.Join(dir, UsersFile), []byte(users), 0o644); err != nil {
		t.Fatalf("write users: %v", err)
	}

	ds, err := LoadDir(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(ds.Users) != 1 || ds.Users[0].Password != "pw" || ds.Users[0].Email != "t@example.com" {
		t.Fatalf("unexpected users %+v", ds.Users)
	}
	if len(ds.Properties) != 0 || len(ds.Offers) != 0 || len(ds.Events) != 0 {
		t.Fatal("expected missing files to load as empty")
	}
	if ds.Empty() {
		t.Fatal("dataset with users must not be empty")
	}
}

func TestLoadDirRejectsMalformedFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, OffersFile), []byte(`{`), 0o644); err != nil {
		t.Fatalf("write offers: %v", err)
	}
	if _, err := LoadDir(dir); err == nil {
		t.Fatal("expected decode error")
	}
}
