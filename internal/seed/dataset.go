package seed

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/ishahzaibhaider/wasatah-poc-sub000/internal/domain"
	"github.com/ishahzaibhaider/wasatah-poc-sub000/internal/ledger"
)

// File names of a dataset directory.
const (
	UsersFile      = "users.json"
	PropertiesFile = "properties.json"
	OffersFile     = "offers.json"
	LedgerFile     = "ledger.json"
)

// UserRecord is a user with an optional plain text demo password, hashed at
// load time.
type UserRecord struct {
	domain.User
	Password string `json:"password,omitempty"`
}

// Dataset is a complete set of demo entities.
type Dataset struct {
	Users      []UserRecord         `json:"users"`
	Properties []domain.Property    `json:"properties"`
	Offers     []domain.Offer       `json:"offers"`
	Events     []ledger.AppendInput `json:"events"`
}

// Empty reports whether the dataset holds nothing.
func (d Dataset) Empty() bool {
	return len(d.Users) == 0 && len(d.Properties) == 0 && len(d.Offers) == 0 && len(d.Events) == 0
}

//go:embed data/*.json
var bundled embed.FS

// Bundled returns the demo dataset shipped with the binary.
func Bundled() (Dataset, error) {
	sub, err := fs.Sub(bundled, "data")
	if err != nil {
		return Dataset{}, err
	}
	return load(sub)
}

// LoadDir reads a dataset directory. Missing files are treated as empty.
func LoadDir(dir string) (Dataset, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return Dataset{}, fmt.Errorf("stat dataset dir: %w", err)
	}
	if !info.IsDir() {
		return Dataset{}, fmt.Errorf("%s is not a directory", dir)
	}
	return load(os.DirFS(dir))
}

func load(fsys fs.FS) (Dataset, error) {
	var ds Dataset
	files := []struct {
		name   string
		target any
	}{
		{UsersFile, &ds.Users},
		{PropertiesFile, &ds.Properties},
		{OffersFile, &ds.Offers},
		{LedgerFile, &ds.Events},
	}
	for _, f := range files {
		if err := readJSON(fsys, f.name, f.target); err != nil {
			return Dataset{}, err
		}
	}
	return ds, nil
}

func readJSON(fsys fs.FS, name string, target any) error {
	file, err := fsys.Open(name)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("open %s: %w", name, err)
	}
	defer file.Close()

	if err := json.NewDecoder(file).Decode(target); err != nil {
		return fmt.Errorf("decode %s: %w", name, err)
	}
	return nil
}
