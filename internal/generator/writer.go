package generator

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ishahzaibhaider/wasatah-poc-sub000/internal/seed"
)

// WriteDataset serializes the dataset into the seed file layout under dir, so
// that seed.LoadDir reads it back.
func WriteDataset(dataset seed.Dataset, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	files := []struct {
		name string
		data any
	}{
		{seed.UsersFile, dataset.Users},
		{seed.PropertiesFile, dataset.Properties},
		{seed.OffersFile, dataset.Offers},
		{seed.LedgerFile, dataset.Events},
	}
	for _, f := range files {
		if err := writeJSON(filepath.Join(dir, f.name), f.data); err != nil {
			return err
		}
	}
	return nil
}

func writeJSON(path string, data any) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("encode json for %s: %w", path, err)
	}
	return nil
}
