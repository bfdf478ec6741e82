package app

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"rollbook/internal/model"
)

// LoadDataset reads the live dataset from path. A missing file is not an
// error; it yields an empty dataset, which is the state of a fresh install.
func LoadDataset(path string) (model.Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return model.Dataset{}, nil
		}
		return model.Dataset{}, fmt.Errorf("reading dataset: %w", err)
	}

	var ds model.Dataset
	if err := json.Unmarshal(data, &ds); err != nil {
		return model.Dataset{}, fmt.Errorf("parsing dataset %s: %w", path, err)
	}
	return ds, nil
}

// SaveDataset writes the dataset to path atomically: the JSON goes to a temp
// file in the same directory which is then renamed over the target, so a
// crash mid-write never leaves a truncated dataset behind.
func SaveDataset(path string, ds model.Dataset) error {
	data, err := json.MarshalIndent(ds, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding dataset: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating dataset directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".dataset-*.json")
	if err != nil {
		return fmt.Errorf("creating temp dataset file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("writing temp dataset file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp dataset file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replacing dataset file: %w", err)
	}
	return nil
}
