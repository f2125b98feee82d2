package coco

import (
	"fmt"
	"os"
	"path"

	"github.com/goccy/go-json"
	"github.com/spf13/afero"
)

// Load reads and decodes the annotation file at src.
func Load(fs afero.Fs, src, imageDir string) (*RawDataset, error) {
	b, err := afero.ReadFile(fs, src)
	if err != nil {
		return nil, err
	}

	ds, err := Decode(b)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", src, err)
	}
	ds.Name = src
	ds.ImageDir = imageDir

	return ds, nil
}

func (d Dataset) Encode() ([]byte, error) {
	return json.Marshal(d)
}

// Save writes the dataset as JSON to dest, creating parent directories.
func Save(fs afero.Fs, d Dataset, dest string) error {
	b, err := d.Encode()
	if err != nil {
		return err
	}

	if err := fs.MkdirAll(path.Dir(dest), os.ModePerm); err != nil {
		return err
	}
	return afero.WriteFile(fs, dest, b, 0644)
}
