package services

import (
	"bytes"
	"image"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/evilmagics/coco_fusion/internal/coco"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

func rawDataset(t *testing.T, name, doc string) *coco.RawDataset {
	t.Helper()
	ds, err := coco.Decode([]byte(doc))
	require.NoError(t, err)
	ds.Name = name
	return ds
}

func writePNG(t *testing.T, fs afero.Fs, dst string, width, height int) {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, width, height))))
	require.NoError(t, afero.WriteFile(fs, dst, buf.Bytes(), 0644))
}

func writeJPEG(t *testing.T, fs afero.Fs, dst string, width, height int) {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, image.NewRGBA(image.Rect(0, 0, width, height)), nil))
	require.NoError(t, afero.WriteFile(fs, dst, buf.Bytes(), 0644))
}

// requireIntegrity checks the merged dataset invariants.
func requireIntegrity(t *testing.T, ds *coco.Dataset) {
	t.Helper()

	images := make(map[int]bool)
	names := make(map[string]bool)
	for _, img := range ds.Images {
		require.False(t, images[img.ID], "duplicate image id %d", img.ID)
		require.False(t, names[img.FileName], "duplicate file name %s", img.FileName)
		require.GreaterOrEqual(t, img.ID, 0)
		images[img.ID] = true
		names[img.FileName] = true
	}

	categories := make(map[int]bool)
	categoryNames := make(map[string]bool)
	for _, c := range ds.Categories {
		require.False(t, categories[c.ID], "duplicate category id %d", c.ID)
		require.False(t, categoryNames[c.Name], "duplicate category name %s", c.Name)
		categories[c.ID] = true
		categoryNames[c.Name] = true
	}

	annotations := make(map[int]bool)
	for _, ann := range ds.Annotations {
		require.False(t, annotations[ann.ID], "duplicate annotation id %d", ann.ID)
		require.GreaterOrEqual(t, ann.ID, 0)
		require.True(t, images[ann.ImageID], "annotation %d references missing image %d", ann.ID, ann.ImageID)
		require.True(t, categories[ann.CategoryID], "annotation %d references missing category %d", ann.ID, ann.CategoryID)
		annotations[ann.ID] = true
	}
}
