package coco

import (
	"testing"

	"github.com/goccy/go-json"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `{
	"info": {"year": 2025},
	"images": [{"id": 3, "file_name": "a.jpg", "width": 640, "height": 480}],
	"annotations": [
		{"id": 9, "image_id": 3, "category_id": 1, "bbox": [1, 2, 3, 4], "area": 10.5},
		{"id": 10, "image_id": 3, "category_id": 1, "bbox": [1, null, 3, 4]},
		{"id": 11, "image_id": 3, "category_id": 1, "bbox": [1, 2, 3]},
		{"id": 12, "image_id": 3, "category_id": 1, "bbox": ["x", 2, 3, 4]},
		{"id": 13, "image_id": 3, "category_id": 1}
	],
	"categories": [{"id": 1, "name": "fish", "supercategory": "animal", "color": [255, 0, 0]}]
}`

func TestDecode(t *testing.T) {
	ds, err := Decode([]byte(sample))
	require.NoError(t, err)

	require.Len(t, ds.Images, 1)
	assert.Equal(t, 3, ds.Images[0].ID)
	assert.Equal(t, "a.jpg", ds.Images[0].FileName)
	width, height, ok := ds.Images[0].Size()
	assert.True(t, ok)
	assert.Equal(t, 640, width)
	assert.Equal(t, 480, height)

	require.Len(t, ds.Annotations, 5)
	box, ok := ds.Annotations[0].Box()
	assert.True(t, ok)
	assert.Equal(t, [4]float64{1, 2, 3, 4}, box)
	area, ok := ds.Annotations[0].AreaOr(12)
	assert.True(t, ok)
	assert.Equal(t, 10.5, area)
	crowd, ok := ds.Annotations[0].Crowd()
	assert.True(t, ok)
	assert.Equal(t, 0, crowd)

	for _, ann := range ds.Annotations[1:] {
		_, ok := ann.Box()
		assert.False(t, ok, "annotation %d", ann.ID)
	}

	require.Len(t, ds.Categories, 1)
	assert.Equal(t, "fish", ds.Categories[0].Name)
	assert.Contains(t, ds.Categories[0].Extra, "supercategory")
}

func TestDecodeLenientFields(t *testing.T) {
	ds, err := Decode([]byte(`{
		"images": [
			{"id": 1, "file_name": "a.jpg", "width": 640.0, "height": 480},
			{"id": 2, "file_name": "b.jpg", "width": "wide", "height": 480},
			{"id": 3, "file_name": "c.jpg", "width": 640.5, "height": 480},
			{"id": 4, "file_name": "d.jpg", "height": 480}
		],
		"annotations": [
			{"id": 1, "image_id": 1, "category_id": 1, "bbox": [1, 2, 3, 4], "iscrowd": false, "area": null},
			{"id": 2, "image_id": 1, "category_id": 1, "bbox": [1, 2, 3, 4], "iscrowd": true, "area": 7.0},
			{"id": 3, "image_id": 1, "category_id": 1, "bbox": [1, 2, 3, 4], "iscrowd": 1.0},
			{"id": 4, "image_id": 1, "category_id": 1, "bbox": [1, 2, 3, 4], "iscrowd": "yes"},
			{"id": 5, "image_id": 1, "category_id": 1, "bbox": [1, 2, 3, 4], "iscrowd": 2},
			{"id": 6, "image_id": 1, "category_id": 1, "bbox": [1, 2, 3, 4], "area": "big"}
		],
		"categories": []
	}`))
	require.NoError(t, err)

	width, height, ok := ds.Images[0].Size()
	assert.True(t, ok)
	assert.Equal(t, []int{640, 480}, []int{width, height})
	for _, img := range ds.Images[1:] {
		_, _, ok := img.Size()
		assert.False(t, ok, img.FileName)
	}

	anns := ds.Annotations
	for i, want := range []int{0, 1, 1} {
		crowd, ok := anns[i].Crowd()
		assert.True(t, ok, "annotation %d", anns[i].ID)
		assert.Equal(t, want, crowd, "annotation %d", anns[i].ID)
	}
	for _, ann := range anns[3:5] {
		_, ok := ann.Crowd()
		assert.False(t, ok, "annotation %d", ann.ID)
	}

	area, ok := anns[0].AreaOr(12)
	assert.True(t, ok)
	assert.Equal(t, 12.0, area)
	area, ok = anns[1].AreaOr(12)
	assert.True(t, ok)
	assert.Equal(t, 7.0, area)
	_, ok = anns[5].AreaOr(12)
	assert.False(t, ok)
}

func TestDecodeMissingKey(t *testing.T) {
	for _, doc := range []string{
		`{"annotations": [], "categories": []}`,
		`{"images": [], "categories": []}`,
		`{"images": [], "annotations": [], "categories": null}`,
	} {
		_, err := Decode([]byte(doc))
		assert.ErrorIs(t, err, ErrMissingKey, doc)
	}

	_, err := Decode([]byte(`{"images": [], "annotations": [], "categories": []}`))
	assert.NoError(t, err)
}

func TestCategoryPassThrough(t *testing.T) {
	var cat Category
	require.NoError(t, json.Unmarshal([]byte(`{"id": 4, "name": "ray", "supercategory": "animal", "keypoints": ["tail"]}`), &cat))
	cat.ID = 1

	b, err := json.Marshal(cat)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id": 1, "name": "ray", "supercategory": "animal", "keypoints": ["tail"]}`, string(b))
}

func TestCategoryMarshalID(t *testing.T) {
	for _, cat := range []Category{
		{ID: 0, Name: "fish"},
		{ID: -3, Name: "ray"},
		{ID: 123456789, Name: `quoted "name"`, Extra: map[string]json.RawMessage{"a": json.RawMessage(`null`)}},
	} {
		b, err := json.Marshal(cat)
		require.NoError(t, err)

		var back Category
		require.NoError(t, json.Unmarshal(b, &back))
		assert.Equal(t, cat, back)
	}
}

func TestDatasetEncodeEmpty(t *testing.T) {
	b, err := NewDataset().Encode()
	require.NoError(t, err)
	assert.JSONEq(t, `{"images": [], "annotations": [], "categories": []}`, string(b))
}

func TestImageOriginNotSerialized(t *testing.T) {
	img := Image{ID: 1, FileName: "a_1.jpg", Width: 2, Height: 3, Origin: Origin{FileName: "a.jpg", Dir: "src"}}
	b, err := json.Marshal(img)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id": 1, "file_name": "a_1.jpg", "width": 2, "height": 3}`, string(b))

	assert.Equal(t, "a.jpg", img.SourceName())
	img.Origin = Origin{}
	assert.Equal(t, "a_1.jpg", img.SourceName())
}

func TestMaxImageID(t *testing.T) {
	_, ok := NewDataset().MaxImageID()
	assert.False(t, ok)

	ds := Dataset{Images: []Image{{ID: 4}, {ID: 9}, {ID: 2}}}
	max, ok := ds.MaxImageID()
	assert.True(t, ok)
	assert.Equal(t, 9, max)
}

func TestLoadAndSave(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/src/dataset.json", []byte(sample), 0644))

	raw, err := Load(fs, "/src/dataset.json", "/src/images")
	require.NoError(t, err)
	assert.Equal(t, "/src/dataset.json", raw.Name)
	assert.Equal(t, "/src/images", raw.ImageDir)

	out := NewDataset()
	out.Categories = raw.Categories
	require.NoError(t, Save(fs, *out, "/out/train/annotations_train.json"))

	b, err := afero.ReadFile(fs, "/out/train/annotations_train.json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"images": [], "annotations": [], "categories": [{"id": 1, "name": "fish", "supercategory": "animal", "color": [255, 0, 0]}]}`, string(b))

	_, err = Load(fs, "/missing.json", "")
	assert.Error(t, err)
}
