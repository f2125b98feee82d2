// Package coco holds the COCO object-detection document model used as the
// interchange format between source datasets, the merged dataset and the
// per-subset outputs.
package coco

import (
	"sort"
	"strconv"

	"github.com/goccy/go-json"
)

// Category is identified by Name; ID is a surrogate. Fields other than id and
// name (supercategory, keypoints, ...) are carried through untouched.
type Category struct {
	ID    int
	Name  string
	Extra map[string]json.RawMessage
}

func (c *Category) UnmarshalJSON(b []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(b, &fields); err != nil {
		return err
	}

	if raw, ok := fields["id"]; ok {
		if err := json.Unmarshal(raw, &c.ID); err != nil {
			return err
		}
		delete(fields, "id")
	}
	if raw, ok := fields["name"]; ok {
		if err := json.Unmarshal(raw, &c.Name); err != nil {
			return err
		}
		delete(fields, "name")
	}

	c.Extra = nil
	if len(fields) > 0 {
		c.Extra = fields
	}
	return nil
}

func (c Category) MarshalJSON() ([]byte, error) {
	keys := make([]string, 0, len(c.Extra))
	for k := range c.Extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	buf := strconv.AppendInt([]byte(`{"id":`), int64(c.ID), 10)
	name, err := json.Marshal(c.Name)
	if err != nil {
		return nil, err
	}
	buf = append(buf, `,"name":`...)
	buf = append(buf, name...)

	for _, k := range keys {
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf = append(buf, ',')
		buf = append(buf, key...)
		buf = append(buf, ':')
		buf = append(buf, c.Extra[k]...)
	}
	return append(buf, '}'), nil
}

// Origin records where a merged image came from. It is never serialized.
type Origin struct {
	// FileName is the name the image had in its source, before deduplication.
	FileName string
	// Dir is the source's own image directory, searched first when the
	// physical file is resolved. Empty when unknown.
	Dir string
}

type Image struct {
	ID       int    `json:"id"`
	FileName string `json:"file_name"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	Origin   Origin `json:"-"`
}

// SourceName is the name to look the physical file up under.
func (i Image) SourceName() string {
	if i.Origin.FileName != "" {
		return i.Origin.FileName
	}
	return i.FileName
}

type Annotation struct {
	ID         int        `json:"id"`
	ImageID    int        `json:"image_id"`
	CategoryID int        `json:"category_id"`
	BBox       [4]float64 `json:"bbox"`
	Area       float64    `json:"area"`
	IsCrowd    int        `json:"iscrowd"`
}

// Dataset is the merged (or per-subset) document. Slices are never nil so
// that empty lists serialize as [].
type Dataset struct {
	Images      []Image      `json:"images"`
	Annotations []Annotation `json:"annotations"`
	Categories  []Category   `json:"categories"`
}

func NewDataset() *Dataset {
	return &Dataset{
		Images:      []Image{},
		Annotations: []Annotation{},
		Categories:  []Category{},
	}
}

// MaxImageID returns the largest image id, or false when there are no images.
func (d Dataset) MaxImageID() (int, bool) {
	if len(d.Images) == 0 {
		return 0, false
	}
	max := d.Images[0].ID
	for _, img := range d.Images[1:] {
		if img.ID > max {
			max = img.ID
		}
	}
	return max, true
}

// FileNames returns every image file name in list order.
func (d Dataset) FileNames() []string {
	names := make([]string, len(d.Images))
	for i, img := range d.Images {
		names[i] = img.FileName
	}
	return names
}
