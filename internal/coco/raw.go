package coco

import (
	"errors"
	"fmt"
	"math"

	"github.com/goccy/go-json"
)

// ErrMissingKey is returned when a source document lacks one of the
// top-level keys images, annotations or categories.
var ErrMissingKey = errors.New("missing required key")

// RawImage is an image as found in a source document. Its size is kept raw
// so that a malformed value only invalidates this image.
type RawImage struct {
	ID       int             `json:"id"`
	FileName string          `json:"file_name"`
	Width    json.RawMessage `json:"width"`
	Height   json.RawMessage `json:"height"`
}

// Size returns width and height when both are non-negative whole numbers.
// 640.0 is accepted as 640.
func (i RawImage) Size() (int, int, bool) {
	w, ok := wholeNumber(i.Width)
	if !ok || w < 0 {
		return 0, 0, false
	}
	h, ok := wholeNumber(i.Height)
	if !ok || h < 0 {
		return 0, 0, false
	}
	return w, h, true
}

// RawAnnotation is an annotation as found in a source document. BBox, area
// and iscrowd are kept raw so that a malformed value only invalidates its
// own annotation.
type RawAnnotation struct {
	ID         int             `json:"id"`
	ImageID    int             `json:"image_id"`
	CategoryID int             `json:"category_id"`
	BBox       json.RawMessage `json:"bbox"`
	Area       json.RawMessage `json:"area"`
	IsCrowd    json.RawMessage `json:"iscrowd"`
}

// Box returns the bounding box when it has exactly 4 non-null numbers.
func (a RawAnnotation) Box() ([4]float64, bool) {
	var box [4]float64
	if len(a.BBox) == 0 {
		return box, false
	}

	var values []*float64
	if err := json.Unmarshal(a.BBox, &values); err != nil || len(values) != 4 {
		return box, false
	}
	for i, v := range values {
		if v == nil {
			return box, false
		}
		box[i] = *v
	}
	return box, true
}

// AreaOr returns the area, or def when it is missing or null.
func (a RawAnnotation) AreaOr(def float64) (float64, bool) {
	if isNull(a.Area) {
		return def, true
	}
	return number(a.Area)
}

// Crowd returns iscrowd as 0 or 1. Missing or null is 0; booleans are
// accepted.
func (a RawAnnotation) Crowd() (int, bool) {
	if isNull(a.IsCrowd) {
		return 0, true
	}

	var flag bool
	if err := json.Unmarshal(a.IsCrowd, &flag); err == nil {
		if flag {
			return 1, true
		}
		return 0, true
	}

	v, ok := wholeNumber(a.IsCrowd)
	if !ok || (v != 0 && v != 1) {
		return 0, false
	}
	return v, true
}

func isNull(raw json.RawMessage) bool {
	return len(raw) == 0 || string(raw) == "null"
}

// number decodes a JSON number. Anything else, null included, is rejected.
func number(raw json.RawMessage) (float64, bool) {
	if isNull(raw) {
		return 0, false
	}
	var v float64
	if err := json.Unmarshal(raw, &v); err != nil {
		return 0, false
	}
	return v, true
}

func wholeNumber(raw json.RawMessage) (int, bool) {
	v, ok := number(raw)
	if !ok || v != math.Trunc(v) || math.Abs(v) > math.MaxInt32 {
		return 0, false
	}
	return int(v), true
}

// RawDataset is one parsed source annotation file.
type RawDataset struct {
	Images      []RawImage      `json:"images"`
	Annotations []RawAnnotation `json:"annotations"`
	Categories  []Category      `json:"categories"`

	// Name identifies the source in logs, usually its path.
	Name string `json:"-"`
	// ImageDir is the directory holding this source's image files.
	ImageDir string `json:"-"`
}

var requiredKeys = []string{"images", "annotations", "categories"}

// Decode parses a source document. A document missing any required
// top-level key is a structural error.
func Decode(b []byte) (*RawDataset, error) {
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(b, &keys); err != nil {
		return nil, err
	}
	for _, k := range requiredKeys {
		if v, ok := keys[k]; !ok || string(v) == "null" {
			return nil, fmt.Errorf("%w %q", ErrMissingKey, k)
		}
	}

	ds := new(RawDataset)
	if err := json.Unmarshal(b, ds); err != nil {
		return nil, err
	}
	return ds, nil
}
