package utils

import (
	"path"
	"strconv"
	"strings"
)

// Filename return filename (without extension) from path
func Filename(src string) string {
	return strings.TrimSuffix(src, path.Ext(src))
}

// RealFilename return combination with filename and extension
func RealFilename(str, ext string) string {
	return str + ext
}

// HasImageExt reports whether name carries one of the recognized image
// extensions (.jpg, .jpeg, .png), ignoring case.
func HasImageExt(name string) bool {
	switch strings.ToLower(path.Ext(name)) {
	case ".jpg", ".jpeg", ".png":
		return true
	}
	return false
}

// ImagePath returns <dir>/<subset>/images/<filename>.
func ImagePath(dir string, subset Subset, filename string) string {
	return path.Join(dir, string(subset), "images", filename)
}

// AnnotationPath returns <dir>/<subset>/annotations_<subset>.json.
func AnnotationPath(dir string, subset Subset) string {
	return path.Join(dir, string(subset), RealFilename("annotations_"+string(subset), ".json"))
}

// FilenameSet tracks the file names already claimed in a merged dataset.
type FilenameSet map[string]struct{}

func NewFilenameSet(names ...string) FilenameSet {
	s := make(FilenameSet, len(names))
	for _, n := range names {
		s[n] = struct{}{}
	}
	return s
}

func (s FilenameSet) Has(name string) bool {
	_, ok := s[name]
	return ok
}

// Assign returns a name that is not yet in the set and claims it.
// A taken candidate gets a numeric suffix before its extension:
// photo.jpg, photo_1.jpg, photo_2.jpg, ...
func (s FilenameSet) Assign(candidate string) string {
	name := candidate
	if s.Has(name) {
		var (
			ext  = path.Ext(candidate)
			base = Filename(candidate)
		)
		for i := 1; s.Has(name); i++ {
			name = RealFilename(base+"_"+strconv.Itoa(i), ext)
		}
	}

	s[name] = struct{}{}
	return name
}
