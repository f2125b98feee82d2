package services

import (
	"errors"
	"path"

	"github.com/evilmagics/coco_fusion/internal/coco"
	"github.com/evilmagics/coco_fusion/internal/utils"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

const StageManifest = "manifest"

var ErrFileNotFound = errors.New("file not found")

// Item is one physical file copy.
type Item struct {
	SrcFilename string
	SrcPath     string
	DstFilename string
	DstPath     string
}

// SubsetManifest is everything needed to write one subset: the files to copy
// and the annotation document with its destination.
type SubsetManifest struct {
	Subset         utils.Subset
	Dir            string
	AnnotationPath string
	Dataset        *coco.Dataset
	Items          []Item
}

type Manifest []SubsetManifest

// Resolver finds the physical file of an image by searching an ordered list
// of directories. The first directory holding the file wins.
type Resolver struct {
	fs   afero.Fs
	dirs []string
}

func NewResolver(fs afero.Fs, dirs ...string) *Resolver {
	return &Resolver{fs: fs, dirs: dirs}
}

// Resolve returns the source path of img: its file_name searched over the
// configured directories, first match wins. Only when none holds it is the
// name the image had in its source looked up, in the source's own
// directory and then in the configured ones.
func (r *Resolver) Resolve(img coco.Image) (string, bool) {
	if src, ok := r.find(img.FileName, r.dirs); ok {
		return src, true
	}

	if img.Origin.FileName == "" && img.Origin.Dir == "" {
		return "", false
	}
	dirs := r.dirs
	if img.Origin.Dir != "" {
		dirs = append([]string{img.Origin.Dir}, r.dirs...)
	}
	return r.find(img.SourceName(), dirs)
}

func (r *Resolver) find(name string, dirs []string) (string, bool) {
	for _, dir := range dirs {
		candidate := path.Join(dir, name)
		if info, err := r.fs.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, true
		}
	}
	return "", false
}

// BuildManifest resolves the file of every image in every subset. An image
// whose file cannot be found is reported and left out of the copies, but it
// stays in the subset's annotation document.
func BuildManifest(resolver *Resolver, splits Splits, dest string) (Manifest, utils.Diagnostics) {
	var (
		manifest    Manifest
		diagnostics utils.Diagnostics
	)

	for _, s := range utils.Subsets {
		ds, ok := splits[s]
		if !ok {
			continue
		}

		sm := SubsetManifest{
			Subset:         s,
			Dir:            path.Join(dest, string(s)),
			AnnotationPath: utils.AnnotationPath(dest, s),
			Dataset:        ds,
			Items:          make([]Item, 0, len(ds.Images)),
		}

		for _, img := range ds.Images {
			src, found := resolver.Resolve(img)
			if !found {
				diagnostics.Add(StageManifest, img.FileName, ErrFileNotFound)
				continue
			}

			sm.Items = append(sm.Items, Item{
				SrcFilename: path.Base(src),
				SrcPath:     src,
				DstFilename: img.FileName,
				DstPath:     utils.ImagePath(dest, s, img.FileName),
			})
		}

		log.Debug().Str("Subset", string(s)).Int("Copies", len(sm.Items)).
			Int("Images", len(ds.Images)).Msg("Manifest built.")
		manifest = append(manifest, sm)
	}

	return manifest, diagnostics
}
