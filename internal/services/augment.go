package services

import (
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"path"

	"github.com/evilmagics/coco_fusion/internal/coco"
	"github.com/evilmagics/coco_fusion/internal/utils"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

const StageAugment = "augment"

var ErrEmptyDimensions = errors.New("image has no dimensions")

// EmptyImage is an unlabeled image offered for augmentation. Err is set when
// its dimensions could not be read.
type EmptyImage struct {
	Path   string
	Width  int
	Height int
	Err    error
}

// ProbeDir lists the image files of dir, sorted by name, and reads their
// dimensions from the file headers. A file that cannot be probed is returned
// with Err set; only a failure to list dir is returned as an error.
func ProbeDir(fs afero.Fs, dir string) ([]EmptyImage, error) {
	entry, err := afero.ReadDir(fs, dir)
	if err != nil {
		return nil, err
	}

	var images []EmptyImage
	for _, e := range entry {
		if e.IsDir() || !utils.HasImageExt(e.Name()) {
			continue
		}

		p := path.Join(dir, e.Name())
		width, height, err := probe(fs, p)
		images = append(images, EmptyImage{Path: p, Width: width, Height: height, Err: err})
	}

	return images, nil
}

func probe(fs afero.Fs, src string) (int, int, error) {
	f, err := fs.Open(src)
	if err != nil {
		return 0, 0, err
	}
	defer f.Close()

	conf, _, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0, err
	}
	if conf.Width <= 0 || conf.Height <= 0 {
		return 0, 0, ErrEmptyDimensions
	}
	return conf.Width, conf.Height, nil
}

// Augment appends the candidates to merged as images without annotations.
// Ids continue after the largest existing image id, or start at 0 when
// merged has no images. Names are deduplicated against names, which should be
// the set the merge claimed; nil rebuilds it from merged.
func Augment(merged *coco.Dataset, names utils.FilenameSet, candidates []EmptyImage) utils.Diagnostics {
	var diagnostics utils.Diagnostics

	if names == nil {
		names = utils.NewFilenameSet(merged.FileNames()...)
	}

	ids := utils.NewIncrement()
	if max, ok := merged.MaxImageID(); ok {
		ids = utils.NewIncrement(max + 1)
	}

	for _, c := range candidates {
		if c.Err != nil {
			diagnostics.Add(StageAugment, c.Path, fmt.Errorf("read dimensions: %w", c.Err))
			continue
		}

		filename := path.Base(c.Path)
		merged.Images = append(merged.Images, coco.Image{
			ID:       ids.Next(),
			FileName: names.Assign(filename),
			Width:    c.Width,
			Height:   c.Height,
			Origin:   coco.Origin{FileName: filename, Dir: path.Dir(c.Path)},
		})
	}

	log.Info().Int("Candidates", len(candidates)).Int("Skipped", len(diagnostics)).
		Int("Images", len(merged.Images)).Msg("Empty images added.")
	return diagnostics
}
