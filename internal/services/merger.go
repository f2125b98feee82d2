package services

import (
	"errors"
	"fmt"

	"github.com/evilmagics/coco_fusion/internal/coco"
	"github.com/evilmagics/coco_fusion/internal/utils"
	"github.com/rs/zerolog/log"
)

const StageMerge = "merge"

var (
	ErrNoValidAnnotation = errors.New("no valid annotation")
	ErrUnknownCategory   = errors.New("unknown category")
	ErrInvalidSize       = errors.New("invalid image size")
)

// Merger carries the running state of a merge: the accumulated taxonomy,
// claimed file names and the image and annotation id sequences. Later
// datasets never reuse ids handed out to earlier ones.
type Merger struct {
	taxonomy      *Taxonomy
	filenames     utils.FilenameSet
	imageIDs      *utils.Increment
	annotationIDs *utils.Increment
	merged        *coco.Dataset
	diagnostics   utils.Diagnostics
}

func NewMerger() *Merger {
	return &Merger{
		taxonomy:      NewTaxonomy(),
		filenames:     utils.NewFilenameSet(),
		imageIDs:      utils.NewIncrement(),
		annotationIDs: utils.NewIncrement(),
		merged:        coco.NewDataset(),
	}
}

// Merge folds every dataset, in order, into one dataset.
func Merge(datasets ...*coco.RawDataset) (*coco.Dataset, utils.Diagnostics, error) {
	m := NewMerger()
	for _, ds := range datasets {
		if err := m.Add(ds, utils.ClassNameSync{}); err != nil {
			return nil, m.Diagnostics(), err
		}
	}
	return m.Dataset(), m.Diagnostics(), nil
}

// Add merges one source dataset. Images with a malformed size or left
// without a valid annotation are dropped and reported; they consume no id.
func (m *Merger) Add(ds *coco.RawDataset, sync utils.ClassNameSync) error {
	if ds == nil {
		return fmt.Errorf("%s: %w", datasetName(ds), coco.ErrMissingKey)
	}

	categoryMap := m.taxonomy.Unify(ds.Categories, sync)
	m.merged.Categories = m.taxonomy.Categories()

	// annotations per source image id, in document order
	byImage := make(map[int][]coco.RawAnnotation)
	for _, ann := range ds.Annotations {
		byImage[ann.ImageID] = append(byImage[ann.ImageID], ann)
	}

	var kept, dropped int
	for _, img := range ds.Images {
		width, height, ok := img.Size()
		if !ok {
			dropped++
			m.diagnostics.Add(StageMerge, img.FileName, ErrInvalidSize)
			continue
		}

		anns := m.validAnnotations(ds, byImage[img.ID], categoryMap)
		if len(anns) == 0 {
			dropped++
			m.diagnostics.Add(StageMerge, img.FileName, ErrNoValidAnnotation)
			continue
		}

		id := m.imageIDs.Next()
		m.merged.Images = append(m.merged.Images, coco.Image{
			ID:       id,
			FileName: m.filenames.Assign(img.FileName),
			Width:    width,
			Height:   height,
			Origin:   coco.Origin{FileName: img.FileName, Dir: ds.ImageDir},
		})

		for _, ann := range anns {
			ann.ID = m.annotationIDs.Next()
			ann.ImageID = id
			m.merged.Annotations = append(m.merged.Annotations, ann)
		}
		kept++
	}

	log.Info().Str("Source", utils.RightWrap(datasetName(ds), 100)).
		Int("Images", kept).Int("Dropped", dropped).
		Int("Categories", len(m.merged.Categories)).
		Msg("Dataset merged.")
	return nil
}

// validAnnotations remaps the annotations of one image, leaving out those
// with a malformed bbox, area or iscrowd, or an unknown category. Ids are
// left for the caller.
func (m *Merger) validAnnotations(ds *coco.RawDataset, raw []coco.RawAnnotation, categoryMap map[int]int) []coco.Annotation {
	out := make([]coco.Annotation, 0, len(raw))
	for _, ann := range raw {
		box, ok := ann.Box()
		if !ok {
			continue
		}

		categoryID, ok := categoryMap[ann.CategoryID]
		if !ok {
			m.diagnostics.Add(StageMerge, fmt.Sprintf("%s annotation %d", datasetName(ds), ann.ID),
				fmt.Errorf("%w %d", ErrUnknownCategory, ann.CategoryID))
			continue
		}

		area, ok := ann.AreaOr(box[2] * box[3])
		if !ok {
			continue
		}
		crowd, ok := ann.Crowd()
		if !ok {
			continue
		}

		a := coco.Annotation{
			CategoryID: categoryID,
			BBox:       box,
			Area:       area,
			IsCrowd:    crowd,
		}
		out = append(out, a)
	}
	return out
}

// Dataset returns the merged dataset built so far.
func (m *Merger) Dataset() *coco.Dataset { return m.merged }

// Filenames returns the claimed file names so augmentation continues the
// same deduplication state.
func (m *Merger) Filenames() utils.FilenameSet { return m.filenames }

func (m *Merger) Diagnostics() utils.Diagnostics { return m.diagnostics }

func datasetName(ds *coco.RawDataset) string {
	if ds == nil || ds.Name == "" {
		return "<dataset>"
	}
	return ds.Name
}
