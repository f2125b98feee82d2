package services

import (
	"math"
	"math/rand"
	"time"

	"github.com/evilmagics/coco_fusion/internal/coco"
	"github.com/evilmagics/coco_fusion/internal/config"
	"github.com/evilmagics/coco_fusion/internal/utils"
	"github.com/rs/zerolog/log"
)

// Splits holds one dataset per subset.
type Splits map[utils.Subset]*coco.Dataset

// Split shuffles the images of merged with rng and cuts them into train,
// val and test by ratio. Each subset keeps the annotations of its own images
// and the full category list. merged is left untouched.
func Split(merged *coco.Dataset, ratios config.Ratios, rng *rand.Rand) (Splits, error) {
	if err := ratios.Validate(); err != nil {
		return nil, err
	}

	images := make([]coco.Image, len(merged.Images))
	copy(images, merged.Images)
	rng.Shuffle(len(images), func(i, j int) {
		images[i], images[j] = images[j], images[i]
	})

	var (
		n        = len(images)
		trainEnd = int(math.Floor(ratios.Train * float64(n)))
		valEnd   = trainEnd + int(math.Floor(ratios.Val*float64(n)))
	)
	if valEnd > n {
		valEnd = n
	}

	splits := Splits{
		utils.SubsetTrain: project(merged, images[:trainEnd]),
		utils.SubsetVal:   project(merged, images[trainEnd:valEnd]),
		utils.SubsetTest:  project(merged, images[valEnd:]),
	}

	for _, s := range utils.Subsets {
		log.Info().Str("Subset", string(s)).
			Int("Images", len(splits[s].Images)).
			Int("Annotations", len(splits[s].Annotations)).
			Msg("Subset split.")
	}
	return splits, nil
}

func project(merged *coco.Dataset, images []coco.Image) *coco.Dataset {
	ids := make(map[int]struct{}, len(images))
	for _, img := range images {
		ids[img.ID] = struct{}{}
	}

	ds := coco.NewDataset()
	ds.Images = append(ds.Images, images...)
	for _, ann := range merged.Annotations {
		if _, ok := ids[ann.ImageID]; ok {
			ds.Annotations = append(ds.Annotations, ann)
		}
	}
	ds.Categories = append(ds.Categories, merged.Categories...)

	return ds
}

// NewRand returns a seeded source and the seed used; seed 0 takes one from
// the clock.
func NewRand(seed int64) (*rand.Rand, int64) {
	if seed == 0 {
		seed = time.Now().UTC().UnixNano()
	}
	return rand.New(rand.NewSource(seed)), seed
}
