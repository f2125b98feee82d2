package services

import (
	"github.com/evilmagics/coco_fusion/internal/coco"
	"github.com/evilmagics/coco_fusion/internal/utils"
	"github.com/rs/zerolog/log"
)

// Taxonomy accumulates categories across source datasets, keyed by name.
type Taxonomy struct {
	categories []coco.Category
	byName     map[string]int
}

func NewTaxonomy() *Taxonomy {
	return &Taxonomy{byName: make(map[string]int)}
}

// Unify folds a source category list into the taxonomy and returns the
// mapping from the source's category ids to surrogate ids. A name seen
// before maps to the surrogate id it was first given; a new name gets
// len(categories)+1. Names are rewritten through sync before lookup.
func (t *Taxonomy) Unify(categories []coco.Category, sync utils.ClassNameSync) map[int]int {
	mapping := make(map[int]int, len(categories))

	for _, cat := range categories {
		name := sync.Canonical(cat.Name)

		if id, ok := t.byName[name]; ok {
			mapping[cat.ID] = id
			continue
		}

		id := len(t.categories) + 1
		log.Debug().Str("Name", name).Int("Source ID", cat.ID).Int("ID", id).Msg("New category")

		mapping[cat.ID] = id
		t.byName[name] = id
		cat.ID = id
		cat.Name = name
		t.categories = append(t.categories, cat)
	}

	return mapping
}

// Categories returns a copy of the accumulated categories in id order.
func (t *Taxonomy) Categories() []coco.Category {
	out := make([]coco.Category, len(t.categories))
	copy(out, t.categories)
	return out
}
