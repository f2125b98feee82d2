package config

import (
	"errors"
	"fmt"
	"math"

	"github.com/evilmagics/coco_fusion/internal/utils"
)

var ErrInvalidRatios = errors.New("invalid split ratios")

// ratioSlack absorbs float noise when checking that ratios sum to at most 1.
const ratioSlack = 1e-9

// Ratios are the target proportions of the train, val and test subsets.
// They may sum to less than 1; the remainder goes to test.
type Ratios struct {
	Train float64 `yaml:"train" json:"train"`
	Val   float64 `yaml:"val" json:"val"`
	Test  float64 `yaml:"test" json:"test"`
}

func DefaultRatios() Ratios { return Ratios{Train: 0.7, Val: 0.2, Test: 0.1} }

func (r Ratios) Validate() error {
	for _, v := range []float64{r.Train, r.Val, r.Test} {
		if v < 0 || v > 1 || math.IsNaN(v) {
			return fmt.Errorf("%w: %+v", ErrInvalidRatios, r)
		}
	}
	if r.Train+r.Val+r.Test > 1+ratioSlack {
		return fmt.Errorf("%w: %+v sums above 1", ErrInvalidRatios, r)
	}
	return nil
}

// ParseRatios reads a subset -> ratio map. Keys accept the usual aliases
// (training, valid, validation, testing, ...). An empty map gives the defaults.
func ParseRatios(raw map[string]float64) (Ratios, error) {
	if len(raw) == 0 {
		return DefaultRatios(), nil
	}

	var r Ratios
	for k, v := range raw {
		subset := utils.FindSubset(k)
		if subset == nil {
			return r, fmt.Errorf("%w: unknown subset %q", ErrInvalidRatios, k)
		}
		switch *subset {
		case utils.SubsetTrain:
			r.Train = v
		case utils.SubsetVal:
			r.Val = v
		case utils.SubsetTest:
			r.Test = v
		}
	}
	return r, r.Validate()
}
