package utils

// Subset names one partition of the split dataset.
type Subset string

const (
	SubsetTrain Subset = "train"
	SubsetVal   Subset = "val"
	SubsetTest  Subset = "test"
)

// Subsets lists every partition in output order.
var Subsets = []Subset{SubsetTrain, SubsetVal, SubsetTest}

var (
	subsetCrossName = map[string]Subset{
		"train":      SubsetTrain,
		"training":   SubsetTrain,
		"val":        SubsetVal,
		"valid":      SubsetVal,
		"validation": SubsetVal,
		"test":       SubsetTest,
		"tests":      SubsetTest,
		"testing":    SubsetTest,
	}
)

func FindSubset(name string) *Subset {
	if s := subsetCrossName[name]; s != "" {
		return &s
	}
	return nil
}
