package config

import (
	"os"
	"path"

	"github.com/evilmagics/coco_fusion/internal/coco"
	"github.com/evilmagics/coco_fusion/internal/utils"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// Dataset is the data.yaml summary written at the root of the output.
type Dataset struct {
	Train      string   `yaml:"train" json:"train"`
	Val        string   `yaml:"val" json:"val"`
	Test       string   `yaml:"test" json:"test"`
	Seed       int64    `yaml:"seed" json:"seed"`
	NamesCount int      `yaml:"nc" json:"nc"`
	Names      []string `yaml:"names" json:"names"`
}

func (c Dataset) YAMLMarshal() ([]byte, error) {
	return yaml.Marshal(c)
}

// NewDataset lists category names in surrogate id order.
func NewDataset(seed int64, categories ...coco.Category) *Dataset {
	names := make([]string, len(categories))
	for i, c := range categories {
		names[i] = c.Name
	}

	return &Dataset{
		Train:      utils.AnnotationPath("", utils.SubsetTrain),
		Val:        utils.AnnotationPath("", utils.SubsetVal),
		Test:       utils.AnnotationPath("", utils.SubsetTest),
		Seed:       seed,
		Names:      names,
		NamesCount: len(names),
	}
}

func LoadDataset(fs afero.Fs, src string) (*Dataset, error) {
	f, err := afero.ReadFile(fs, src)
	if err != nil {
		return nil, err
	}

	conf := new(Dataset)
	err = yaml.Unmarshal(f, conf)
	return conf, err
}

func SaveDataset(fs afero.Fs, conf Dataset, dest string) error {
	b, err := conf.YAMLMarshal()
	if err != nil {
		return err
	}

	if err := fs.MkdirAll(dest, os.ModePerm); err != nil {
		return err
	}
	return afero.WriteFile(fs, path.Join(dest, "data.yaml"), b, 0644)
}
