package services

import (
	"fmt"
	"os"

	"github.com/evilmagics/coco_fusion/internal/coco"
	"github.com/evilmagics/coco_fusion/internal/config"
	"github.com/evilmagics/coco_fusion/internal/utils"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

// Fusion drives the whole pipeline: load, merge, augment, split, emit.
type Fusion struct {
	fs   afero.Fs
	conf *config.Config
}

// Report is the outcome of a completed run.
type Report struct {
	Seed        int64
	Merged      *coco.Dataset
	Splits      Splits
	Manifest    Manifest
	Diagnostics utils.Diagnostics
}

// NewFusion creates a pipeline over the OS filesystem, or over fs when given.
func NewFusion(conf *config.Config, fs ...afero.Fs) *Fusion {
	f := &Fusion{fs: afero.NewOsFs(), conf: conf}
	if len(fs) > 0 {
		f.fs = fs[0]
	}
	return f
}

// LoadSources reads every configured annotation file. Any structural error
// aborts the run before anything is merged.
func (f *Fusion) LoadSources() ([]*coco.RawDataset, error) {
	datasets := make([]*coco.RawDataset, 0, len(f.conf.Sources))
	for _, s := range f.conf.Sources {
		ds, err := coco.Load(f.fs, s.Annotations, s.Images)
		if err != nil {
			return nil, fmt.Errorf("load source: %w", err)
		}
		log.Info().Str("Path", utils.RightWrap(s.Annotations, 100)).
			Int("Images", len(ds.Images)).Int("Annotations", len(ds.Annotations)).
			Msg("Source loaded.")
		datasets = append(datasets, ds)
	}
	return datasets, nil
}

// Prepare runs every in-memory stage and builds the copy manifest. Nothing
// is written.
func (f *Fusion) Prepare() (*Report, error) {
	datasets, err := f.LoadSources()
	if err != nil {
		return nil, err
	}

	merger := NewMerger()
	for i, ds := range datasets {
		if err := merger.Add(ds, f.conf.Sources[i].ClassNameSync()); err != nil {
			return nil, err
		}
	}

	report := &Report{Merged: merger.Dataset(), Diagnostics: merger.Diagnostics()}

	if f.conf.EmptyImages != "" {
		candidates, err := ProbeDir(f.fs, f.conf.EmptyImages)
		if err != nil {
			return nil, fmt.Errorf("list empty images: %w", err)
		}
		report.Diagnostics = append(report.Diagnostics, Augment(report.Merged, merger.Filenames(), candidates)...)
	}

	rng, seed := NewRand(f.conf.Seed)
	report.Seed = seed
	log.Info().Int64("Seed", seed).Msg("Splitting dataset.")

	if report.Splits, err = Split(report.Merged, f.conf.Ratios, rng); err != nil {
		return nil, err
	}

	manifest, diagnostics := BuildManifest(NewResolver(f.fs, f.conf.SearchDirs()...), report.Splits, f.conf.Dest)
	report.Manifest = manifest
	report.Diagnostics = append(report.Diagnostics, diagnostics...)

	return report, nil
}

// Run prepares the dataset and writes it to the destination.
func (f *Fusion) Run() (*Report, error) {
	report, err := f.Prepare()
	if err != nil {
		return nil, err
	}

	diagnostics, err := f.Emit(report)
	report.Diagnostics = append(report.Diagnostics, diagnostics...)
	if err != nil {
		return report, err
	}

	log.Info().Str("Dest", f.conf.Dest).Int("Images", len(report.Merged.Images)).
		Int("Annotations", len(report.Merged.Annotations)).
		Int("Categories", len(report.Merged.Categories)).
		Int("Diagnostics", len(report.Diagnostics)).
		Msg("Fusion completed.")
	return report, nil
}

// Emit writes the manifest: image copies, one annotation file per subset
// and the data.yaml summary.
func (f *Fusion) Emit(report *Report) (utils.Diagnostics, error) {
	if err := f.CreateDestFolder(); err != nil {
		return nil, fmt.Errorf("create destination folder: %w", err)
	}

	copier, err := NewCopier(f.fs, f.conf.Workers)
	if err != nil {
		return nil, err
	}
	defer copier.Release()

	var diagnostics utils.Diagnostics
	for _, sm := range report.Manifest {
		diagnostics = append(diagnostics, copier.Copy(sm.Items)...)

		if err := coco.Save(f.fs, *sm.Dataset, sm.AnnotationPath); err != nil {
			return diagnostics, fmt.Errorf("save %s annotations: %w", sm.Subset, err)
		}
		log.Info().Str("Subset", string(sm.Subset)).Str("Dir", sm.Dir).
			Int("Images", len(sm.Dataset.Images)).Int("Copied", len(sm.Items)).
			Msg("Subset saved.")
	}

	summary := config.NewDataset(report.Seed, report.Merged.Categories...)
	if err := config.SaveDataset(f.fs, *summary, f.conf.Dest); err != nil {
		return diagnostics, fmt.Errorf("save data.yaml: %w", err)
	}

	return diagnostics, nil
}

// CreateDestFolder creates <dest>/<subset>/images for every subset.
func (f *Fusion) CreateDestFolder() error {
	for _, s := range utils.Subsets {
		if err := f.fs.MkdirAll(utils.ImagePath(f.conf.Dest, s, ""), os.ModePerm); err != nil {
			return err
		}
	}
	return nil
}
