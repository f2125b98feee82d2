package services

import (
	"io"
	"os"
	"path"
	"sync"

	"github.com/evilmagics/coco_fusion/internal/utils"
	"github.com/panjf2000/ants/v2"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

const StageCopy = "copy"

// Copier performs the physical copies of a manifest on a worker pool.
type Copier struct {
	fs   afero.Fs
	pool *ants.Pool
}

func NewCopier(fs afero.Fs, workers int) (*Copier, error) {
	if workers < 1 {
		workers = 1
	}
	pool, err := ants.NewPool(workers, ants.WithPreAlloc(true))
	if err != nil {
		return nil, err
	}

	return &Copier{fs: fs, pool: pool}, nil
}

func (c *Copier) Release() { c.pool.Release() }

// Copy copies every item and waits for all of them. Failed copies are
// returned as diagnostics in item order.
func (c *Copier) Copy(items []Item) utils.Diagnostics {
	var (
		wg   sync.WaitGroup
		errs = make([]error, len(items))
	)

	for i := range items {
		item := items[i]
		wg.Add(1)
		err := c.pool.Submit(func() {
			defer wg.Done()
			errs[i] = c.copyItem(item)
		})
		if err != nil {
			wg.Done()
			errs[i] = err
		}
	}
	wg.Wait()

	var diagnostics utils.Diagnostics
	for i, err := range errs {
		if err != nil {
			diagnostics.Add(StageCopy, items[i].SrcPath, err)
			continue
		}
		log.Debug().Str("Src", utils.RightWrap(items[i].SrcPath, 100)).Str("Dst", items[i].DstFilename).Msg("Image copied.")
	}
	return diagnostics
}

func (c *Copier) copyItem(item Item) (err error) {
	src, err := c.fs.Open(item.SrcPath)
	if err != nil {
		return err
	}
	defer src.Close()

	info, err := src.Stat()
	if err != nil {
		return err
	}

	if err = c.fs.MkdirAll(path.Dir(item.DstPath), os.ModePerm); err != nil {
		return err
	}

	dst, err := c.fs.Create(item.DstPath)
	if err != nil {
		return err
	}

	// Delete file on error
	defer func() {
		if err != nil {
			c.fs.Remove(item.DstPath)
		}
	}()

	if _, err = io.Copy(dst, src); err != nil {
		dst.Close()
		return err
	}
	if err = dst.Close(); err != nil {
		return err
	}

	return c.fs.Chtimes(item.DstPath, info.ModTime(), info.ModTime())
}
