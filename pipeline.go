package bmpreduce

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// OutputSuffix is appended to the name of each source bitmap, minus its
// extension, to form the directory Scan writes its outputs to.
const OutputSuffix = ".reduced"

const scanWorkers = 4

func (c *Converter) findBitmaps(ctx context.Context, base string) (<-chan string, <-chan error, error) {
	out := make(chan string)
	errc := make(chan error, 1)
	go func() {
		defer close(out)
		defer close(errc)
		errc <- filepath.Walk(base, func(file string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}

			// Ignore any hidden files or directories, otherwise we end up fighting with things like Spotlight, etc.
			if info.Name()[0] == '.' && file != base {
				if info.Mode().IsDir() {
					return filepath.SkipDir
				}
				return nil
			}

			// Don't descend into our own output
			if info.Mode().IsDir() {
				if strings.HasSuffix(info.Name(), OutputSuffix) {
					return filepath.SkipDir
				}
				return nil
			}

			if !info.Mode().IsRegular() || !strings.EqualFold(filepath.Ext(file), ".bmp") {
				return nil
			}

			select {
			case out <- file:
			case <-ctx.Done():
				return errors.New("walk cancelled")
			}

			return nil
		})
	}()
	return out, errc, nil
}

func (c *Converter) convertBitmap(file string, opts Options) error {
	dir := strings.TrimSuffix(file, filepath.Ext(file)) + OutputSuffix
	files := DefaultFiles(dir)
	files.Input = file

	if c.catalog != nil {
		sha, _, err := hashFile(file)
		if err != nil {
			return err
		}

		complete, err := c.catalog.Complete(sha, files.outputs(opts))
		if err != nil {
			return err
		}
		if complete {
			c.logger.Printf("Skipping \"%s\", already converted\n", file)
			return nil
		}
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	c.logger.Printf("Converting \"%s\" into \"%s\"\n", file, dir)

	return c.Run(files, opts)
}

func (c *Converter) bitmapWorker(ctx context.Context, in <-chan string, opts Options) (<-chan error, error) {
	errc := make(chan error, 1)
	go func() {
		defer close(errc)
		var errs []error
		for file := range in {
			if err := c.convertBitmap(file, opts); err != nil {
				c.logger.Printf("Unable to convert \"%s\": %v\n", file, err)
				errs = append(errs, fmt.Errorf("%s: %w", file, err))
			}
		}
		errc <- errors.Join(errs...)
	}()
	return errc, nil
}

func waitForPipeline(errs ...<-chan error) error {
	var all []error
	for err := range mergeErrors(errs...) {
		if err != nil {
			all = append(all, err)
		}
	}
	return errors.Join(all...)
}

func mergeErrors(cs ...<-chan error) <-chan error {
	var wg sync.WaitGroup
	out := make(chan error, len(cs))
	wg.Add(len(cs))
	for _, c := range cs {
		go func(c <-chan error) {
			for n := range c {
				out <- n
			}
			wg.Done()
		}(c)
	}
	go func() {
		wg.Wait()
		close(out)
	}()
	return out
}

// Scan converts every bitmap found below path, writing the outputs for
// "name.bmp" into the directory "name.reduced" alongside it. Bitmaps already
// converted successfully according to the catalog, with every output still in
// place, are skipped. A bitmap that fails to convert does not stop the scan;
// Scan waits for every bitmap to be tried and returns the failures joined
// together, each prefixed with the path of its bitmap.
func (c *Converter) Scan(path string, opts Options) error {
	dir, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	ctx, cancelFunc := context.WithCancel(context.Background())
	defer cancelFunc()

	var errcList []<-chan error

	files, errc, err := c.findBitmaps(ctx, dir)
	if err != nil {
		return err
	}
	errcList = append(errcList, errc)

	for i := 0; i < scanWorkers; i++ {
		errc, err := c.bitmapWorker(ctx, files, opts)
		if err != nil {
			return err
		}
		errcList = append(errcList, errc)
	}

	return waitForPipeline(errcList...)
}
