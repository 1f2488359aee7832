package bmpreduce

import (
	"crypto/sha1"
	"fmt"
	"io"
	"os"
)

func hashFile(file string) (string, int64, error) {
	f, err := os.Open(file)
	if err != nil {
		return "", 0, err
	}
	defer f.Close()

	h := sha1.New()
	n, err := io.Copy(h, f)
	if err != nil {
		return "", 0, err
	}

	return fmt.Sprintf("%.*X", sha1.Size<<1, h.Sum(nil)), n, nil
}
