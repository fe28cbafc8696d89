// Package input reads the list of video URLs to process.
package input

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
)

var (
	ErrNotFound = errors.New("input urls file not found")
	ErrNoURLs   = errors.New("no urls found in input file")
)

// LoadURLs reads path and returns its URLs in file order. Blank lines and
// lines starting with '#' are skipped, as are repeated URLs.
func LoadURLs(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("open input urls: %w", err)
	}
	defer f.Close()

	urls, err := ParseURLs(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return urls, nil
}

func ParseURLs(r io.Reader) ([]string, error) {
	var urls []string
	seen := make(map[string]struct{})

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if _, dup := seen[line]; dup {
			continue
		}
		seen[line] = struct{}{}
		urls = append(urls, line)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(urls) == 0 {
		return nil, ErrNoURLs
	}
	return urls, nil
}
