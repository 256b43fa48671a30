package keylist

import (
	"bufio"
	"io"
	"os"
	"strings"
)

// Read parses a key list: one key per line, surrounding whitespace trimmed,
// blank lines and #-comments skipped. The probing core never sees this
// filtering; it receives clean keys only.
func Read(r io.Reader) ([]string, error) {
	var keys []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		keys = append(keys, line)
	}
	return keys, sc.Err()
}

// ReadFile reads a key list from disk.
func ReadFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Read(f)
}
