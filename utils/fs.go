package utils

import (
	"bufio"
	"errors"
	"io"
	"os"

	"github.com/dianwoshishi/rtsp-bruter/logger"
)

// IsFileExists checks if a file exists at the given path.
func IsFileExists(filePath string) bool {
	_, err := os.Stat(filePath)
	if err == nil {
		return true
	}
	if errors.Is(err, os.ErrNotExist) {
		return false
	}
	return false
}

// LoadLines reads all non-empty lines from a file into a slice.
// If filename is not a real file, it returns a single-element slice
// containing the value itself, so flags accept both inline values and
// list files.
func LoadLines(filename string) []string {
	if !IsFileExists(filename) {
		return []string{filename}
	}
	f, err := os.Open(filename)
	if err != nil {
		return nil
	}
	defer f.Close()

	return ReadLines(f)
}

// ReadLines collects non-empty lines from r.
func ReadLines(r io.Reader) []string {
	var lines []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if line != "" {
			lines = append(lines, line)
		}
	}
	if err := scanner.Err(); err != nil {
		logger.Debugf("error while reading lines: %v", err)
	}
	return lines
}
