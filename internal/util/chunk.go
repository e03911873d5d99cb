package util

import (
	"fmt"
	"path/filepath"
	"strconv"
)

// ChunkSize is the number of entries stored per chunk directory inside wav
// and mel stages.
const ChunkSize = 500

// ChunkName returns the bucket directory for entry id i, e.g. "0000-0499".
// The result depends only on (i, chunkSize, maximum): the range is padded to
// the digit width of maximum and its end is clamped to maximum.
func ChunkName(i, chunkSize, maximum int) string {
	if chunkSize <= 0 {
		chunkSize = ChunkSize
	}
	if maximum < i {
		maximum = i
	}

	start := (i / chunkSize) * chunkSize
	end := start + chunkSize - 1
	if end > maximum {
		end = maximum
	}

	width := len(strconv.Itoa(maximum))
	return fmt.Sprintf("%0*d-%0*d", width, start, width, end)
}

// ChunkedPath returns "<chunk>/<entryID><ext>" relative to a stage directory
func ChunkedPath(entryID, count int, ext string) string {
	return filepath.Join(ChunkName(entryID, ChunkSize, count-1), strconv.Itoa(entryID)+ext)
}
