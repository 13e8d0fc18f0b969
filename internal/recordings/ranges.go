package recordings

import (
	"strconv"
	"strings"
)

// ChunkSize bounds how many bytes a single media request may return (5 MiB).
// Playback never gets a full-object response; clients page through the file
// with Range requests.
const ChunkSize = 5 * 1024 * 1024

// resolveRange turns a Range header into an inclusive byte window against an
// object of the given size. Missing start defaults to 0, missing end to
// start+ChunkSize-1, and end is clamped to size-1. Malformed syntax falls
// back to the same defaults rather than failing the request.
func resolveRange(header string, size int64) (start, end int64) {
	end = -1
	if header != "" {
		spec := strings.TrimPrefix(header, "bytes=")
		parts := strings.SplitN(spec, "-", 2)
		if v, err := strconv.ParseInt(parts[0], 10, 64); err == nil && v >= 0 {
			start = v
		}
		if len(parts) == 2 && parts[1] != "" {
			if v, err := strconv.ParseInt(parts[1], 10, 64); err == nil && v >= start {
				end = v
			}
		}
	}
	if end < 0 {
		end = start + ChunkSize - 1
	}
	if end > size-1 {
		end = size - 1
	}
	return start, end
}
