package extract

import "strings"

// Slice returns the region of body that follows the first occurrence of
// start and precedes the next occurrence of end. A missing start marker
// begins the region at offset 0. An empty end marker runs it to the end of
// body; a non-empty end marker that never occurs yields "". The booleans report whether each marker was found (an
// empty end marker counts as found).
func Slice(body, start, end string) (string, bool, bool) {
	from := 0
	idx := strings.Index(body, start)
	startFound := idx >= 0
	if startFound {
		from = idx + len(start)
	}
	rest := body[from:]
	if end == "" {
		return rest, startFound, true
	}
	stop := strings.Index(rest, end)
	if stop < 0 {
		return "", startFound, false
	}
	return rest[:stop], startFound, true
}
