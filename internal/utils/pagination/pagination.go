package pagination

// Page is normalized offset-based pagination state. Page boundaries are
// deterministic for identical data, but not stable under concurrent writes
// inside the window, the usual offset pagination caveat.
type Page struct {
	Number int
	Size   int
}

// Normalize clamps raw page/size parameters to sane bounds.
// Page numbers are 1-based; size falls back to defaultSize and is capped at
// maxSize.
func Normalize(page, size, defaultSize, maxSize int) Page {
	if page < 1 {
		page = 1
	}
	if size <= 0 {
		size = defaultSize
	}
	if size > maxSize {
		size = maxSize
	}
	return Page{Number: page, Size: size}
}

// Offset returns the row offset for a LIMIT/OFFSET query.
func (p Page) Offset() int {
	return (p.Number - 1) * p.Size
}

// Slice cuts the page window out of an already-ranked in-memory result set.
func Slice[T any](items []T, p Page) []T {
	start := p.Offset()
	if start >= len(items) {
		return []T{}
	}
	end := start + p.Size
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}
