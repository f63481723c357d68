package template

// Row is one raw search result.
type Row = map[string]any

// Cache keeps the raw rows of every searched pivot of a session, keyed by
// the pivot's position. It is an optimization only: an absent entry reads
// as empty. A nil *Cache is valid and always empty.
type Cache struct {
	rows map[int][]Row
}

func NewCache() *Cache {
	return &Cache{rows: make(map[int][]Row)}
}

// Rows returns the rows cached at position i.
func (c *Cache) Rows(i int) []Row {
	if c == nil {
		return nil
	}
	return c.rows[i]
}

// Put stores rows at position i.
func (c *Cache) Put(i int, rows []Row) {
	if c == nil {
		return
	}
	if c.rows == nil {
		c.rows = make(map[int][]Row)
	}
	c.rows[i] = rows
}

// Shift moves entries at or after position from by delta, following an
// insert (delta 1) or a splice (delta -1) of the pivot list. The entry at
// a spliced position is dropped.
func (c *Cache) Shift(from, delta int) {
	if c == nil || delta == 0 {
		return
	}
	next := make(map[int][]Row, len(c.rows))
	for i, rows := range c.rows {
		switch {
		case i < from:
			next[i] = rows
		case delta < 0 && i == from:
		default:
			next[i+delta] = rows
		}
	}
	c.rows = next
}

func (c *Cache) Reset() {
	if c == nil {
		return
	}
	c.rows = make(map[int][]Row)
}

func (c *Cache) Len() int {
	if c == nil {
		return 0
	}
	return len(c.rows)
}
