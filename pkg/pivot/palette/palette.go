// Package palette maps entity categories to display colors.
package palette

import (
	"fmt"
	"sort"
)

// categoryColors is the fixed category to color table.
var categoryColors = map[string]int{
	"event":   0x1f77b4,
	"ip":      0xff7f0e,
	"user":    0x2ca02c,
	"host":    0xd62728,
	"file":    0x9467bd,
	"hash":    0x8c564b,
	"url":     0xe377c2,
	"domain":  0x7f7f7f,
	"process": 0xbcbd22,
	"alert":   0x17becf,
	"mac":     0xaec7e8,
	"port":    0xffbb78,
}

// PaletteLookupError reports a category the palette does not define.
type PaletteLookupError struct {
	Category string
}

func (e *PaletteLookupError) Error() string {
	return fmt.Sprintf("palette: no color for category %q", e.Category)
}

// ColorInt returns the color of category as a 24-bit integer.
func ColorInt(category string) (int, error) {
	c, ok := categoryColors[category]
	if !ok {
		return 0, &PaletteLookupError{Category: category}
	}
	return c, nil
}

// Hex renders a 24-bit color as #rrggbb.
func Hex(color int) string {
	return fmt.Sprintf("#%06x", color&0xffffff)
}

// Lookup returns the hex color of category.
func Lookup(category string) (string, error) {
	c, err := ColorInt(category)
	if err != nil {
		return "", err
	}
	return Hex(c), nil
}

// Categories lists the defined categories in name order.
func Categories() []string {
	out := make([]string, 0, len(categoryColors))
	for k := range categoryColors {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
