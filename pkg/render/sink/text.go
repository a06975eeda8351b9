package sink

import (
	"bytes"
	"encoding/xml"
)

const (
	fontHeightRatio = 0.6
	fontWidthRatio  = 0.85
	fontCharWidth   = 0.55
	fontSizeMin     = 8.0
	fontSizeMax     = 18.0
)

// fontSize picks a size that fits label into a w×h box, or 0 if even the
// minimum size does not fit.
func fontSize(w, h int, label string) float64 {
	n := max(1, len(label))
	byHeight := float64(h) * fontHeightRatio
	byWidth := float64(w) * fontWidthRatio / (float64(n) * fontCharWidth)
	size := min(fontSizeMax, byHeight, byWidth)
	if size < fontSizeMin {
		return 0
	}
	return size
}

func escapeXML(s string) string {
	var buf bytes.Buffer
	xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
