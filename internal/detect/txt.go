package detect

import "strings"

// TXTRecord matches TXT record values against known provider patterns.
// Each txt value is checked against all patterns using substring matching.
// Duplicate detections (same provider+txt) are suppressed.
func (d *Detector) TXTRecord(txts []string) []Detection {
	seen := dedup{}
	var detections []Detection
	for _, txt := range txts {
		for _, p := range d.patterns.TXT {
			if !strings.Contains(txt, p.Substring) || !seen.first(p.Provider, txt) {
				continue
			}
			detections = append(detections, Detection{Type: p.Type, Provider: p.Provider, Evidence: txt, Source: "txt"})
		}
	}
	return detections
}
