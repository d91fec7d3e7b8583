package detect

// EmailProvider matches MX exchange hostnames against known email provider
// patterns. The first matching pattern wins for each host.
func (d *Detector) EmailProvider(mxHosts []string) []Detection {
	var detections []Detection
	seen := dedup{}
	for _, host := range mxHosts {
		for _, p := range d.patterns.Email {
			if !matchSuffix(host, p.Suffix) {
				continue
			}
			if seen.first(p.Provider, host) {
				detections = append(detections, Detection{Type: TypeEmail, Provider: p.Provider, Evidence: host, Source: "mx"})
			}
			break
		}
	}
	return detections
}
