package detect

import "strings"

// DNSHost matches NS server hostnames against known DNS hosting provider
// patterns and returns one Detection per unique (provider, evidence) pair.
func (d *Detector) DNSHost(nsHosts []string) []Detection {
	var detections []Detection
	seen := dedup{}
	for _, host := range nsHosts {
		provider := ""
		for _, p := range d.patterns.DNS {
			if p.Contains != "" {
				if strings.Contains(strings.ToLower(host), strings.ToLower(p.Contains)) {
					provider = p.Provider
					break
				}
			} else if matchSuffix(host, p.Suffix) {
				provider = p.Provider
				break
			}
		}
		if provider == "" || !seen.first(provider, host) {
			continue
		}
		detections = append(detections, Detection{Type: TypeDNS, Provider: provider, Evidence: host, Source: "ns"})
	}
	return detections
}
