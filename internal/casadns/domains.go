package casadns

import "strings"

// HostSuffix is the full hostname suffix users sometimes paste along
// with their label.
const HostSuffix = ".casadns.eu"

// NormalizeDomains turns free-form user input into the canonical
// comma-joined list of lowercase CasaDNS labels. Items are trimmed,
// lowercased and stripped of a trailing ".casadns.eu"; empty items are
// dropped. Order is preserved and duplicates are kept. The function is
// idempotent, so already-normalized input passes through unchanged.
func NormalizeDomains(raw string) string {
	var labels []string

	for _, item := range strings.Split(raw, ",") {
		label := strings.ToLower(strings.TrimSpace(item))
		if label == "" {
			continue
		}

		label = strings.TrimSuffix(label, HostSuffix)
		if label == "" {
			continue
		}

		labels = append(labels, label)
	}

	return strings.Join(labels, ",")
}
