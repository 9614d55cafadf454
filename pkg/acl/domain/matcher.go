package domain

import (
	"sort"
	"strings"

	"golang.org/x/net/idna"
)

// idnaProfile converts Unicode domain labels to their ASCII (punycode) form
// so that matching is always performed over a canonical ASCII key, the way
// browsers and resolvers compare IDN host names.
var idnaProfile = idna.New(idna.MapForLookup(), idna.Transitional(true))

// normalizeDomain lowercases and ASCII-folds a domain name. Names that fail
// IDNA conversion (malformed input) fall back to a plain lowercase form so a
// lookup never panics on attacker-controlled input.
func normalizeDomain(domain string) string {
	domain = strings.ToLower(domain)
	if ascii, err := idnaProfile.ToASCII(domain); err == nil {
		return ascii
	}
	return domain
}

const (
	// Special labels for domain matching
	prefixLabel = '\r' // Marks suffix patterns (e.g., ".google.com")
	rootLabel   = '\n' // Marks root domain patterns (e.g., "google.com")
)

// Matcher provides efficient domain name matching using succinct trie.
type Matcher struct {
	set *succinctSet
}

// NewMatcher creates a new domain matcher from domain lists.
// domains: exact domain matches
// domainSuffix: suffix matches (e.g., "google.com" matches "*.google.com")
func NewMatcher(domains []string, domainSuffix []string) *Matcher {
	if len(domains) == 0 && len(domainSuffix) == 0 {
		return &Matcher{set: &succinctSet{}}
	}

	domainList := make([]string, 0, len(domains)+len(domainSuffix))
	seen := make(map[string]bool, len(domains)+len(domainSuffix))

	// Process suffix domains
	for _, raw := range domainSuffix {
		hasDot := strings.HasPrefix(raw, ".")
		domain := normalizeDomain(strings.TrimPrefix(raw, "."))
		if hasDot {
			domain = "." + domain
		}
		if seen[domain] {
			continue
		}
		seen[domain] = true

		if hasDot {
			// Domain starts with dot: only match subdomains
			domainList = append(domainList, reverseDomain(string(prefixLabel)+domain))
		} else {
			// Domain without dot: match both exact and subdomains
			// This uses rootLabel to enable flexible matching
			domainList = append(domainList, reverseDomain(string(rootLabel)+domain))
		}
	}

	// Process exact domains
	for _, raw := range domains {
		domain := normalizeDomain(raw)
		if seen[domain] {
			continue
		}
		seen[domain] = true
		domainList = append(domainList, reverseDomain(domain))
	}

	// Sort for trie construction
	sort.Strings(domainList)

	return &Matcher{set: newSuccinctSet(domainList)}
}

// Match checks if the given domain matches any rule.
func (m *Matcher) Match(domain string) bool {
	if m.set == nil || len(m.set.labels) == 0 {
		return false
	}
	return m.has(reverseDomain(normalizeDomain(domain)))
}

// bitmapEnd reports whether bmIdx is at or past a node-boundary bit (or past
// the end of the bitmap entirely, which behaves the same as a boundary).
func (m *Matcher) bitmapEnd(bmIdx int) bool {
	return bmIdx >= m.set.labelBitmap.Len() || m.set.labelBitmap.Get(bmIdx)
}

// has performs the actual matching on the reversed domain.
func (m *Matcher) has(key string) bool {
	if m.set.labelBitmap == nil || m.set.labelBitmap.Len() == 0 || len(m.set.labels) == 0 {
		return false
	}

	var nodeId, bmIdx int

	// Traverse the trie character by character
	for i := 0; i < len(key); i++ {
		currentChar := key[i]

		// Check all edges from current node
		for {
			// Check if we've reached the end of this node's edges
			if m.bitmapEnd(bmIdx) {
				return false // No matching edge found
			}

			// Bounds check for labels array
			labelIdx := bmIdx - nodeId
			if labelIdx < 0 || labelIdx >= len(m.set.labels) {
				return false
			}

			nextLabel := m.set.labels[labelIdx]

			// Check for suffix match marker
			if nextLabel == prefixLabel {
				return true // Found suffix match
			}

			// Check for root domain marker
			if nextLabel == rootLabel {
				nextNodeId := countZeros(m.set.labelBitmap, bmIdx+1)
				hasNext := getBit(m.set.leaves, nextNodeId)
				// If current char is dot and node is leaf, we have subdomain match
				if currentChar == '.' && hasNext {
					return true
				}
			}

			// Found matching character
			if nextLabel == currentChar {
				break
			}

			bmIdx++
		}

		// Move to next node
		nodeId = countZeros(m.set.labelBitmap, bmIdx+1)
		if nodeId <= 0 {
			return false
		}
		bmIdx = selectIthOne(m.set.labelBitmap, nodeId-1) + 1
	}

	// Check if we're at a leaf node (exact match)
	if getBit(m.set.leaves, nodeId) {
		return true
	}

	// Check for suffix/root markers after consuming all input
	for {
		if m.bitmapEnd(bmIdx) {
			return false
		}

		labelIdx := bmIdx - nodeId
		if labelIdx < 0 || labelIdx >= len(m.set.labels) {
			return false
		}

		nextLabel := m.set.labels[labelIdx]
		if nextLabel == prefixLabel || nextLabel == rootLabel {
			return true
		}
		bmIdx++
	}
}
