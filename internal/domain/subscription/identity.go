package subscription

import "strings"

// ProductIdentity is the normalized slug that groups every purchase
// cycle representing "the same product" for a user. The UI groups rows
// by display label, so reconciliation must group the same way even when
// the raw keys differ.
type ProductIdentity string

// UnknownLabel is the display label used when a purchase carries no
// descriptor at all. The empty identity still groups consistently.
const UnknownLabel = "unknown"

// Canonicalize derives the product identity of a purchase: the first
// non-empty of name, key and ID, slugified. Total — a purchase with no
// descriptors yields the empty identity.
func Canonicalize(p PurchaseRecord) ProductIdentity {
	return CanonicalizeLabel(DisplayLabel(p))
}

// DisplayLabel returns the human-visible label of a purchase: the first
// non-empty of product name, catalog key and opaque product ID.
func DisplayLabel(p PurchaseRecord) string {
	if s := strings.TrimSpace(p.ProductName); s != "" {
		return s
	}
	if s := strings.TrimSpace(p.ProductKey); s != "" {
		return s
	}
	return strings.TrimSpace(p.ProductID)
}

// CanonicalizeLabel slugifies a display label: lower-case, every run of
// characters outside [a-z0-9] collapsed to a single underscore, leading
// and trailing underscores trimmed.
func CanonicalizeLabel(label string) ProductIdentity {
	lower := strings.ToLower(strings.TrimSpace(label))

	var b strings.Builder
	b.Grow(len(lower))
	pendingSep := false
	for _, r := range lower {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSep = false
			b.WriteRune(r)
			continue
		}
		pendingSep = true
	}

	return ProductIdentity(b.String())
}
