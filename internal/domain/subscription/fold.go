package subscription

import "time"

// Fold collapses a user's purchase cycles into one record per product
// identity: the cycle with the latest end date wins its group, and its
// status is derived by comparing that end date to now minus the
// clock-skew tolerance. A cycle without a parseable end date can never
// win a group but does not suppress siblings that have one. Ties on the
// end date are broken by input order (first cycle wins), which keeps the
// result deterministic for a stable input. Output group order follows
// first appearance in the input, so folding the winners again returns
// them unchanged.
func Fold(purchases []PurchaseRecord, now time.Time, clockSkew time.Duration) []FoldedPurchase {
	type group struct {
		winner *PurchaseRecord
		label  string
		cycles int
	}

	groups := make(map[ProductIdentity]*group)
	var order []ProductIdentity

	for i := range purchases {
		p := &purchases[i]
		id := Canonicalize(*p)

		g, ok := groups[id]
		if !ok {
			g = &group{label: foldLabel(*p)}
			groups[id] = g
			order = append(order, id)
		}
		g.cycles++

		if p.EndsAt == nil {
			continue
		}
		if g.winner == nil || p.EndsAt.After(*g.winner.EndsAt) {
			g.winner = p
			g.label = foldLabel(*p)
		}
	}

	cutoff := now.Add(-clockSkew)
	folded := make([]FoldedPurchase, 0, len(order))
	for _, id := range order {
		g := groups[id]

		f := FoldedPurchase{
			Identity:     id,
			ProductLabel: g.label,
			Status:       StatusExpired,
			Cycles:       g.cycles,
		}
		if g.winner != nil {
			f.PurchaseID = g.winner.ID
			f.EndsAt = g.winner.EndsAt
			if g.winner.EndsAt.After(cutoff) {
				f.Status = StatusActive
			}
		}
		folded = append(folded, f)
	}

	return folded
}

// IsActive reports whether a cycle's end date still covers "now", with
// the clock-skew tolerance absorbing drift between the issuing and
// reading systems.
func IsActive(endsAt *time.Time, now time.Time, clockSkew time.Duration) bool {
	return endsAt != nil && endsAt.After(now.Add(-clockSkew))
}

func foldLabel(p PurchaseRecord) string {
	if label := DisplayLabel(p); label != "" {
		return label
	}
	return UnknownLabel
}
