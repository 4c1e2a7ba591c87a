// Package analysis turns a single market record into a short narrative. The
// narrative is synthesized from the record's own fields; an optional
// LLM-backed Commentator can append color, but it is an external
// collaborator; its absence or failure never degrades the core answer.
package analysis

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/alanyoungcy/polyanalyst/internal/domain"
)

// Summarize builds the field-derived narrative for one market. It is pure:
// same market in, same text out.
func Summarize(m domain.Market) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s\n", m.Question)
	fmt.Fprintf(&b, "Slug: %s\n", m.Slug)
	if m.Category != "" {
		fmt.Fprintf(&b, "Category: %s\n", m.Category)
	}
	if len(m.Tags) > 0 {
		fmt.Fprintf(&b, "Tags: %s\n", strings.Join(m.Tags, ", "))
	}

	status := "closed"
	if m.Active {
		status = "active"
	}
	fmt.Fprintf(&b, "Status: %s\n", status)
	fmt.Fprintf(&b, "Volume: $%s | Liquidity: $%s\n",
		FormatDollars(m.Volume), FormatDollars(m.Liquidity))

	if len(m.OutcomePrices) > 0 {
		fmt.Fprintf(&b, "Outcome prices: %s\n", strings.Join(m.OutcomePrices, " / "))
	}
	if m.EndDate != "" {
		fmt.Fprintf(&b, "Ends: %s\n", m.EndDate)
	}

	b.WriteString(assess(m))

	return b.String()
}

// assess derives a one-line read on the market from its liquidity and volume.
func assess(m domain.Market) string {
	switch {
	case !m.Active:
		return "This market is closed; the numbers above are final."
	case m.Volume >= 1e6 && m.Liquidity >= 1e5:
		return "Heavily traded and deep: prices here tend to track consensus closely."
	case m.Liquidity < 1e3:
		return "Liquidity is thin, so quoted prices may move a lot on small trades."
	default:
		return "Moderately traded; treat the current prices as a rough consensus."
	}
}

// FormatDollars renders a non-negative amount with thousands separators and
// no decimals, e.g. 2500000 -> "2,500,000".
func FormatDollars(v float64) string {
	s := strconv.FormatFloat(v, 'f', 0, 64)

	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}

	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}

// Commentator produces optional model-generated commentary for a market.
type Commentator interface {
	Comment(ctx context.Context, m domain.Market) (string, error)
}
