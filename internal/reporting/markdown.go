package reporting

import (
	"fmt"
	"strings"
	"time"
)

// RenderMarkdown renders a report as a Markdown string.
func RenderMarkdown(r *Report) string {
	var sb strings.Builder

	sb.WriteString("# Arbitrage Report\n\n")
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", r.GeneratedAt.Format(time.RFC3339)))

	sb.WriteString("## Summary\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Products | %d |\n", r.Summary.Products))
	sb.WriteString(fmt.Sprintf("| Opportunities | %d |\n", r.Summary.Opportunities))
	sb.WriteString(fmt.Sprintf("| Best Profit | %s |\n", formatCents(r.Summary.BestProfitCents)))
	sb.WriteString(fmt.Sprintf("| Best Margin | %.2f%% |\n", r.Summary.BestMarginPercent))
	sb.WriteString(fmt.Sprintf("| Inventory Items | %d |\n", r.Summary.InventoryItems))
	sb.WriteString(fmt.Sprintf("| Unsold Items | %d |\n", r.Summary.UnsoldItems))
	sb.WriteString("\n")

	sb.WriteString("## Top Opportunities\n\n")
	if len(r.Opportunities) > 0 {
		sb.WriteString("| Product | Size | Retail | Resale | Profit | Margin | Score |\n")
		sb.WriteString("|---------|------|--------|--------|--------|--------|-------|\n")
		for _, o := range r.Opportunities {
			name := o.ProductName
			if name == "" {
				name = o.ProductID
			}
			sb.WriteString(fmt.Sprintf("| %s | %s | %s %s | %s %s | %s | %.2f%% | %.2f |\n",
				name, o.Size,
				formatCents(o.RetailPriceCents), o.Currency,
				formatCents(o.ResalePriceCents), o.Currency,
				formatCents(o.ProfitCents), o.MarginPercent, o.Score))
		}
	} else {
		sb.WriteString("No opportunities found.\n")
	}
	sb.WriteString("\n")

	sb.WriteString("## Inventory\n\n")
	if len(r.Inventory) > 0 {
		sb.WriteString("| Item | Product | Status | Shelf Days | ROI | Profit/Day |\n")
		sb.WriteString("|------|---------|--------|------------|-----|------------|\n")
		for _, item := range r.Inventory {
			name := item.ProductName
			if name == "" {
				name = item.ProductID
			}
			sb.WriteString(fmt.Sprintf("| %s | %s | %s | %d | %s | %s |\n",
				item.ItemID, name, item.Status, item.ShelfLifeDays,
				formatPercent(item.ROIPercentage), formatFloat(item.ProfitPerShelfDay)))
		}
	} else {
		sb.WriteString("No inventory items.\n")
	}
	sb.WriteString("\n")

	return sb.String()
}

// formatCents renders a minor-unit amount as a decimal string.
func formatCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}

func formatPercent(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%.2f%%", *v)
}

func formatFloat(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%.2f", *v)
}
