package reporting

import (
	"fmt"
	"strings"
)

// RenderCSV renders the opportunity rows as a CSV string.
func RenderCSV(r *Report) string {
	var sb strings.Builder

	sb.WriteString("product_id,product_name,size,retail_price_cents,resale_price_cents,currency,profit_cents,margin_percent,score\n")

	for _, o := range r.Opportunities {
		sb.WriteString(fmt.Sprintf("%s,%s,%s,%d,%d,%s,%d,%.4f,%.4f\n",
			o.ProductID,
			csvEscape(o.ProductName),
			csvEscape(o.Size),
			o.RetailPriceCents,
			o.ResalePriceCents,
			o.Currency,
			o.ProfitCents,
			o.MarginPercent,
			o.Score,
		))
	}

	return sb.String()
}

// csvEscape quotes a field when it contains a delimiter or quote.
func csvEscape(s string) string {
	if !strings.ContainsAny(s, ",\"\n") {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
