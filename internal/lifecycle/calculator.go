package lifecycle

import (
	"time"

	"resale-price-engine/internal/domain"
)

// daysBetween counts whole calendar days between two millisecond timestamps,
// both truncated to UTC midnight. A purchase and sale on the same calendar
// day is 0 days on the shelf.
func daysBetween(fromMs, toMs int64) int {
	from := time.UnixMilli(fromMs).UTC().Truncate(24 * time.Hour)
	to := time.UnixMilli(toMs).UTC().Truncate(24 * time.Hour)
	return int(to.Sub(from).Hours() / 24)
}

// ComputeDerived recomputes an item's lifecycle fields in place.
//
// Shelf life runs from purchase to sale, or to now while the item is unsold.
// ROI and profit per shelf day stay nil until a sale closes the position;
// an unsold item has no realized profit to spread over days.
func ComputeDerived(item *domain.InventoryItem, nowMs int64) {
	end := nowMs
	if item.SaleDate != nil {
		end = *item.SaleDate
	}

	days := daysBetween(item.PurchaseDate, end)
	if days < 0 {
		days = 0
	}
	item.ShelfLifeDays = days

	if item.SaleDate == nil || item.SalePriceCents == nil {
		item.ROIPercentage = nil
		item.ProfitPerShelfDay = nil
		return
	}

	profit := *item.SalePriceCents - item.PurchasePriceCents

	if item.PurchasePriceCents > 0 {
		roi := float64(profit) / float64(item.PurchasePriceCents) * 100
		item.ROIPercentage = &roi
	} else {
		item.ROIPercentage = nil
	}

	// Same-day flips divide by one day, not zero.
	divisor := days
	if divisor < 1 {
		divisor = 1
	}
	perDay := float64(profit) / float64(divisor)
	item.ProfitPerShelfDay = &perDay
}
