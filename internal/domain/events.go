package domain

// PriceRecordChanged is published by the quote ingestor after an upsert that
// actually inserted or updated a canonical record. Consumed asynchronously by
// the opportunity matcher; recomputation is idempotent, so replays are safe.
type PriceRecordChanged struct {
	RecordID  string
	ProductID string
	Size      Size
}
