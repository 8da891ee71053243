package domain

// QuoteBatch is a group of raw quotes delivered together by a source adapter.
// Batches have no ordering guarantee between each other; the conditional
// upsert resolves conflicts by observation time.
type QuoteBatch struct {
	BatchID    string // uuid, assigned by the adapter
	SourceType SourceType
	Quotes     []*RawQuote
}
