package idhash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"resale-price-engine/internal/domain"
)

// ComputeRecordID computes a deterministic record_id for a canonical price
// record using SHA256 over its natural key.
// Formula: SHA256(product_id|source_type|source_product_id|size_key)
// Returns hex-encoded hash (64 characters).
//
// The size key is "" for sizeless records, so the secondary uniqueness rule
// (product, source, source_product_id) for sizeless records falls out of the
// same hash.
func ComputeRecordID(
	productID string,
	source domain.SourceType,
	sourceProductID string,
	size domain.Size,
) string {
	data := fmt.Sprintf("%s|%s|%s|%s",
		productID,
		string(source),
		sourceProductID,
		size.Key(),
	)

	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}
