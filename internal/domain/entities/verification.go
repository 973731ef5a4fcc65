package entities

// VerificationState is the trust classification of an item, derived on read
type VerificationState string

const (
	VerificationStateUnverified          VerificationState = "unverified"
	VerificationStateVerified            VerificationState = "verified"
	VerificationStateVerifiedNeedsReview VerificationState = "verified_needs_review"
	VerificationStateVerifiedExpired     VerificationState = "verified_expired"
)

// VerificationStats aggregates trust state over a store's items
type VerificationStats struct {
	Total       int `json:"total"`
	Verified    int `json:"verified"`
	Unverified  int `json:"unverified"`
	NeedsReview int `json:"needs_review"`
	Expired     int `json:"expired"`
}

// BatchResult is the outcome of one id in a batch operation
type BatchResult struct {
	ItemID string `json:"item_id"`
	Err    error  `json:"-"`
}

// OK reports whether the operation succeeded for this id
func (r BatchResult) OK() bool {
	return r.Err == nil
}
