package types

import "time"

// Review is the post-completion feedback either party leaves on an order.
type Review struct {
	Rating      int       `json:"rating"`
	Comment     string    `json:"comment"`
	SubmittedAt time.Time `json:"submittedAt"`
}
