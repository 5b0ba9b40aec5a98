package domain

import (
	"fmt"
	"strings"
)

// ListingStatus is the moderation state of a vehicle listing.
type ListingStatus string

const (
	StatusPending     ListingStatus = "pending"
	StatusUnderReview ListingStatus = "under_review"
	StatusApproved    ListingStatus = "approved"
	StatusRejected    ListingStatus = "rejected"
)

// AllStatuses lists every moderation state in workflow order.
var AllStatuses = []ListingStatus{StatusPending, StatusUnderReview, StatusApproved, StatusRejected}

// transitions is the single source of truth for the moderation workflow.
// A rejected listing may be rejected again so the reason can be corrected.
var transitions = map[ListingStatus][]ListingStatus{
	StatusPending:     {StatusUnderReview, StatusApproved, StatusRejected},
	StatusUnderReview: {StatusPending, StatusApproved, StatusRejected},
	StatusApproved:    {StatusUnderReview, StatusRejected},
	StatusRejected:    {StatusPending, StatusUnderReview, StatusApproved, StatusRejected},
}

// ParseStatus converts user input into a ListingStatus.
func ParseStatus(raw string) (ListingStatus, error) {
	s := ListingStatus(strings.ToLower(strings.TrimSpace(raw)))
	if s.Valid() {
		return s, nil
	}
	return "", fmt.Errorf("invalid status %q", raw)
}

func (s ListingStatus) Valid() bool {
	_, ok := transitions[s]
	return ok
}

// CanTransition reports whether the workflow allows moving from one state to another.
func CanTransition(from, to ListingStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// CheckTransition returns ErrInvalidTransition when the move is not allowed.
func CheckTransition(from, to ListingStatus) error {
	if !to.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidTransition, to)
	}
	if !CanTransition(from, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	return nil
}

// SellerEditable reports whether the seller may still edit a listing in this state.
func (s ListingStatus) SellerEditable() bool {
	return s == StatusPending || s == StatusRejected
}
