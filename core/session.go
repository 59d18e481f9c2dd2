package core

import "time"

// Session represents one customer interaction from card insertion back to Idle
type Session struct {
	ID              string    // Unique session identifier
	CardNumber      string    // Card the session was opened with
	StartedAt       time.Time // When the card was accepted
	AuthenticatedAt time.Time // When the pin was verified, zero before that
	AuthToken       string    // Signed token issued on authentication
	ExpiresAt       time.Time // When the authenticated window closes
}

// Authenticated reports whether a token has been issued for the session
func (s *Session) Authenticated() bool {
	return s != nil && s.AuthToken != ""
}

// Expired reports whether the session's inactivity window has closed at now
func (s *Session) Expired(now time.Time) bool {
	return s != nil && !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}

// MaskedCard returns the card number with all but the last four digits hidden
func (s *Session) MaskedCard() string {
	return MaskCard(s.CardNumber)
}

// MaskCard hides all but the last four characters of a card number
func MaskCard(card string) string {
	if len(card) <= 4 {
		return "****"
	}
	return "****" + card[len(card)-4:]
}
