package domain

import "time"

// TokenPair is what login and refresh hand back to the HTTP layer.
// RefreshToken is empty when a refresh did not rotate it.
type TokenPair struct {
	AccessToken  string
	AccessTTL    time.Duration
	RefreshToken string
	RefreshTTL   time.Duration
}
