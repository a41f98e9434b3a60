package domain

import "context"

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=domain_test

// Email is a single outgoing message handed to the Mailer.
type Email struct {
	To      string
	Subject string
	Body    string
}

// Mailer delivers email through an external relay.
type Mailer interface {
	Send(ctx context.Context, email Email) error
}

// ProfileCache memoizes public profiles between requests.
type ProfileCache interface {
	Get(id string) (PublicProfile, bool)
	Set(profile PublicProfile)
	Invalidate(id string) bool
}
