// Package models defines the domain entities exchanged with the memoru flashcard API and persisted locally.
//
// The package contains three groups of types:
//
// 1. API resources, mirroring the server's JSON payloads
//   - [Card] : a flashcard with its spaced-repetition schedule
//   - [DueCard] : the trimmed card view returned by the due-cards endpoint
//   - [User] : the signed-in account with notification settings
//
// 2. Request bodies with client-side validation
//   - [CreateCardRequest], [UpdateCardRequest], [GenerateCardsRequest]
//   - [ReviewRequest], [UpdateSettingsRequest], [LinkLineRequest]
//
// 3. Local state
//   - [Session] : the OIDC token set stored in SQLite
//
// Every request type implements Validate, which normalizes the value in place and returns an error wrapping [shared.ErrInvalidInput].
package models
