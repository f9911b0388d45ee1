// Package service holds the application use cases that sit between the HTTP
// handlers and the stores: account management in UserService and deck
// import and maintenance in DeckService. Quiz sessions, wrong-answer
// tracking and the media caches live in the quiz, wrongstats and content
// subpackages.
//
// Services receive their stores and collaborators through constructors and
// never depend on a concrete backend. Errors that callers need to branch on
// are exported sentinels; everything else is wrapped in a ServiceError.
package service
