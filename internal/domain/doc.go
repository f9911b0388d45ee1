// Package domain contains the core entities of the vocabulary quiz: users,
// decks and their words, quiz sessions and answers, wrong-answer counters
// and generated media cache entries, together with their validation rules.
package domain
