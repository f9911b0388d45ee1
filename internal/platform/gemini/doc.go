// Package gemini provides an implementation of the generation.ContentGenerator
// interface that uses Google's Imagen models, served through the Gemini API,
// to illustrate vocabulary words.
//
// This package is an infrastructure adapter. It translates a normalized word
// into an image generation request and maps the API's responses and errors
// onto the error categories defined by the generation package, so callers
// never see genai types.
//
// Key components:
//
// 1. ImageGenerator:
//   - Implements generation.ContentGenerator
//   - Makes one bounded request per call; retries are left to callers
//
// 2. Error Handling:
//   - genai.APIError status codes are classified with generation.StatusError
//   - Responses filtered by responsible-AI checks become ErrContentBlocked
//
// The package depends on the google.golang.org/genai client library.
package gemini
