// Package generation defines the boundary between the application core and
// the external services that produce media for vocabulary words: speech
// audio for pronunciation and association images.
//
// Implementations live under internal/platform (ElevenLabs, HuggingFace,
// Gemini). The content cache depends only on the ContentGenerator interface
// and the error categories declared here.
package generation
