// Package content implements the cache-aside lookup shared by the speech
// and image endpoints, and publication of cached images to GitHub.
//
// A Cache serves one content kind. Keys are validated and normalized, then
// looked up in the persistent store; on a miss the injected generator is
// called once and its output stored under the normalized key. The store's
// unique (kind, key) constraint decides concurrent misses: the caller whose
// insert loses re-reads the stored row and returns it.
package content
