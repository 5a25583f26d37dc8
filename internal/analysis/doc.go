// Package analysis drives a file through its index lifecycle: register it,
// segment its frame stream into scenes, record every scene, and mark the file
// analyzed.
//
// Re-analysing a name replaces the previous entry and all of its scenes.
// Dry runs execute the full segmentation without touching the index so frame
// rate and threshold behavior can be checked safely.
package analysis
