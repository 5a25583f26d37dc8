// Package duplicate answers "which videos share content" questions over the
// fingerprint index.
//
// SearchFile ranks the files that share scenes with one file. Top finds the
// file pairs that share the most scene duration among the longest repeated
// fingerprints. Matching is exact SceneID equality; there is no fuzzy
// comparison.
package duplicate
