// Package resolution provides file access for declaration analysis.
//
// A ResolutionContext reads file text and parses declaration files. Both
// implementations cache parsed files per normalized path and deduplicate
// concurrent parses of the same file with singleflight, so a file referenced
// from many branches of a resolution is read and parsed once.
//
// FileSystemContext reads from disk through an LRU text cache and records the
// SHA-256 of each file it reads. The generation cache uses these hashes to
// decide whether a stored result is still valid.
//
// MemoryContext serves a fixed map of contents and is used by tests.
package resolution
