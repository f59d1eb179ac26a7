package model

// Shared defaults used by the filter, the CLI and the tests.
const (
	DefaultExtension    = ".gif"
	DefaultResponseCode = "200"
	DefaultOutputPrefix = "gifs_"
	DefaultMaxLineSize  = 1024 * 1024 // 1MB
)

// Malformed-line policies.
const (
	MalformedAbort = "abort"
	MalformedSkip  = "skip"
)
