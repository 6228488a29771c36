package common

// UnknownStr is the fallback string representation for unrecognized enum values.
const UnknownStr = "unknown"
