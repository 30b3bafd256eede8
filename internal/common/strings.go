package common

// UnknownStr is the display name of enum values without a known name.
const UnknownStr = "unknown"
