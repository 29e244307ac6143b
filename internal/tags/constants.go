// internal/tags/constants.go
package tags

// Tag geometry limits.
// river reports tags as a 32-bit mask, so there can never be more than 32.

// MinCount is the smallest usable tag count.
const MinCount = 1

// MaxCount is the largest usable tag count.
const MaxCount = 32

// ---- COMMAND NAMES ----

// CommandSetFocusedTags selects which tags of the focused output are shown.
const CommandSetFocusedTags = "set-focused-tags"

// CommandSetViewTags assigns tags to the focused view.
const CommandSetViewTags = "set-view-tags"
