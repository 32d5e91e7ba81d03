package commands

import (
	"os"
	"runtime"
)

var emojiSupport = true

// EmojiEnabled can be toggled off via the --no-emoji flag
var EmojiEnabled = true

func init() {
	// everything that is not windows usually has emoji support
	if runtime.GOOS != "windows" {
		return
	}

	// raw cmd and powershell set SESSIONNAME, the windows terminal
	// does not
	if os.Getenv("SESSIONNAME") != "" {
		emojiSupport = false
	}
}

// Emoji returns the given string (usually an emoji) if the current
// terminal (probably) supports it
func Emoji(e string) string {
	if emojiSupport && EmojiEnabled {
		return e
	}
	return ""
}
