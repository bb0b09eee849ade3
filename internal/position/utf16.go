package position

import (
	"unicode/utf16"
	"unicode/utf8"
)

// UTF16ToByteOffset converts a UTF-16 code unit offset into a byte
// offset. The protocol counts positions in UTF-16 code units while Go
// strings are UTF-8, so every incoming position goes through here. An
// offset landing inside a surrogate pair clamps to the start of the
// code point; an offset past the end clamps to len(s).
func UTF16ToByteOffset(s string, utf16Col int) int {
	if utf16Col <= 0 {
		return 0
	}
	units := 0
	byteOffset := 0
	for byteOffset < len(s) && units < utf16Col {
		r, size := utf8.DecodeRuneInString(s[byteOffset:])
		if r == utf8.RuneError && size == 1 {
			// invalid byte counts as one unit
			byteOffset++
			units++
			continue
		}
		runeUnits := utf16.RuneLen(r)
		if runeUnits == 2 && units+1 == utf16Col {
			break
		}
		units += runeUnits
		byteOffset += size
	}
	return byteOffset
}

// ByteOffsetToUTF16 is the inverse conversion, used when handing
// resolved spans back to the client. A byte offset inside a rune clamps
// to the rune's start.
func ByteOffsetToUTF16(s string, byteOffset int) int {
	if byteOffset <= 0 {
		return 0
	}
	if byteOffset > len(s) {
		byteOffset = len(s)
	}
	units := 0
	current := 0
	for current < byteOffset {
		r, size := utf8.DecodeRuneInString(s[current:])
		if r == utf8.RuneError && size == 0 {
			break
		}
		if current+size > byteOffset {
			break
		}
		units += utf16.RuneLen(r)
		current += size
	}
	return units
}

// StringLengthUTF16 returns the length of a string in UTF-16 code units
func StringLengthUTF16(s string) int {
	units := 0
	for _, r := range s {
		units += utf16.RuneLen(r)
	}
	return units
}
