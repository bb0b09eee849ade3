package position

import "strings"

// OffsetAt converts a document position (0-based line, UTF-16 column)
// to an absolute byte offset into the document text. Positions past
// the end of a line clamp to the line's end; lines past the end of the
// document clamp to the document's end.
func OffsetAt(text string, line, character int) int {
	if line < 0 {
		return 0
	}

	offset := 0
	for line > 0 {
		nl := strings.IndexByte(text[offset:], '\n')
		if nl < 0 {
			return len(text)
		}
		offset += nl + 1
		line--
	}

	lineText := text[offset:]
	if nl := strings.IndexByte(lineText, '\n'); nl >= 0 {
		lineText = lineText[:nl]
	}
	return offset + UTF16ToByteOffset(lineText, character)
}

// PositionAt converts an absolute byte offset into a document position
// (0-based line, UTF-16 column). Offsets out of range clamp to the
// document's bounds.
func PositionAt(text string, offset int) (line, character int) {
	if offset < 0 {
		offset = 0
	}
	if offset > len(text) {
		offset = len(text)
	}

	lineStart := 0
	for {
		nl := strings.IndexByte(text[lineStart:], '\n')
		if nl < 0 || lineStart+nl >= offset {
			break
		}
		lineStart += nl + 1
		line++
	}
	return line, ByteOffsetToUTF16(text[lineStart:], offset-lineStart)
}
