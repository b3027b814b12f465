package audio

// Concatenate joins chunks in order. When the combined length is odd a single
// zero byte is appended to the end of the result, never between chunks.
func Concatenate(chunks [][]byte) []byte {
	size := 0
	for _, c := range chunks {
		size += len(c)
	}
	if size%2 != 0 {
		size++
	}

	result := make([]byte, size)
	offset := 0
	for _, c := range chunks {
		offset += copy(result[offset:], c)
	}
	return result
}
