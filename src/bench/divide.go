package bench

// DivideItems splits items into contiguous chunks of len(items)/numChunks
// items, the last chunk holding what remains. When numChunks is not positive,
// or exceeds the number of items, all the items go in a single chunk. An empty
// input yields no chunks. Chunks share the backing array of items.
func DivideItems[T any](items []T, numChunks int) [][]T {
	size := 0
	if numChunks > 0 {
		size = len(items) / numChunks
	}
	if size == 0 {
		size = max(1, len(items))
	}

	var chunks [][]T
	for start := 0; start < len(items); start += size {
		end := min(start+size, len(items))
		chunks = append(chunks, items[start:end:end])
	}
	return chunks
}
