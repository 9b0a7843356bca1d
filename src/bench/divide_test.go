package bench

import (
	"reflect"
	"testing"
)

func TestDivideItems(t *testing.T) {
	items := []int{0, 1, 2, 3}

	cases := []struct {
		numChunks int
		expected  [][]int
	}{
		{3, [][]int{{0}, {1}, {2}, {3}}},
		{2, [][]int{{0, 1}, {2, 3}}},
		{1, [][]int{{0, 1, 2, 3}}},
		{4, [][]int{{0}, {1}, {2}, {3}}},
		{0, [][]int{{0, 1, 2, 3}}},
		{5, [][]int{{0, 1, 2, 3}}},
		{-1, [][]int{{0, 1, 2, 3}}},
	}

	for _, c := range cases {
		chunks := DivideItems(items, c.numChunks)
		if !reflect.DeepEqual(chunks, c.expected) {
			t.Fatalf("DivideItems(%v, %d) should be %v, not %v", items, c.numChunks, c.expected, chunks)
		}
	}
}

func TestDivideItemsEmpty(t *testing.T) {
	for _, n := range []int{0, 1, 3} {
		if chunks := DivideItems([]int{}, n); len(chunks) != 0 {
			t.Fatalf("DivideItems([], %d) should yield no chunks, not %v", n, chunks)
		}
	}
	if chunks := DivideItems[int](nil, 3); len(chunks) != 0 {
		t.Fatalf("DivideItems(nil, 3) should yield no chunks, not %v", chunks)
	}
}

func TestDivideItemsPartition(t *testing.T) {
	for size := 1; size <= 40; size++ {
		items := make([]int, size)
		for i := range items {
			items[i] = i
		}

		for numChunks := 0; numChunks <= size+2; numChunks++ {
			chunks := DivideItems(items, numChunks)

			chunkSize := 0
			if numChunks > 0 {
				chunkSize = size / numChunks
			}
			if chunkSize == 0 {
				chunkSize = size
			}
			expectedChunks := (size + chunkSize - 1) / chunkSize
			if len(chunks) != expectedChunks {
				t.Fatalf("DivideItems(%d items, %d) gave %d chunks, expected %d", size, numChunks, len(chunks), expectedChunks)
			}

			var joined []int
			for i, c := range chunks {
				if len(c) == 0 {
					t.Fatalf("DivideItems(%d items, %d) produced an empty chunk", size, numChunks)
				}
				if i < len(chunks)-1 && len(c) != chunkSize {
					t.Fatalf("chunk %d has %d items, expected %d", i, len(c), chunkSize)
				}
				joined = append(joined, c...)
			}
			if !reflect.DeepEqual(joined, items) {
				t.Fatalf("DivideItems(%d items, %d) does not concatenate back to its input: %v", size, numChunks, joined)
			}
		}
	}
}

func TestDivideItemsCapacity(t *testing.T) {
	items := []int{0, 1, 2, 3}
	chunks := DivideItems(items, 2)

	chunks[0] = append(chunks[0], 42)

	if !reflect.DeepEqual(items, []int{0, 1, 2, 3}) {
		t.Fatalf("appending to a chunk modified the input: %v", items)
	}
}
