// internal/tags/rotate.go
package tags

// Rotate moves every active tag in [0, n) one position in dir, wrapping
// around at the ends. Bits at index >= n are ignored.
// No IO. No side effects.
func Rotate(mask Mask, n int, dir Direction) Mask {
	if n < MinCount {
		return 0
	}
	if n > MaxCount {
		n = MaxCount
	}

	var out Mask
	for i := 0; i < n; i++ {
		if mask&(1<<uint(i)) == 0 {
			continue
		}

		var dst int
		if dir == Right {
			dst = (i + 1) % n
		} else {
			dst = (i - 1 + n) % n
		}
		out |= 1 << uint(dst)
	}

	return out
}
