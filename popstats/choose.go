package popstats

// Choose computes the binomial coefficient without overflowing
// intermediates.
func Choose(n, k int) int {
	if k == 2 {
		// Fastest path, since pairwise comparisons are the usual case
		return n * (n - 1) / 2
	} else if k == 1 {
		return n
	}

	ans := 1

	if k > n-k {
		k = n - k
	}

	for j := 1; j <= k; j++ {
		if n%j == 0 {
			ans *= n / j
		} else if ans%j == 0 {
			ans = ans / j * n
		} else {
			ans = (ans * n) / j
		}

		n--
	}

	return ans
}
