package stringutil

import "fmt"

// ShortenLogLength is the longest string ShortenLog leaves untouched
const ShortenLogLength = 16

// ShortenLog keeps the head and tail of long receipt hashes so log lines stay readable
func ShortenLog(hash string) string {
	if len(hash) <= ShortenLogLength {
		return hash
	}
	keep := ShortenLogLength / 2
	return fmt.Sprintf("%s...%s", hash[:keep], hash[len(hash)-keep:])
}
