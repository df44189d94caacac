package ledger

import "github.com/bull/laptop-battle/internal/reddit"

// ExtractUniqueURLs flattens search result blocks into a single ordered list
// of post URLs with duplicates removed. First occurrence order is preserved
// so downstream fetch order matches discovery order.
func ExtractUniqueURLs(blocks []reddit.ResultBlock) []string {
	seen := make(map[string]struct{})
	var urls []string

	for _, block := range blocks {
		for _, ref := range block.Results {
			if ref.URL == "" {
				continue
			}
			if _, dup := seen[ref.URL]; dup {
				continue
			}
			seen[ref.URL] = struct{}{}
			urls = append(urls, ref.URL)
		}
	}
	return urls
}
