package options

// DistinctURLs returns every URL referenced by any source item exactly once,
// in first-seen order.
func (o Options) DistinctURLs() []string {
	seen := make(map[string]struct{})
	var urls []string
	for _, out := range o.Outputs {
		for _, item := range out.Items {
			if _, ok := seen[item.URL]; ok {
				continue
			}
			seen[item.URL] = struct{}{}
			urls = append(urls, item.URL)
		}
	}
	return urls
}
