package options

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistinctURLs(t *testing.T) {
	t.Parallel()

	field := []Field{{Name: "v", Rule: NewValueRule("", "", "", StoreAsText)}}
	opts := Options{Outputs: []OutputSpec{
		{Path: "a.json", Items: []SourceItem{
			{URL: "https://b.test", Values: field},
			{URL: "https://a.test", Values: field},
			{URL: "https://b.test", Values: field},
		}},
		{Path: "b.json", Items: []SourceItem{
			{URL: "https://a.test", Values: field},
			{URL: "https://c.test", Values: field},
		}},
	}}

	assert.Equal(t, []string{"https://b.test", "https://a.test", "https://c.test"}, opts.DistinctURLs())
	assert.Empty(t, Options{}.DistinctURLs())
}
