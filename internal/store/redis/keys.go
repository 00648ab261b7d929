package redis

// KeyPrefixResult is the prefix for persisted search results.
const KeyPrefixResult = "conductor:search:"

// ResultKey returns the redis key for a search result by its final query.
func ResultKey(query string) string {
	return KeyPrefixResult + query
}
