package links

// keyNamespace prefixes every cached link.
const keyNamespace = "file_link"

// CacheKey is the only address of a cached link: identical (bucket, path)
// pairs always map to the same key.
func CacheKey(bucket, path string) string {
	return keyNamespace + ":" + bucket + ":" + path
}
