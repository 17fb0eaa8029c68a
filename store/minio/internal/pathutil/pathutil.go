// Package pathutil builds MinIO/S3 object keys for index records.
package pathutil

import (
	"path"
	"strconv"
	"strings"
)

// NormalizePrefix normalizes the key prefix:
// - Converts backslashes to forward slashes
// - Resolves "." and ".." segments
// - Removes leading and trailing slashes
// - Returns empty string if prefix is "." or empty.
func NormalizePrefix(prefix string) string {
	if prefix == "" || prefix == "." {
		return ""
	}

	prefix = strings.ReplaceAll(prefix, "\\", "/")
	prefix = path.Clean(prefix)
	prefix = strings.Trim(prefix, "/")
	if prefix == "." {
		return ""
	}

	return prefix
}

// NamespacePrefix returns the key prefix, with trailing slash, under which
// every object of (category, version) lives.
func NamespacePrefix(prefix, category string, version int64) string {
	ns := category + "/" + strconv.FormatInt(version, 10) + "/"
	if prefix == "" {
		return ns
	}
	return prefix + "/" + ns
}

// ObjectKey returns the key of file name in (category, version).
func ObjectKey(prefix, category string, version int64, name string) string {
	return NamespacePrefix(prefix, category, version) + name
}

// FileName returns the file name part of key, given its namespace prefix.
// It reports false if key does not lie directly under nsPrefix.
func FileName(nsPrefix, key string) (string, bool) {
	if !strings.HasPrefix(key, nsPrefix) {
		return "", false
	}
	name := strings.TrimPrefix(key, nsPrefix)
	if name == "" || strings.Contains(name, "/") {
		return "", false
	}
	return name, true
}
