// Package grocery decides which store category a grocery item belongs to.
package grocery

import "strings"

// DefaultCategory is the bucket for items nothing else claims.
const DefaultCategory = "diverse"

// Resolve returns the category for an item. An explicit category always
// wins; otherwise the learned per-user memory is consulted under the
// lower-cased item name; otherwise the default bucket.
func Resolve(itemName, explicit string, memory map[string]string) string {
	if explicit != "" {
		return explicit
	}
	if cat, ok := memory[strings.ToLower(itemName)]; ok && cat != "" {
		return cat
	}
	return DefaultCategory
}
