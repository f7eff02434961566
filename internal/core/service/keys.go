package service

import (
	"fmt"
	"hash/fnv"
)

// Cache and lock key layout. These are stable contracts shared with other
// deployments, do not reshuffle them.
func cartCacheKey(userID string) string { return "cart:" + userID }

func productCacheKey(productID string) string { return "product:" + productID }

func cartLockKey(userID string) string { return "lock:cart:" + userID }

func checkoutLockKey(userID string) string { return "lock:checkout:" + userID }

const productListPattern = "products:*"

// productListCacheKey hashes the canonical query shape so every distinct
// listing view gets its own entry under the products: prefix.
func productListCacheKey(page, limit int, category, search string) string {
	h := fnv.New64a()
	fmt.Fprintf(h, "page=%d&limit=%d&category=%s&search=%s", page, limit, category, search)
	return fmt.Sprintf("products:%x", h.Sum64())
}
