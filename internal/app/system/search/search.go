// internal/app/system/search/search.go
package search

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MaxQueryLen caps how many runes of a search query are used.
const MaxQueryLen = 100

// Clean trims the query, collapses inner whitespace and truncates it to
// MaxQueryLen runes.
func Clean(q string) string {
	q = strings.Join(strings.Fields(q), " ")
	if utf8.RuneCountInString(q) <= MaxQueryLen {
		return q
	}
	r := []rune(q)
	return string(r[:MaxQueryLen])
}

// AnyField builds a filter matching documents where any of fields contains q
// as a case-insensitive substring. Regex metacharacters in q are matched
// literally. An empty query (after Clean) returns nil.
//
// Typical usage in catalog lists:
//
//	filter := bson.M{"status": "published"}
//	if f := search.AnyField(q, "title", "author"); f != nil {
//	    filter["$or"] = f["$or"]
//	}
func AnyField(q string, fields ...string) bson.M {
	q = Clean(q)
	if q == "" || len(fields) == 0 {
		return nil
	}
	re := primitive.Regex{Pattern: regexp.QuoteMeta(q), Options: "i"}
	or := make(bson.A, 0, len(fields))
	for _, f := range fields {
		or = append(or, bson.M{f: re})
	}
	return bson.M{"$or": or}
}
