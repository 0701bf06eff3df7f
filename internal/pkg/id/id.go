package id

import "github.com/oklog/ulid/v2"

// New generates a new ULID string. ULIDs are lexicographically sortable
// by creation time and safe for use as DynamoDB partition keys. IDs made
// by one process within the same millisecond still sort in call order.
func New() string {
	return ulid.Make().String()
}
