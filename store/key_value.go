package store

// KeyValue is one opaque string blob stored under a logical key.
type KeyValue struct {
	Key       string
	Value     string
	UpdatedTs int64
}

// FindKeyValue specifies the conditions for finding a key/value entry.
type FindKeyValue struct {
	Key string
}

// UpsertKeyValue specifies the data for upserting a key/value entry.
type UpsertKeyValue struct {
	Key   string
	Value string
}
