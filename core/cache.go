package core

// Local mirror keys. These are the storage identifiers the clients have
// always used for offline resume; they must not change between releases.
const (
	CacheKeyProgress   = "ispeaktu_v1_progress"
	CacheKeyReminders  = "ispeaktu_v1_reminders"
	CacheKeyCurriculum = "ispeaktu_v1_curriculum"
)

// CacheStore mirrors the last-known remote collections keyed by the fixed
// identifiers above. It is a best-effort cache: implementations must never be
// treated as source of truth over the remote store, and callers tolerate a
// nil CacheStore.
type CacheStore interface {
	Get(key string, dest interface{}) error
	Put(key string, v interface{}) error
}
