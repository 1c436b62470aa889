// Package termcache caches ordered term lists per taxonomy, settings snapshot
// and language.
//
// Keys are the namespace followed by the SHA-256 of the canonical
// serialization of (taxonomy, language, snapshot), so any settings change
// moves requests to fresh keys. Entries are msgpack encoded and carry their
// own expiry, checked on read, in addition to the backend TTL.
//
// Invalidation is global: a settings save or a mutation of any attribute
// term drops every entry under the namespace. Keys written by this process
// are also tracked and deleted one by one so backends without prefix
// deletes are still cleared.
//
// There is no locking. Concurrent misses for one key may both query the
// store; the last write wins.
package termcache
