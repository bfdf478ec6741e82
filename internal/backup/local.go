package backup

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// LocalRetentionLimit is the number of daily buckets the local tier keeps.
const LocalRetentionLimit = 7

// localKeyPrefix namespaces backup entries within the key-value store.
const localKeyPrefix = "backup_"

const dateKeyLayout = "2006-01-02"

// LocalBackup is one retained entry in the local tier.
type LocalBackup struct {
	Key      string
	DateKey  string
	Snapshot *Snapshot
}

// LocalStore keeps one snapshot per calendar day in a KVStore and evicts the
// oldest buckets beyond LocalRetentionLimit after every save.
//
// The bucket key is derived from the store's clock at save time, not from the
// snapshot's CreatedAt. Near midnight the two can name different days; the
// save-time day is the single source of truth for bucketing.
type LocalStore struct {
	kv     KVStore
	logger Logger
	clock  Clock

	mu sync.Mutex // serializes save/evict against concurrent manual backups
}

// NewLocalStore creates a LocalStore over the given key-value store.
func NewLocalStore(kv KVStore, logger Logger, clock Clock) *LocalStore {
	return &LocalStore{kv: kv, logger: logger, clock: clock}
}

// Save writes the snapshot into today's bucket, overwriting any earlier
// snapshot from the same day, then evicts buckets beyond the retention limit.
// Unlike eviction failures, a failed write is reported to the caller so
// manual backups can surface it; scheduled callers log and move on.
func (s *LocalStore) Save(snap *Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := EncodeSnapshot(snap)
	if err != nil {
		return fmt.Errorf("encoding local backup: %w", err)
	}

	dateKey := s.clock.Now().UTC().Format(dateKeyLayout)
	key := localKeyPrefix + dateKey
	if err := s.kv.Set(key, data); err != nil {
		return fmt.Errorf("writing local backup %s: %w", key, err)
	}

	s.logger.Info("local backup saved", "dateKey", dateKey, "bytes", len(data))
	s.evict()
	return nil
}

// List returns all retained entries, most recent date first. Entries whose
// stored bytes no longer decode are skipped and logged rather than failing
// the whole listing.
func (s *LocalStore) List() ([]*LocalBackup, error) {
	keys, err := s.kv.Keys(localKeyPrefix)
	if err != nil {
		return nil, fmt.Errorf("listing local backups: %w", err)
	}

	// Keys sort ascending; date keys are lexicographically ordered, so
	// reversing gives most recent first.
	sort.Sort(sort.Reverse(sort.StringSlice(keys)))

	backups := make([]*LocalBackup, 0, len(keys))
	for _, key := range keys {
		data, err := s.kv.Get(key)
		if err != nil || data == nil {
			s.logger.Warn("local backup unreadable, skipping", "key", key, "error", err)
			continue
		}
		snap, err := DecodeSnapshot(data)
		if err != nil {
			s.logger.Warn("local backup undecodable, skipping", "key", key, "error", err)
			continue
		}
		backups = append(backups, &LocalBackup{
			Key:      key,
			DateKey:  strings.TrimPrefix(key, localKeyPrefix),
			Snapshot: snap,
		})
	}
	return backups, nil
}

// Find returns the snapshot stored under the given date key, or nil if the
// bucket is absent or undecodable.
func (s *LocalStore) Find(dateKey string) (*Snapshot, error) {
	data, err := s.kv.Get(localKeyPrefix + dateKey)
	if err != nil {
		return nil, fmt.Errorf("reading local backup %s: %w", dateKey, err)
	}
	if data == nil {
		return nil, nil
	}
	snap, err := DecodeSnapshot(data)
	if err != nil {
		return nil, fmt.Errorf("decoding local backup %s: %w", dateKey, err)
	}
	return snap, nil
}

// evict deletes every bucket beyond the LocalRetentionLimit most recent date
// keys. Failures are logged, never propagated; stale buckets are retried on
// the next save.
func (s *LocalStore) evict() {
	keys, err := s.kv.Keys(localKeyPrefix)
	if err != nil {
		s.logger.Warn("local eviction skipped", "error", err)
		return
	}

	sort.Sort(sort.Reverse(sort.StringSlice(keys)))
	for _, key := range keys[min(len(keys), LocalRetentionLimit):] {
		if err := s.kv.Delete(key); err != nil {
			s.logger.Warn("failed to evict local backup", "key", key, "error", err)
			continue
		}
		s.logger.Debug("local backup evicted", "key", key)
	}
}
