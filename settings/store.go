// Package settings is the typed key/value store every component reads
// its configuration from. Set is the only write path; each successful
// write is fanned out to subscribers in order, and persisted through a
// debounced save so bursts of writes hit the disk once.
package settings

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"murmur/debounce"
	"murmur/log"
)

var (
	ErrUnknownKey   = errors.New("unknown settings key")
	ErrInvalidValue = errors.New("invalid settings value")
)

// Change describes one successful Set.
type Change struct {
	Key string
	Old Value
	New Value
}

type Store struct {
	storage Storage

	mu     sync.Mutex
	rules  map[string]Rule
	values map[string]Value
	subs   []chan Change
	closed bool

	notifyCh     chan Change
	dispatchDone chan struct{}
	saver        *debounce.Debouncer[map[string]string]
}

// NewStore loads persisted settings from storage, applying defaults for
// missing keys and migrating legacy config files that carry only
// backend keys. saveDelay is the debounce window for persistence.
func NewStore(storage Storage, saveDelay time.Duration) (*Store, error) {
	s := &Store{
		storage:      storage,
		rules:        defaultRules(),
		values:       map[string]Value{},
		notifyCh:     make(chan Change, 128),
		dispatchDone: make(chan struct{}),
	}
	for k, r := range s.rules {
		s.values[k] = r.Default
	}

	persisted, err := storage.Load()
	if err != nil {
		return nil, fmt.Errorf("settings load: %w", err)
	}

	hasUser := false
	hasBackend := false
	for k, raw := range persisted {
		rule, ok := s.rules[k]
		if !ok {
			continue // stale key from an older version
		}
		v, err := rule.decode(raw)
		if err != nil {
			log.Warnf("settings: ignoring malformed value for %s: %v", k, err)
			continue
		}
		s.values[k] = v
		if k == KeyIndicatorStyle || k == KeyAppletAutohide {
			hasUser = true
		}
		if isBackendKey(k) {
			hasBackend = true
		}
	}

	if !hasUser && hasBackend {
		s.migrateFromBackend()
	}

	s.saver = debounce.New(saveDelay, func(m map[string]string) {
		if err := s.storage.Save(m); err != nil {
			log.Errorf("settings save: %v", err)
		}
	})

	go s.dispatch()
	return s, nil
}

// migrateFromBackend infers the user-facing keys from a legacy config
// that only persisted the derived ones.
func (s *Store) migrateFromBackend() {
	b := Backend{
		ShowProgressWindow:  s.values[KeyShowProgressWindow].Bool(),
		ShowIndicatorDialog: s.values[KeyShowIndicatorDialog].Bool(),
		Mode:                s.values[KeyIndicatorMode].String(),
	}
	u, ok := Infer(b)
	if !ok {
		u = User{Style: StyleApplet, Autohide: true}
	}
	s.values[KeyIndicatorStyle] = Enum(u.Style)
	s.values[KeyAppletAutohide] = Bool(u.Autohide)
	log.Info("settings: migrated legacy config to " + u.Style)
}

func (s *Store) dispatch() {
	defer close(s.dispatchDone)
	for c := range s.notifyCh {
		s.mu.Lock()
		subs := append([]chan Change(nil), s.subs...)
		s.mu.Unlock()
		for _, sub := range subs {
			select {
			case sub <- c:
			default:
				log.Warnf("settings: subscriber lagging, dropped change for %s", c.Key)
			}
		}
	}
}

func (s *Store) Get(key string) Value {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.values[key]
}

func (s *Store) GetBool(key string) bool     { return s.Get(key).Bool() }
func (s *Store) GetInt(key string) int       { return s.Get(key).Int() }
func (s *Store) GetString(key string) string { return s.Get(key).String() }

// Set validates and writes one key. On success the change is queued for
// subscribers and a debounced save is scheduled. Callers keep the prior
// value on error.
func (s *Store) Set(key string, v Value) error {
	s.mu.Lock()
	rule, ok := s.rules[key]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	if err := rule.validate(key, v); err != nil {
		s.mu.Unlock()
		return err
	}
	if s.closed {
		s.mu.Unlock()
		return errors.New("settings: store closed")
	}
	old := s.values[key]
	s.values[key] = v
	snapshot := s.encodedLocked()
	// Queued under the lock so Close cannot tear the channel down
	// between the closed check and the send.
	select {
	case s.notifyCh <- Change{Key: key, Old: old, New: v}:
	default:
		log.Warnf("settings: notification queue full, dropped change for %s", key)
	}
	s.mu.Unlock()

	log.SettingChanged(key, old.encode(), v.encode())
	s.saver.Set(snapshot)
	return nil
}

func (s *Store) encodedLocked() map[string]string {
	m := make(map[string]string, len(s.values))
	for k, v := range s.values {
		m[k] = v.encode()
	}
	return m
}

// Subscribe returns a channel receiving every subsequent change in
// write order. Slow subscribers drop changes rather than stalling the
// store.
func (s *Store) Subscribe() <-chan Change {
	ch := make(chan Change, 64)
	s.mu.Lock()
	s.subs = append(s.subs, ch)
	s.mu.Unlock()
	return ch
}

// UserSnapshot reads the derivation-relevant user-facing keys.
func (s *Store) UserSnapshot() User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return User{
		Style:    s.values[KeyIndicatorStyle].String(),
		Autohide: s.values[KeyAppletAutohide].Bool(),
	}
}

// Flush persists any pending debounced save immediately.
func (s *Store) Flush() {
	s.saver.Flush()
}

// Close flushes pending saves and stops the dispatch goroutine.
// Subscriber channels are closed.
func (s *Store) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	subs := s.subs
	s.mu.Unlock()

	close(s.notifyCh)
	<-s.dispatchDone
	for _, sub := range subs {
		close(sub)
	}
	s.saver.Flush()
	s.saver.Stop()
}
