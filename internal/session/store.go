package session

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	bolt "go.etcd.io/bbolt"
)

// DefaultPath is the database file used when none is configured.
const DefaultPath = "datanewsbot.db"

var (
	bucketMeta  = []byte("meta")
	bucketChats = []byte("chats")

	keyOffset = []byte("update_offset")
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("session: not found")

// Chat is what the transport remembers about a chat.
type Chat struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title,omitempty"`
	FirstSeen time.Time `json:"first_seen"`
	LastSeen  time.Time `json:"last_seen"`
	Messages  int       `json:"messages"`
}

// Store persists transport state in a bbolt file.
type Store struct {
	db *bolt.DB
}

// Open opens or creates the database at path and ensures the buckets exist.
func Open(path string) (*Store, error) {
	if path == "" {
		path = DefaultPath
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open session db %s: %w", path, err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, b := range [][]byte{bucketMeta, bucketChats} {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return fmt.Errorf("create bucket %s: %w", b, err)
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// Close releases the database file.
func (s *Store) Close() error {
	return s.db.Close()
}

// Offset returns the next update id to request, or 0 when none is stored.
func (s *Store) Offset() (int, error) {
	var offset int
	err := s.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(bucketMeta).Get(keyOffset)
		if len(raw) != 8 {
			return nil
		}
		offset = int(binary.BigEndian.Uint64(raw))
		return nil
	})
	return offset, err
}

// SetOffset stores the next update id to request.
func (s *Store) SetOffset(offset int) error {
	if offset < 0 {
		return fmt.Errorf("negative update offset %d", offset)
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		buf := make([]byte, 8)
		binary.BigEndian.PutUint64(buf, uint64(offset))
		return tx.Bucket(bucketMeta).Put(keyOffset, buf)
	})
}

// TouchChat records activity in a chat, creating the record on first use.
func (s *Store) TouchChat(id int64, title string, at time.Time) (Chat, error) {
	var chat Chat
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketChats)
		key := chatKey(id)

		if raw := b.Get(key); raw != nil {
			if err := json.Unmarshal(raw, &chat); err != nil {
				return fmt.Errorf("decode chat %d: %w", id, err)
			}
		} else {
			chat = Chat{ID: id, FirstSeen: at}
		}
		if title != "" {
			chat.Title = title
		}
		chat.LastSeen = at
		chat.Messages++

		raw, err := json.Marshal(chat)
		if err != nil {
			return fmt.Errorf("encode chat %d: %w", id, err)
		}
		return b.Put(key, raw)
	})
	return chat, err
}

// Chat returns the stored record for id.
func (s *Store) Chat(id int64) (Chat, error) {
	var chat Chat
	err := s.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(bucketChats).Get(chatKey(id))
		if raw == nil {
			return ErrNotFound
		}
		return json.Unmarshal(raw, &chat)
	})
	return chat, err
}

func chatKey(id int64) []byte {
	return []byte(strconv.FormatInt(id, 10))
}
