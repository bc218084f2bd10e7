//go:generate go run go.uber.org/mock/mockgen -source=message.go -destination=../mocks/mock_message_repository.go -package=mocks
package repositories

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"log/slog"

	"chat-relay/domain"

	"github.com/dgraph-io/badger/v4"
)

type IMessageRepository interface {
	Store(message domain.Message) (domain.Message, error)
	History(scopeKey string, cursor *string, limit *int) ([]domain.Message, *string, error)
}

type MessageRepository struct {
	db  *badger.DB
	log *slog.Logger
}

func NewMessageRepository(db *badger.DB, log *slog.Logger) MessageRepository {
	return MessageRepository{db: db, log: log}
}

// Store persists a message and assigns its sequence number in one
// BadgerDB transaction. The key is formatted as
// "msg:{scope}:{seq_padded}" to:
//  1. Ensure the on-disk order is the persistence order using 19-digit
//     zero padding (lexicographical order).
//  2. Make the counter bump and the message write atomic: a message
//     either owns its sequence slot durably or does not exist at all.
//
// Callers must serialize concurrent Store calls for the same scope;
// the ingest pipeline holds a per-scope lock around this call.
func (m MessageRepository) Store(message domain.Message) (domain.Message, error) {
	err := m.db.Update(func(txn *badger.Txn) error {
		seq, err := nextSequence(txn, message.ScopeKey())
		if err != nil {
			return err
		}
		message.Seq = seq

		key := fmt.Sprintf("msg:%s:%019d", message.ScopeKey(), seq)
		bytes, err := json.Marshal(message)
		if err != nil {
			return err
		}
		return txn.Set([]byte(key), bytes)
	})
	if err != nil {
		return domain.Message{}, err
	}
	return message, nil
}

// nextSequence bumps the per-scope counter inside the caller's
// transaction. Counters start at 1.
func nextSequence(txn *badger.Txn, scopeKey string) (uint64, error) {
	key := []byte("seq:" + scopeKey)
	var current uint64
	item, err := txn.Get(key)
	switch err {
	case nil:
		err = item.Value(func(value []byte) error {
			current = binary.BigEndian.Uint64(value)
			return nil
		})
		if err != nil {
			return 0, err
		}
	case badger.ErrKeyNotFound:
		current = 0
	default:
		return 0, err
	}

	next := current + 1
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, next)
	return next, txn.Set(key, buf)
}

// History retrieves messages of one scope in ascending persistence
// order using a prefix scan. Thanks to the padded sequence in the key,
// no sorting is needed. The returned cursor resumes the scan after the
// last message of the page; a nil limit returns everything.
func (m MessageRepository) History(scopeKey string, cursor *string, limit *int) ([]domain.Message, *string, error) {
	var byteMessages [][]byte
	var lastKey string
	err := m.db.View(func(txn *badger.Txn) error {
		prefixStr := fmt.Sprintf("msg:%s:", scopeKey)
		prefix := []byte(prefixStr)
		prefixLen := len(prefixStr)
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		seekKey := prefix
		if cursor != nil {
			seekKey = append([]byte(prefixStr), []byte(*cursor)...)
		}
		it.Seek(seekKey)

		if cursor != nil && it.ValidForPrefix(prefix) {
			it.Next()
		}

		for ; it.ValidForPrefix(prefix); it.Next() {
			if limit != nil && len(byteMessages) == *limit {
				m.log.Debug(fmt.Sprintf("Maximum of %d messages reached", *limit))
				break
			}
			item := it.Item()
			// Memorize cursor part of the actual key
			lastKey = string(item.Key()[prefixLen:])
			err := item.Value(func(value []byte) error {
				byteMessages = append(byteMessages, append([]byte(nil), value...))
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	messages := make([]domain.Message, 0, len(byteMessages))
	for _, b := range byteMessages {
		var message domain.Message
		if err = json.Unmarshal(b, &message); err != nil {
			return nil, nil, err
		}
		messages = append(messages, message)
	}
	return messages, &lastKey, nil
}
