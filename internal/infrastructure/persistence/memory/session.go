package memory

import (
	"context"
	"fmt"
	"time"

	apperrors "github.com/xiebiao/bookswap/pkg/errors"
)

// SessionStore 会话与Token黑名单的内存实现,过期项在读取时清理
type SessionStore struct {
	s *Store
}

// NewSessionStore 创建会话存储
func NewSessionStore(s *Store) *SessionStore {
	return &SessionStore{s: s}
}

func (m *SessionStore) SaveSession(ctx context.Context, userID uint, sessionData map[string]interface{}, ttl time.Duration) error {
	data := make(map[string]string, len(sessionData))
	for k, v := range sessionData {
		data[k] = fmt.Sprint(v)
	}

	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	m.s.sessions[userID] = session{data: data, expireAt: m.s.now().Add(ttl)}
	return nil
}

func (m *SessionStore) GetSession(ctx context.Context, userID uint) (map[string]string, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	sess, ok := m.s.sessions[userID]
	if !ok || !m.s.now().Before(sess.expireAt) {
		delete(m.s.sessions, userID)
		return nil, apperrors.ErrUnauthorized
	}
	out := make(map[string]string, len(sess.data))
	for k, v := range sess.data {
		out[k] = v
	}
	return out, nil
}

func (m *SessionStore) DeleteSession(ctx context.Context, userID uint) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	delete(m.s.sessions, userID)
	return nil
}

func (m *SessionStore) AddToBlacklist(ctx context.Context, token string, ttl time.Duration) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	m.s.blacklist[token] = m.s.now().Add(ttl)
	return nil
}

func (m *SessionStore) IsInBlacklist(ctx context.Context, token string) (bool, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	expireAt, ok := m.s.blacklist[token]
	if !ok {
		return false, nil
	}
	if !m.s.now().Before(expireAt) {
		delete(m.s.blacklist, token)
		return false, nil
	}
	return true, nil
}
