package session

import (
	"sync"

	"healthguard-console/internal/models"

	"go.uber.org/zap"
)

// Store 会话存储：当前凭证 + 用户身份
// 唯一的跨组件可变状态。写入方只有登录/登出和网关的 401 处理路径，
// 其余组件只读
type Store struct {
	mu        sync.Mutex
	token     string
	user      *models.User
	listeners map[int]func()
	nextID    int
	logger    *zap.Logger
}

// NewStore 创建会话存储
func NewStore(logger *zap.Logger) *Store {
	return &Store{
		listeners: make(map[int]func()),
		logger:    logger,
	}
}

// Set 写入会话（覆盖旧会话）
func (s *Store) Set(token string, user *models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.user = user
}

// Token 读取当前凭证；第二个返回值表示会话是否存在
func (s *Store) Token() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token, s.token != ""
}

// User 读取当前用户身份；无会话时返回 nil
func (s *Store) User() *models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user
}

// Clear 清除会话并通知所有监听者
// 幂等：无会话时调用不产生重复通知
func (s *Store) Clear() {
	s.mu.Lock()
	if s.token == "" {
		s.mu.Unlock()
		return
	}
	s.token = ""
	s.user = nil

	// 回调在锁外执行，通知顺序不保证
	fns := make([]func(), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	s.logger.Info("Session cleared",
		zap.Int("listener_count", len(fns)),
	)
	for _, fn := range fns {
		fn()
	}
}

// OnExpired 注册会话失效监听者，返回注销函数
func (s *Store) OnExpired(fn func()) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}
