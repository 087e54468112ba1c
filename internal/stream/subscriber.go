package stream

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"healthguard-console/internal/models"
	"healthguard-console/internal/session"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

// State 订阅者连接状态
type State int

const (
	StateIdle State = iota
	StateConnecting
	StateOpen
	StateReconnecting
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	case StateReconnecting:
		return "reconnecting"
	case StateClosed:
		return "closed"
	}
	return "unknown"
}

// Subscriber 生命体征推送流订阅者
// 通过 SSE 长连接接收新读数，维护有界历史缓冲区。
// 流式传输无法携带自定义请求头，凭证通过 token 查询参数传递。
// 断线自动重连（有界指数退避 + 抖动），缓冲区跨重连保留，Close 时丢弃。
// 单条畸形消息只记日志丢弃，不终止流
type Subscriber struct {
	baseURL string
	store   *session.Store
	client  *http.Client
	logger  *zap.Logger

	mu         sync.Mutex
	state      State
	gen        int // Close/Open 时递增，丢弃旧连接的迟到消息
	buffer     *Buffer
	onReadings func([]models.VitalReading)
	cancel     context.CancelFunc
	running    bool
}

// New 创建订阅者
func New(baseURL string, store *session.Store, logger *zap.Logger) *Subscriber {
	return &Subscriber{
		baseURL: baseURL,
		store:   store,
		// 长连接不设整体超时，依赖上下文取消
		client: &http.Client{},
		logger: logger,
		state:  StateIdle,
	}
}

// Open 激活订阅。缓冲区重建为空；已激活时先关闭旧订阅
func (s *Subscriber) Open(onReadings func([]models.VitalReading), capacity int) {
	s.Close()

	ctx, cancel := context.WithCancel(context.Background())

	s.mu.Lock()
	s.gen++
	gen := s.gen
	s.running = true
	s.cancel = cancel
	s.buffer = NewBuffer(capacity)
	s.onReadings = onReadings
	s.state = StateConnecting
	s.mu.Unlock()

	s.logger.Info("Stream subscriber opened",
		zap.Int("capacity", capacity),
	)

	go s.run(ctx, gen)
}

// Close 终止订阅并丢弃缓冲区。可在任意时刻调用，幂等
func (s *Subscriber) Close() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.gen++
	cancel := s.cancel
	s.cancel = nil
	s.buffer = nil
	s.onReadings = nil
	s.state = StateClosed
	s.mu.Unlock()

	cancel()
	s.logger.Info("Stream subscriber closed")
}

// State 当前连接状态
func (s *Subscriber) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// History 当前缓冲区内容的副本；未激活时返回 nil
func (s *Subscriber) History() []models.VitalReading {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.buffer == nil {
		return nil
	}
	return s.buffer.Snapshot()
}

// run 连接循环：断开后按指数退避重连，直到 Close
func (s *Subscriber) run(ctx context.Context, gen int) {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = time.Second
	bo.MaxInterval = 30 * time.Second
	bo.MaxElapsedTime = 0 // 无限重连

	for {
		if ctx.Err() != nil {
			return
		}

		opened, err := s.connect(ctx, gen)
		if ctx.Err() != nil {
			return
		}
		if opened {
			// 建连成功过，退避从头计
			bo.Reset()
		}

		s.setState(gen, StateReconnecting)
		wait := bo.NextBackOff()
		s.logger.Warn("Stream connection lost, reconnecting",
			zap.Duration("backoff", wait),
			zap.Error(err),
		)

		select {
		case <-ctx.Done():
			return
		case <-time.After(wait):
		}
	}
}

// connect 建立一次流连接并消费消息直到断开
// 返回值 opened 表示服务端是否接受了本次连接
func (s *Subscriber) connect(ctx context.Context, gen int) (bool, error) {
	streamURL := s.baseURL + "/api/vitals/stream"
	if token, ok := s.store.Token(); ok {
		streamURL += "?token=" + url.QueryEscape(token)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, streamURL, nil)
	if err != nil {
		return false, fmt.Errorf("failed to build stream request: %w", err)
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := s.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("failed to connect stream: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("stream rejected: status %d", resp.StatusCode)
	}

	s.setState(gen, StateOpen)
	s.logger.Info("Stream connected")

	// SSE 帧：若干 data: 行 + 空行结束一个事件
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var data strings.Builder
	for scanner.Scan() {
		line := scanner.Text()

		if line == "" {
			if data.Len() > 0 {
				s.handleMessage(gen, data.String())
				data.Reset()
			}
			continue
		}
		if payload, ok := strings.CutPrefix(line, "data:"); ok {
			data.WriteString(strings.TrimPrefix(payload, " "))
		}
		// 其余字段（event:、id:、注释行）忽略
	}

	return true, scanner.Err()
}

// handleMessage 解析一条流消息并发布完整缓冲区快照
func (s *Subscriber) handleMessage(gen int, payload string) {
	var reading models.VitalReading
	if err := json.Unmarshal([]byte(payload), &reading); err != nil {
		// 单条畸形消息不致命：丢弃并记录
		s.logger.Warn("Dropping malformed stream message",
			zap.Error(err),
		)
		return
	}

	s.mu.Lock()
	if gen != s.gen || s.buffer == nil {
		// 订阅已关闭，迟到消息不发布
		s.mu.Unlock()
		return
	}
	s.buffer.Append(reading)
	snapshot := s.buffer.Snapshot()
	fn := s.onReadings
	s.mu.Unlock()

	if fn != nil {
		fn(snapshot)
	}
}

// setState 更新状态；订阅已被关闭或重开时不回写
func (s *Subscriber) setState(gen int, state State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		return
	}
	s.state = state
}
