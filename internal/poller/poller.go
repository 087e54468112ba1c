package poller

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Fetch 一次轮询操作
type Fetch func(ctx context.Context) (interface{}, error)

// Result 一次轮询的发布结果
type Result struct {
	Value interface{}
	Err   error
	At    time.Time
}

// Poller 固定周期轮询器
// 启动后立即执行一次，之后按周期重复；失败不停止（固定间隔无限重试）。
// 同一任务同时最多一次在途调用：上一次未完成时跳过本次 tick。
// Stop 之后迟到的结果静默丢弃，不发布
type Poller struct {
	name     string
	interval time.Duration // <= 0 表示只执行一次，不重复
	fetch    Fetch
	logger   *zap.Logger

	mu        sync.Mutex
	running   bool
	gen       int // Stop 时递增，用于丢弃迟到结果
	cancel    context.CancelFunc
	inflight  bool
	latest    *Result
	listeners map[int]func(Result)
	nextID    int
}

// New 创建轮询器
func New(name string, interval time.Duration, fetch Fetch, logger *zap.Logger) *Poller {
	return &Poller{
		name:      name,
		interval:  interval,
		fetch:     fetch,
		logger:    logger,
		listeners: make(map[int]func(Result)),
	}
}

// Start 启动轮询。重复调用是空操作
func (p *Poller) Start() {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return
	}
	p.running = true
	gen := p.gen
	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	p.mu.Unlock()

	p.logger.Info("Poller started",
		zap.String("task", p.name),
		zap.Duration("interval", p.interval),
	)

	go p.loop(ctx, gen)
}

// Stop 停止轮询。在途请求的结果在其完成时被丢弃
func (p *Poller) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	p.running = false
	p.gen++
	cancel := p.cancel
	p.mu.Unlock()

	cancel()
	p.logger.Info("Poller stopped",
		zap.String("task", p.name),
	)
}

// Latest 最近一次发布的结果
func (p *Poller) Latest() (Result, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.latest == nil {
		return Result{}, false
	}
	return *p.latest, true
}

// Subscribe 注册结果监听者，返回注销函数
func (p *Poller) Subscribe(fn func(Result)) func() {
	p.mu.Lock()
	defer p.mu.Unlock()
	id := p.nextID
	p.nextID++
	p.listeners[id] = fn

	return func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		delete(p.listeners, id)
	}
}

func (p *Poller) loop(ctx context.Context, gen int) {
	p.runOnce(ctx, gen)

	if p.interval <= 0 {
		// 单次任务（如患者档案的一次性获取）
		return
	}

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.runOnce(ctx, gen)
		}
	}
}

// runOnce 发起一次调用。上一次仍在途时跳过本次 tick，
// 避免慢后端下并发请求无限增长
func (p *Poller) runOnce(ctx context.Context, gen int) {
	p.mu.Lock()
	if p.inflight {
		p.mu.Unlock()
		p.logger.Debug("Tick skipped: previous fetch still in flight",
			zap.String("task", p.name),
		)
		return
	}
	p.inflight = true
	p.mu.Unlock()

	go func() {
		value, err := p.fetch(ctx)
		p.publish(gen, Result{Value: value, Err: err, At: time.Now()})
	}()
}

func (p *Poller) publish(gen int, res Result) {
	p.mu.Lock()
	p.inflight = false
	if gen != p.gen {
		// 任务已停止，迟到结果不发布
		p.mu.Unlock()
		return
	}
	p.latest = &res
	fns := make([]func(Result), 0, len(p.listeners))
	for _, fn := range p.listeners {
		fns = append(fns, fn)
	}
	p.mu.Unlock()

	if res.Err != nil {
		p.logger.Warn("Poll fetch failed",
			zap.String("task", p.name),
			zap.Error(res.Err),
		)
	}
	for _, fn := range fns {
		fn(res)
	}
}
