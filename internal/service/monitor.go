package service

import (
	"context"
	"sync"

	"healthguard-console/internal/config"
	"healthguard-console/internal/gateway"
	"healthguard-console/internal/models"
	"healthguard-console/internal/poller"
	"healthguard-console/internal/session"
	"healthguard-console/internal/stream"
	"healthguard-console/internal/vitals"

	"go.uber.org/zap"
)

// UpdateKind 状态更新类型
type UpdateKind string

const (
	UpdateReading        UpdateKind = "reading"         // 轮询到新的最新读数
	UpdateHistory        UpdateKind = "history"         // 流缓冲区有新读数
	UpdateStatus         UpdateKind = "status"          // 设备状态刷新
	UpdatePatient        UpdateKind = "patient"         // 患者档案加载/更新
	UpdateSessionExpired UpdateKind = "session_expired" // 会话失效（登出事件）
)

// Update 发布给展示层的状态更新
type Update struct {
	Kind     UpdateKind
	Reading  *models.VitalReading
	Snapshot *vitals.Snapshot
	History  []models.VitalReading
	Status   *models.SystemStatus
	Patient  *models.Patient
}

// Monitor 监护服务（整合各层）
// 网关 → {轮询器, 流订阅} → 派生状态 → 展示层回调，单向数据流。
// 用户操作（登录、手动同步、档案编辑）经网关反向进入
type Monitor struct {
	config *config.Config
	store  *session.Store
	gw     *gateway.Gateway
	sub    *stream.Subscriber
	logger *zap.Logger

	latestPoller  *poller.Poller
	statusPoller  *poller.Poller
	patientPoller *poller.Poller

	mu        sync.Mutex
	started   bool
	latest    *models.VitalReading
	previous  *models.VitalReading // 上一条轮询读数，用于趋势
	snapshot  *vitals.Snapshot
	status    *models.SystemStatus
	patient   *models.Patient
	history   []models.VitalReading
	stale     bool // 会话失效后为 true，数据不再视为新鲜
	listeners map[int]func(Update)
	nextID    int

	unsubs []func()
}

// NewMonitor 创建监护服务
func NewMonitor(cfg *config.Config, logger *zap.Logger) *Monitor {
	store := session.NewStore(logger)
	gw := gateway.New(cfg.Backend.BaseURL, store, cfg.Backend.RequestTimeout, logger)
	sub := stream.New(cfg.Backend.BaseURL, store, logger)

	m := &Monitor{
		config:    cfg,
		store:     store,
		gw:        gw,
		sub:       sub,
		logger:    logger,
		listeners: make(map[int]func(Update)),
	}

	m.latestPoller = poller.New("latest_vital", cfg.Poll.LatestInterval,
		func(ctx context.Context) (interface{}, error) {
			return gw.LatestVital(ctx)
		}, logger)
	m.statusPoller = poller.New("system_status", cfg.Poll.StatusInterval,
		func(ctx context.Context) (interface{}, error) {
			return gw.SystemStatus(ctx)
		}, logger)
	// 患者档案只需加载一次
	m.patientPoller = poller.New("patient_profile", 0,
		func(ctx context.Context) (interface{}, error) {
			return gw.Patient(ctx)
		}, logger)

	return m
}

// Start 启动轮询与流订阅。重复调用是空操作
func (m *Monitor) Start() {
	m.mu.Lock()
	if m.started {
		m.mu.Unlock()
		return
	}
	m.started = true
	m.mu.Unlock()

	m.logger.Info("Monitor starting",
		zap.String("backend", m.config.Backend.BaseURL),
		zap.Duration("latest_interval", m.config.Poll.LatestInterval),
		zap.Duration("status_interval", m.config.Poll.StatusInterval),
		zap.Int("stream_capacity", m.config.Stream.BufferCapacity),
	)

	unsubs := []func(){
		m.store.OnExpired(m.onSessionExpired),
		m.latestPoller.Subscribe(m.onLatest),
		m.statusPoller.Subscribe(m.onStatus),
		m.patientPoller.Subscribe(m.onPatient),
	}
	m.mu.Lock()
	m.unsubs = unsubs
	m.mu.Unlock()

	m.latestPoller.Start()
	m.statusPoller.Start()
	m.patientPoller.Start()
	m.sub.Open(m.onHistory, m.config.Stream.BufferCapacity)
}

// Stop 停止轮询、关闭流订阅。在途结果被丢弃
func (m *Monitor) Stop() {
	m.mu.Lock()
	if !m.started {
		m.mu.Unlock()
		return
	}
	m.started = false
	unsubs := m.unsubs
	m.unsubs = nil
	m.mu.Unlock()

	m.latestPoller.Stop()
	m.statusPoller.Stop()
	m.patientPoller.Stop()
	m.sub.Close()
	for _, unsub := range unsubs {
		unsub()
	}
	m.logger.Info("Monitor stopped")
}

// Subscribe 注册状态更新监听者，返回注销函数
func (m *Monitor) Subscribe(fn func(Update)) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.nextID
	m.nextID++
	m.listeners[id] = fn

	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.listeners, id)
	}
}

// ---- 用户操作（经网关反向进入）----

// Login 登录。失败原样返回错误，由调用方作为阻塞性消息呈现
func (m *Monitor) Login(ctx context.Context, username, password string) (*models.User, error) {
	resp, err := m.gw.Login(ctx, username, password)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	m.stale = false
	m.mu.Unlock()
	return &resp.User, nil
}

// Logout 显式登出，清除会话
func (m *Monitor) Logout() {
	m.store.Clear()
}

// TriggerSync 手动触发向中心服务器同步
func (m *Monitor) TriggerSync(ctx context.Context) (*models.SyncResult, error) {
	return m.gw.TriggerSync(ctx)
}

// UpdatePatient 更新患者档案并刷新本地缓存
func (m *Monitor) UpdatePatient(ctx context.Context, update models.PatientUpdate) (*models.Patient, error) {
	patient, err := m.gw.UpdatePatient(ctx, update)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	m.patient = patient
	m.mu.Unlock()
	m.publish(Update{Kind: UpdatePatient, Patient: patient})
	return patient, nil
}

// Stats 聚合统计透传
func (m *Monitor) Stats(ctx context.Context, hours int) (*models.VitalStats, error) {
	return m.gw.VitalStats(ctx, hours)
}

// Vitals 分页历史读数透传
func (m *Monitor) Vitals(ctx context.Context, page, pageSize int) (*models.VitalsPage, error) {
	return m.gw.Vitals(ctx, page, pageSize)
}

// ---- 读取当前状态 ----

// LatestVital 最近一次成功轮询的读数及其派生状态
func (m *Monitor) LatestVital() (*models.VitalReading, *vitals.Snapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.latest, m.snapshot
}

// SystemStatus 最近一次成功获取的设备状态
func (m *Monitor) SystemStatus() *models.SystemStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

// Patient 患者档案
func (m *Monitor) Patient() *models.Patient {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.patient
}

// History 流缓冲区当前内容
func (m *Monitor) History() []models.VitalReading {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.history
}

// Stale 会话失效后为 true：数据停留在失效前的最后状态
func (m *Monitor) Stale() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stale
}

// ---- 内部回调 ----

func (m *Monitor) onLatest(res poller.Result) {
	if res.Err != nil {
		// 瞬时失败：保留旧数据，下个周期重试（轮询器已记录日志）
		return
	}
	reading, _ := res.Value.(*models.VitalReading)
	if reading == nil {
		// 后端暂无读数
		return
	}

	m.mu.Lock()
	m.previous = m.latest
	m.latest = reading
	snap := vitals.Evaluate(*reading, m.previous, m.config.Thresholds)
	m.snapshot = &snap
	m.stale = false
	m.mu.Unlock()

	if snap.AlertCount() > 0 {
		m.logger.Warn("Vital reading outside safe bounds",
			zap.Time("timestamp", reading.Timestamp),
			zap.Int("alert_count", snap.AlertCount()),
		)
	}
	m.publish(Update{Kind: UpdateReading, Reading: reading, Snapshot: &snap})
}

func (m *Monitor) onStatus(res poller.Result) {
	if res.Err != nil {
		return
	}
	status, _ := res.Value.(*models.SystemStatus)
	if status == nil {
		return
	}

	m.mu.Lock()
	m.status = status
	m.mu.Unlock()

	m.publish(Update{Kind: UpdateStatus, Status: status})
}

func (m *Monitor) onPatient(res poller.Result) {
	if res.Err != nil {
		return
	}
	patient, _ := res.Value.(*models.Patient)
	if patient == nil {
		return
	}

	m.mu.Lock()
	m.patient = patient
	m.mu.Unlock()

	m.publish(Update{Kind: UpdatePatient, Patient: patient})
}

// onHistory 流缓冲区更新：收到完整有界历史
func (m *Monitor) onHistory(readings []models.VitalReading) {
	if len(readings) == 0 {
		return
	}
	last := readings[len(readings)-1]
	var prev *models.VitalReading
	if len(readings) > 1 {
		prev = &readings[len(readings)-2]
	}
	snap := vitals.Evaluate(last, prev, m.config.Thresholds)

	m.mu.Lock()
	m.history = readings
	m.stale = false
	m.mu.Unlock()

	m.publish(Update{Kind: UpdateHistory, History: readings, Snapshot: &snap})
}

// onSessionExpired 会话失效：数据标记为过期，向展示层发出登出事件
// 会话存储保证每次失效只通知一次
func (m *Monitor) onSessionExpired() {
	m.mu.Lock()
	m.stale = true
	m.mu.Unlock()

	m.logger.Warn("Session expired, data is now stale")
	m.publish(Update{Kind: UpdateSessionExpired})
}

func (m *Monitor) publish(u Update) {
	m.mu.Lock()
	fns := make([]func(Update), 0, len(m.listeners))
	for _, fn := range m.listeners {
		fns = append(fns, fn)
	}
	m.mu.Unlock()

	for _, fn := range fns {
		fn(u)
	}
}

// Store 会话存储（供需要直接读取身份的调用方使用）
func (m *Monitor) Store() *session.Store { return m.store }

// Gateway 请求网关
func (m *Monitor) Gateway() *gateway.Gateway { return m.gw }

// StreamState 流订阅当前状态
func (m *Monitor) StreamState() stream.State { return m.sub.State() }
