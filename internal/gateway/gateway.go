package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"healthguard-console/internal/models"
	"healthguard-console/internal/session"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Gateway 到边缘节点后端的请求网关
// 负责附加凭证、序列化请求体、归类失败原因。
// 401 响应会清除会话存储，由存储的通知机制告知各消费方
type Gateway struct {
	baseURL string
	store   *session.Store
	client  *http.Client
	logger  *zap.Logger
}

// New 创建请求网关
func New(baseURL string, store *session.Store, timeout time.Duration, logger *zap.Logger) *Gateway {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Gateway{
		baseURL: baseURL,
		store:   store,
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// errorBody 后端结构化错误体（FastAPI 风格）
type errorBody struct {
	Detail string `json:"detail"`
}

// Do 发送一次请求并解码响应
// body 非 nil 时序列化为 JSON；out 非 nil 时解码响应体到 out
func (g *Gateway) Do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	requestID := uuid.New().String()
	req.Header.Set("X-Request-ID", requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token, ok := g.store.Token(); ok {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	g.logger.Debug("Sending request",
		zap.String("method", method),
		zap.String("path", path),
		zap.String("request_id", requestID),
	)

	resp, err := g.client.Do(req)
	if err != nil {
		return &TransportError{Err: err}
	}
	defer resp.Body.Close()

	// 401：凭证失效。清除会话（通知所有监听者），响应体内容不参与判断
	if resp.StatusCode == http.StatusUnauthorized {
		g.logger.Warn("Request rejected: credential no longer valid",
			zap.String("path", path),
			zap.String("request_id", requestID),
		)
		g.store.Clear()
		return ErrSessionExpired
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &TransportError{Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail := fmt.Sprintf("status %d", resp.StatusCode)
		var eb errorBody
		if err := json.Unmarshal(data, &eb); err == nil && eb.Detail != "" {
			detail = eb.Detail
		}
		return &RequestError{Status: resp.StatusCode, Detail: detail}
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return &DecodeError{Err: err}
		}
	}
	return nil
}

// Login 用户名密码登录。成功后写入会话存储
func (g *Gateway) Login(ctx context.Context, username, password string) (*models.TokenResponse, error) {
	var resp models.TokenResponse
	req := models.LoginRequest{Username: username, Password: password}
	if err := g.Do(ctx, http.MethodPost, "/api/auth/login", req, &resp); err != nil {
		return nil, err
	}
	g.store.Set(resp.AccessToken, &resp.User)
	g.logger.Info("Login succeeded",
		zap.String("username", resp.User.Username),
		zap.String("role", resp.User.Role),
	)
	return &resp, nil
}

// Me 获取当前登录用户
func (g *Gateway) Me(ctx context.Context) (*models.User, error) {
	var user models.User
	if err := g.Do(ctx, http.MethodGet, "/api/auth/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Vitals 分页获取历史读数
func (g *Gateway) Vitals(ctx context.Context, page, pageSize int) (*models.VitalsPage, error) {
	var result models.VitalsPage
	path := fmt.Sprintf("/api/vitals?page=%d&page_size=%d", page, pageSize)
	if err := g.Do(ctx, http.MethodGet, path, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// LatestVital 获取最新一条读数；后端无数据时返回 nil
func (g *Gateway) LatestVital(ctx context.Context) (*models.VitalReading, error) {
	var reading *models.VitalReading
	if err := g.Do(ctx, http.MethodGet, "/api/vitals/latest", nil, &reading); err != nil {
		return nil, err
	}
	return reading, nil
}

// VitalStats 获取最近 hours 小时的聚合统计
func (g *Gateway) VitalStats(ctx context.Context, hours int) (*models.VitalStats, error) {
	var stats models.VitalStats
	path := fmt.Sprintf("/api/vitals/stats?hours=%d", hours)
	if err := g.Do(ctx, http.MethodGet, path, nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// Patient 获取患者档案
func (g *Gateway) Patient(ctx context.Context) (*models.Patient, error) {
	var patient models.Patient
	if err := g.Do(ctx, http.MethodGet, "/api/patient", nil, &patient); err != nil {
		return nil, err
	}
	return &patient, nil
}

// UpdatePatient 更新患者档案
func (g *Gateway) UpdatePatient(ctx context.Context, update models.PatientUpdate) (*models.Patient, error) {
	var patient models.Patient
	if err := g.Do(ctx, http.MethodPut, "/api/patient", update, &patient); err != nil {
		return nil, err
	}
	return &patient, nil
}

// SystemStatus 获取设备运行状态
func (g *Gateway) SystemStatus(ctx context.Context) (*models.SystemStatus, error) {
	var status models.SystemStatus
	if err := g.Do(ctx, http.MethodGet, "/api/system/status", nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// TriggerSync 手动触发向中心服务器同步
func (g *Gateway) TriggerSync(ctx context.Context) (*models.SyncResult, error) {
	var result models.SyncResult
	if err := g.Do(ctx, http.MethodPost, "/api/system/sync", nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// BaseURL 返回后端基础地址（流式订阅方拼接流地址时使用）
func (g *Gateway) BaseURL() string { return g.baseURL }
