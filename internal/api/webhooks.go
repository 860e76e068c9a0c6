package api

import (
	"bytes"
	"cmp"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/annel0/horde-arena/internal/eventbus"
	"github.com/annel0/horde-arena/internal/logging"
)

// OutboundWebhook внешний адрес, получающий события боя
type OutboundWebhook struct {
	ID           uint64     `json:"id"`
	Name         string     `json:"name" binding:"required"`
	URL          string     `json:"url" binding:"required,url"`
	Secret       string     `json:"secret,omitempty"`
	Events       []string   `json:"events" binding:"required"` // Типы событий или "*"
	Timeout      int        `json:"timeout"`                   // Таймаут в секундах
	RetryCount   int        `json:"retry_count"`
	CreatedAt    time.Time  `json:"created_at"`
	LastUsed     *time.Time `json:"last_used,omitempty"`
	FailureCount int        `json:"failure_count"`
}

// WebhookManager пересылает события шины подписанным webhook'ам
type WebhookManager struct {
	mu         sync.RWMutex
	webhooks   map[uint64]*OutboundWebhook
	nextID     uint64
	httpClient *http.Client
	serverID   string
	backoff    time.Duration
	sub        eventbus.Subscription
	wg         sync.WaitGroup
}

// NewWebhookManager создает менеджер и подписывает его на события bus
func NewWebhookManager(bus eventbus.EventBus, serverID string) (*WebhookManager, error) {
	m := &WebhookManager{
		webhooks:   make(map[uint64]*OutboundWebhook),
		nextID:     1,
		serverID:   serverID,
		backoff:    time.Second,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}

	sub, err := bus.Subscribe(context.Background(), eventbus.Filter{}, func(_ context.Context, ev *eventbus.Envelope) {
		m.Dispatch(ev)
	})
	if err != nil {
		return nil, err
	}
	m.sub = sub
	return m, nil
}

// AddWebhook добавляет новый webhook
func (m *WebhookManager) AddWebhook(webhook OutboundWebhook) *OutboundWebhook {
	m.mu.Lock()
	defer m.mu.Unlock()

	webhook.ID = m.nextID
	m.nextID++
	webhook.CreatedAt = time.Now()
	if webhook.Timeout <= 0 {
		webhook.Timeout = 10
	}
	if webhook.RetryCount < 0 {
		webhook.RetryCount = 0
	}

	m.webhooks[webhook.ID] = &webhook
	copied := webhook
	return &copied
}

// GetWebhooks возвращает копии всех webhook'ов, упорядоченные по ID
func (m *WebhookManager) GetWebhooks() []OutboundWebhook {
	m.mu.RLock()
	defer m.mu.RUnlock()

	list := make([]OutboundWebhook, 0, len(m.webhooks))
	for _, wh := range m.webhooks {
		list = append(list, *wh)
	}
	slices.SortFunc(list, func(a, b OutboundWebhook) int {
		return cmp.Compare(a.ID, b.ID)
	})
	return list
}

// DeleteWebhook удаляет webhook
func (m *WebhookManager) DeleteWebhook(id uint64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.webhooks[id]; !ok {
		return false
	}
	delete(m.webhooks, id)
	return true
}

// Dispatch отправляет событие всем подписанным webhook'ам в фоне
func (m *WebhookManager) Dispatch(ev *eventbus.Envelope) {
	m.mu.RLock()
	targets := make([]OutboundWebhook, 0)
	for _, wh := range m.webhooks {
		if subscribed(wh.Events, ev.EventType) {
			targets = append(targets, *wh)
		}
	}
	m.mu.RUnlock()

	if len(targets) == 0 {
		return
	}

	body, err := json.Marshal(ev)
	if err != nil {
		logging.Error("❌ Ошибка маршалинга события %s: %v", ev.EventType, err)
		return
	}

	for _, wh := range targets {
		m.wg.Add(1)
		go func(wh OutboundWebhook) {
			defer m.wg.Done()
			m.send(wh, ev.EventType, body)
		}(wh)
	}
}

// Wait дожидается завершения отправок
func (m *WebhookManager) Wait() {
	m.wg.Wait()
}

// Close отписывается от шины и дожидается отправок
func (m *WebhookManager) Close() {
	if m.sub != nil {
		m.sub.Unsubscribe()
	}
	m.wg.Wait()
}

func subscribed(events []string, eventType string) bool {
	return slices.Contains(events, eventType) || slices.Contains(events, "*")
}

// send доставляет событие с повторами и линейной задержкой
func (m *WebhookManager) send(wh OutboundWebhook, eventType string, body []byte) {
	success := false
	for attempt := 0; attempt <= wh.RetryCount; attempt++ {
		if attempt > 0 {
			time.Sleep(time.Duration(attempt) * m.backoff)
		}

		status, err := m.post(wh, eventType, body)
		if err != nil {
			logging.Warn("⚠️ Попытка %d/%d для webhook %s: %v", attempt+1, wh.RetryCount+1, wh.Name, err)
			continue
		}
		if status >= 200 && status < 300 {
			success = true
			logging.Debug("✅ Событие %s отправлено в webhook %s", eventType, wh.Name)
			break
		}
		logging.Warn("⚠️ Webhook %s вернул статус %d на попытке %d", wh.Name, status, attempt+1)
	}

	m.mu.Lock()
	if stored, ok := m.webhooks[wh.ID]; ok {
		now := time.Now()
		stored.LastUsed = &now
		if !success {
			stored.FailureCount++
		}
	}
	m.mu.Unlock()
}

func (m *WebhookManager) post(wh OutboundWebhook, eventType string, body []byte) (int, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(wh.Timeout)*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, wh.URL, bytes.NewReader(body))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "Horde-Arena/1.0")
	req.Header.Set("X-Event-Type", eventType)
	req.Header.Set("X-Server-ID", m.serverID)
	if wh.Secret != "" {
		req.Header.Set("X-Webhook-Signature", Sign(body, wh.Secret))
	}

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	resp.Body.Close()
	return resp.StatusCode, nil
}

// Sign возвращает HMAC-SHA256 подпись тела в формате "sha256=<hex>"
func Sign(data []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(data)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature проверяет подпись, сделанную Sign, за постоянное время
func VerifySignature(data []byte, secret, signature string) bool {
	return hmac.Equal([]byte(Sign(data, secret)), []byte(signature))
}

// === ОБРАБОТЧИКИ WEBHOOK'ОВ ===

func (s *Server) handleGetWebhooks(c *gin.Context) {
	if s.webhooks == nil {
		c.JSON(http.StatusServiceUnavailable, GenericResponse{Success: false, Message: "Webhook'и отключены"})
		return
	}
	list := s.webhooks.GetWebhooks()
	c.JSON(http.StatusOK, GenericResponse{
		Success: true,
		Message: "Список webhook'ов получен",
		Data:    gin.H{"webhooks": list, "total": len(list)},
	})
}

func (s *Server) handleCreateWebhook(c *gin.Context) {
	if s.webhooks == nil {
		c.JSON(http.StatusServiceUnavailable, GenericResponse{Success: false, Message: "Webhook'и отключены"})
		return
	}

	var wh OutboundWebhook
	if err := c.ShouldBindJSON(&wh); err != nil {
		c.JSON(http.StatusBadRequest, GenericResponse{
			Success: false,
			Message: "Неверный формат webhook'а: " + err.Error(),
		})
		return
	}
	if len(wh.Events) == 0 {
		c.JSON(http.StatusBadRequest, GenericResponse{
			Success: false,
			Message: "Обязательные поля: name, url, events",
		})
		return
	}

	created := s.webhooks.AddWebhook(wh)
	c.JSON(http.StatusCreated, GenericResponse{
		Success: true,
		Message: "Webhook создан успешно",
		Data:    created,
	})
}

func (s *Server) handleDeleteWebhook(c *gin.Context) {
	if s.webhooks == nil {
		c.JSON(http.StatusServiceUnavailable, GenericResponse{Success: false, Message: "Webhook'и отключены"})
		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, GenericResponse{Success: false, Message: "Неверный ID webhook'а"})
		return
	}
	if !s.webhooks.DeleteWebhook(id) {
		c.JSON(http.StatusNotFound, GenericResponse{Success: false, Message: "Webhook не найден"})
		return
	}
	c.JSON(http.StatusOK, GenericResponse{Success: true, Message: "Webhook удалён"})
}
