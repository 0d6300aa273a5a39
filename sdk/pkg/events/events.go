package events

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// 主题
const (
	TopicLoginSuccess = "auth.login.success"
	TopicLoginFailed  = "auth.login.failed"
	TopicAuthzChanged = "authz.policy.changed"
)

// Event 一条审计/通知事件。Payload 由各主题自行约定。
type Event struct {
	ID      string
	Topic   string
	Payload interface{}
	At      time.Time
}

// Handler 消费一条事件。在独立的 goroutine 中执行，不在请求路径上。
type Handler func(Event)

// Publisher 进程内异步事件通道。发布方 fire-and-forget：通道满时丢弃
// 并告警，绝不阻塞请求处理。登录日志、审计落库等旁路逻辑挂在消费端，
// 不属于授权判定契约的一部分。
type Publisher struct {
	ch     chan Event
	log    *zap.Logger
	done   chan struct{}
	mu     sync.RWMutex
	closed bool
}

// NewPublisher 创建事件通道，buffer 为积压上限。
func NewPublisher(buffer int, log *zap.Logger) *Publisher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Publisher{
		ch:   make(chan Event, buffer),
		log:  log,
		done: make(chan struct{}),
	}
}

// Publish 投递事件，通道满或已关闭时丢弃并记录，不会向关闭的通道发送。
func (p *Publisher) Publish(topic string, payload interface{}) {
	evt := Event{
		ID:      uuid.New().String(),
		Topic:   topic,
		Payload: payload,
		At:      time.Now(),
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		p.log.Warn("事件通道已关闭，事件被丢弃",
			zap.String("topic", topic), zap.String("id", evt.ID))
		return
	}
	select {
	case p.ch <- evt:
	default:
		p.log.Warn("事件通道已满，事件被丢弃",
			zap.String("topic", topic), zap.String("id", evt.ID))
	}
}

// Subscribe 启动消费循环，按投递顺序逐条调用 handler，直到 Close。
func (p *Publisher) Subscribe(handler Handler) {
	go func() {
		defer close(p.done)
		for evt := range p.ch {
			handler(evt)
		}
	}()
}

// Close 关闭通道并等待消费端清空积压，重复调用无副作用。
func (p *Publisher) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	p.mu.Unlock()

	close(p.ch)
	<-p.done
}
