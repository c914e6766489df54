// Package circuitbreaker 熔断器
//
// 用于保护请求路径上的尽力而为调用(如发布对账事件)：
// 下游连续失败后直接返回ErrOpenState，不再等待超时；
// 熔断超时后放行少量探测请求，探测成功即恢复。
//
//	CLOSED --失败达到阈值--> OPEN --Timeout后--> HALF_OPEN --成功--> CLOSED
//	                                              HALF_OPEN --失败--> OPEN
package circuitbreaker

import (
	"errors"
	"sync"
	"time"
)

// State 熔断器状态
type State int

const (
	StateClosed   State = iota // 正常放行并统计
	StateOpen                  // 快速失败
	StateHalfOpen              // 放行MaxRequests个探测请求
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "CLOSED"
	case StateOpen:
		return "OPEN"
	case StateHalfOpen:
		return "HALF_OPEN"
	default:
		return "UNKNOWN"
	}
}

// ErrOpenState 熔断器打开，请求未执行
var ErrOpenState = errors.New("circuit breaker is open")

// Config 熔断器配置，零值字段使用默认值
type Config struct {
	MaxRequests uint32                   // 半开状态允许的探测请求数，默认1
	Interval    time.Duration            // CLOSED状态的统计窗口，默认60s
	Timeout     time.Duration            // OPEN状态持续时间，默认30s
	ReadyToTrip func(counts Counts) bool // 默认连续失败5次
}

func (c Config) withDefaults() Config {
	if c.MaxRequests == 0 {
		c.MaxRequests = 1
	}
	if c.Interval <= 0 {
		c.Interval = 60 * time.Second
	}
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
	if c.ReadyToTrip == nil {
		c.ReadyToTrip = func(counts Counts) bool { return counts.ConsecutiveFailures >= 5 }
	}
	return c
}

// Counts 当前统计窗口内的计数
type Counts struct {
	Requests             uint32
	TotalSuccesses       uint32
	TotalFailures        uint32
	ConsecutiveSuccesses uint32
	ConsecutiveFailures  uint32
}

// FailureRate 失败率，没有请求时为0
func (c Counts) FailureRate() float64 {
	if c.Requests == 0 {
		return 0
	}
	return float64(c.TotalFailures) / float64(c.Requests)
}

func (c *Counts) success() {
	c.TotalSuccesses++
	c.ConsecutiveSuccesses++
	c.ConsecutiveFailures = 0
}

func (c *Counts) failure() {
	c.TotalFailures++
	c.ConsecutiveFailures++
	c.ConsecutiveSuccesses = 0
}

// CircuitBreaker 熔断器，并发安全
type CircuitBreaker struct {
	name string
	cfg  Config
	now  func() time.Time

	mu            sync.Mutex
	state         State
	generation    uint64 // 每次状态切换递增，丢弃切换前发出的请求结果
	counts        Counts
	expiry        time.Time
	onStateChange func(name string, from, to State)
}

// NewCircuitBreaker 创建熔断器
func NewCircuitBreaker(name string, cfg Config) *CircuitBreaker {
	cb := &CircuitBreaker{
		name: name,
		cfg:  cfg.withDefaults(),
		now:  time.Now,
	}
	cb.expiry = cb.now().Add(cb.cfg.Interval)
	return cb
}

// OnStateChange 设置状态变化回调(在持锁状态下调用，回调内不能再访问熔断器)
func (cb *CircuitBreaker) OnStateChange(fn func(name string, from, to State)) {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.onStateChange = fn
}

// Name 熔断器名称
func (cb *CircuitBreaker) Name() string {
	return cb.name
}

// Execute 熔断器放行时执行req并记录结果，否则返回ErrOpenState
func (cb *CircuitBreaker) Execute(req func() error) error {
	generation, err := cb.before()
	if err != nil {
		return err
	}
	err = req()
	cb.after(generation, err == nil)
	return err
}

// State 当前状态
func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	state, _ := cb.current(cb.now())
	return state
}

// Counts 当前统计
func (cb *CircuitBreaker) Counts() Counts {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.counts
}

func (cb *CircuitBreaker) before() (uint64, error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	state, generation := cb.current(cb.now())
	if state == StateOpen {
		return generation, ErrOpenState
	}
	if state == StateHalfOpen && cb.counts.Requests >= cb.cfg.MaxRequests {
		return generation, ErrOpenState
	}
	cb.counts.Requests++
	return generation, nil
}

func (cb *CircuitBreaker) after(before uint64, success bool) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	now := cb.now()
	state, generation := cb.current(now)
	if generation != before {
		return
	}

	if success {
		cb.counts.success()
		if state == StateHalfOpen {
			cb.setState(StateClosed, now)
		}
		return
	}

	cb.counts.failure()
	switch state {
	case StateClosed:
		if cb.cfg.ReadyToTrip(cb.counts) {
			cb.setState(StateOpen, now)
		}
	case StateHalfOpen:
		cb.setState(StateOpen, now)
	}
}

// current 处理窗口过期：CLOSED重置计数，OPEN超时转HALF_OPEN
func (cb *CircuitBreaker) current(now time.Time) (State, uint64) {
	switch cb.state {
	case StateClosed:
		if !cb.expiry.IsZero() && cb.expiry.Before(now) {
			cb.counts = Counts{}
			cb.expiry = now.Add(cb.cfg.Interval)
		}
	case StateOpen:
		if cb.expiry.Before(now) {
			cb.setState(StateHalfOpen, now)
		}
	}
	return cb.state, cb.generation
}

func (cb *CircuitBreaker) setState(state State, now time.Time) {
	if cb.state == state {
		return
	}
	prev := cb.state
	cb.state = state
	cb.generation++
	cb.counts = Counts{}

	switch state {
	case StateClosed:
		cb.expiry = now.Add(cb.cfg.Interval)
	case StateOpen:
		cb.expiry = now.Add(cb.cfg.Timeout)
	case StateHalfOpen:
		cb.expiry = time.Time{}
	}

	if cb.onStateChange != nil {
		cb.onStateChange(cb.name, prev, state)
	}
}
