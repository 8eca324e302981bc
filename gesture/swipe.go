package gesture

import (
	"errors"
	"fmt"
	"sync"
)

// State 滑动删除行的状态
type State int

const (
	Closed State = iota
	Dragging
	Open
	Deleting
)

func (s State) String() string {
	switch s {
	case Closed:
		return "closed"
	case Dragging:
		return "dragging"
	case Open:
		return "open"
	case Deleting:
		return "deleting"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Config 阈值和宽度均为正数，单位与拖动距离一致
type Config struct {
	OpenThreshold   float64 // 松手时超过该距离停在展开状态
	CommitThreshold float64 // 松手时超过该距离直接删除
	RevealWidth     float64 // 展开状态露出的删除按钮宽度
	MaxDrag         float64 // 最大拖动距离
	OffscreenWidth  float64 // 删除动画移出屏幕的距离
}

// DefaultConfig 默认手势参数
func DefaultConfig() Config {
	return Config{
		OpenThreshold:   40,
		CommitThreshold: 80,
		RevealWidth:     72,
		MaxDrag:         120,
		OffscreenWidth:  400,
	}
}

var ErrInvalidConfig = errors.New("无效的手势配置")

// Validate commit 阈值小于 open 阈值时展开状态不可达，视为配置错误
func (c Config) Validate() error {
	if c.OpenThreshold <= 0 || c.CommitThreshold <= 0 || c.RevealWidth <= 0 || c.MaxDrag <= 0 {
		return fmt.Errorf("%w: 阈值和宽度必须为正数", ErrInvalidConfig)
	}
	if c.CommitThreshold < c.OpenThreshold {
		return fmt.Errorf("%w: commit 阈值 %.0f 小于 open 阈值 %.0f", ErrInvalidConfig, c.CommitThreshold, c.OpenThreshold)
	}
	if c.MaxDrag < c.CommitThreshold {
		return fmt.Errorf("%w: 最大拖动距离 %.0f 小于 commit 阈值 %.0f", ErrInvalidConfig, c.MaxDrag, c.CommitThreshold)
	}
	return nil
}

// SwipeController 单行的左滑删除状态机。
// 拖动中偏移量限制在 [-MaxDrag, 0] 内，进入 Deleting 后为 -OffscreenWidth；
// 与当前状态不匹配的事件直接忽略。
type SwipeController struct {
	cfg      Config
	onDelete func()

	mu     sync.Mutex
	state  State
	offset float64
	base   float64
}

// NewSwipeController 创建状态机，每次进入 Deleting 调用一次 onDelete
func NewSwipeController(cfg Config, onDelete func()) (*SwipeController, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.OffscreenWidth < cfg.MaxDrag {
		cfg.OffscreenWidth = cfg.MaxDrag
	}
	return &SwipeController{cfg: cfg, onDelete: onDelete}, nil
}

func (c *SwipeController) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *SwipeController) Offset() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.offset
}

// DragStart 从 Closed 或 Open 开始水平拖动
func (c *SwipeController) DragStart() {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch c.state {
	case Closed:
		c.base = 0
	case Open:
		c.base = -c.cfg.RevealWidth
	default:
		return
	}
	c.offset = c.base
	c.state = Dragging
}

// DragUpdate dx 为相对拖动起点的水平位移，向左为负
func (c *SwipeController) DragUpdate(dx float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != Dragging {
		return
	}
	c.offset = clamp(c.base+dx, -c.cfg.MaxDrag, 0)
}

// Release 松手，按偏移量决定停在哪个状态
func (c *SwipeController) Release() {
	c.mu.Lock()
	if c.state != Dragging {
		c.mu.Unlock()
		return
	}
	distance := -c.offset
	switch {
	case distance >= c.cfg.CommitThreshold:
		c.enterDeleting()
		return
	case distance >= c.cfg.OpenThreshold:
		c.state = Open
		c.offset = -c.cfg.RevealWidth
	default:
		c.state = Closed
		c.offset = 0
	}
	c.mu.Unlock()
}

// TapDelete 展开状态下点击删除按钮
func (c *SwipeController) TapDelete() {
	c.mu.Lock()
	if c.state != Open {
		c.mu.Unlock()
		return
	}
	c.enterDeleting()
}

// enterDeleting 调用前持有锁，回调在释放锁之后执行
func (c *SwipeController) enterDeleting() {
	c.state = Deleting
	c.offset = -c.cfg.OffscreenWidth
	onDelete := c.onDelete
	c.mu.Unlock()
	if onDelete != nil {
		onDelete()
	}
}

// Reset 删除失败后让行回到关闭状态
func (c *SwipeController) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != Deleting {
		return
	}
	c.state = Closed
	c.offset = 0
	c.base = 0
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
