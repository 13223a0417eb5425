// Package irq provides a hosted interrupt controller.
package irq

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/golang/glog"
)

// Vector identifies an interrupt line.
type Vector int

// NumVectors is the number of vectors supported by a Controller.
const NumVectors = 96

// Well-known vectors.
const (
	USART1 Vector = 37
	USART2 Vector = 38
)

// PriorityLevels is the number of priority levels, 0 is the most urgent.
const PriorityLevels = 16

// DefaultPriority is assigned to vectors unless SetPriority is called.
const DefaultPriority = PriorityLevels / 2

var (
	// ErrRegistered indicates a handler is already registered on the vector.
	ErrRegistered = errors.New("handler already registered")
	// ErrNoHandler indicates the vector is unmasked without a handler.
	ErrNoHandler = errors.New("no handler registered")
	// ErrInvalidVector indicates the vector is out of range.
	ErrInvalidVector = errors.New("invalid vector")
)

// VectorError wraps an error with the vector it applies to.
type VectorError struct {
	Vector Vector
	Err    error
}

// Error implements error.
func (e *VectorError) Error() string {
	return fmt.Sprintf("irq %d: %v", e.Vector, e.Err)
}

// Handler services an interrupt. It runs to completion and is never
// re-entered for the same Controller.
type Handler interface {
	ServeIRQ()
}

// HandlerFunc is func form of Handler.
type HandlerFunc func()

// ServeIRQ implements Handler.
func (f HandlerFunc) ServeIRQ() {
	f()
}

type vectorState struct {
	handler  Handler
	priority int
	enabled  bool
	pending  bool
}

// Controller latches pending vectors and dispatches their handlers one at a
// time. A vector may be pended while masked; it is serviced once unmasked.
// Pending a vector from inside a handler (including its own) is serviced
// after the running handler returns.
type Controller struct {
	vectors [NumVectors]vectorState
	lock    sync.Mutex
	active  int32

	wakeUpCh chan struct{}
}

// New creates a Controller with all vectors masked.
func New() *Controller {
	c := &Controller{wakeUpCh: make(chan struct{}, 1)}
	for n := range c.vectors {
		c.vectors[n].priority = DefaultPriority
	}
	return c
}

func (c *Controller) vector(v Vector) (*vectorState, error) {
	if v < 0 || int(v) >= NumVectors {
		return nil, &VectorError{Vector: v, Err: ErrInvalidVector}
	}
	return &c.vectors[v], nil
}

// Register installs the handler of a vector. A vector accepts exactly one
// handler during the Controller's lifetime.
func (c *Controller) Register(v Vector, h Handler) error {
	c.lock.Lock()
	defer c.lock.Unlock()
	vs, err := c.vector(v)
	if err != nil {
		return err
	}
	if vs.handler != nil {
		return &VectorError{Vector: v, Err: ErrRegistered}
	}
	vs.handler = h
	return nil
}

// SetPriority sets the priority level of a vector.
func (c *Controller) SetPriority(v Vector, priority int) error {
	if priority < 0 || priority >= PriorityLevels {
		return &VectorError{Vector: v, Err: fmt.Errorf("invalid priority %d", priority)}
	}
	c.lock.Lock()
	defer c.lock.Unlock()
	vs, err := c.vector(v)
	if err != nil {
		return err
	}
	vs.priority = priority
	return nil
}

// Unmask enables a vector. Pending state latched while masked is kept.
func (c *Controller) Unmask(v Vector) error {
	c.lock.Lock()
	vs, err := c.vector(v)
	if err == nil && vs.handler == nil {
		err = &VectorError{Vector: v, Err: ErrNoHandler}
	}
	if err != nil {
		c.lock.Unlock()
		return err
	}
	vs.enabled = true
	pending := vs.pending
	c.lock.Unlock()
	glog.V(4).Infof("irq %d unmasked", v)
	if pending {
		c.wakeUp()
	}
	return nil
}

// Mask disables a vector.
func (c *Controller) Mask(v Vector) error {
	c.lock.Lock()
	defer c.lock.Unlock()
	vs, err := c.vector(v)
	if err != nil {
		return err
	}
	vs.enabled = false
	return nil
}

// Pend latches a vector pending. It never blocks and is safe to call from
// any goroutine, including handlers.
func (c *Controller) Pend(v Vector) {
	c.lock.Lock()
	vs, err := c.vector(v)
	if err != nil {
		c.lock.Unlock()
		glog.Warningf("pend: %v", err)
		return
	}
	vs.pending = true
	enabled := vs.enabled
	c.lock.Unlock()
	if enabled {
		c.wakeUp()
	}
}

// IsPending indicates a vector is latched pending.
func (c *Controller) IsPending(v Vector) bool {
	c.lock.Lock()
	defer c.lock.Unlock()
	vs, err := c.vector(v)
	return err == nil && vs.pending
}

// IsEnabled indicates a vector is unmasked.
func (c *Controller) IsEnabled(v Vector) bool {
	c.lock.Lock()
	defer c.lock.Unlock()
	vs, err := c.vector(v)
	return err == nil && vs.enabled
}

// Dispatch services pending unmasked vectors, most urgent first, until none
// is left. It returns the number of handler invocations. A Dispatch that
// starts while another is active returns 0 immediately, so handlers are
// never run concurrently or re-entered. The active one looks again after
// letting go, so a vector pended meanwhile is not left latched.
func (c *Controller) Dispatch() int {
	count := 0
	for atomic.CompareAndSwapInt32(&c.active, 0, 1) {
		count += c.drain()
		atomic.StoreInt32(&c.active, 0)
		if !c.hasPending() {
			break
		}
	}
	return count
}

func (c *Controller) drain() int {
	count := 0
	for {
		v, h := c.next()
		if h == nil {
			return count
		}
		glog.V(4).Infof("irq %d enter", v)
		h.ServeIRQ()
		count++
	}
}

func (c *Controller) hasPending() bool {
	c.lock.Lock()
	defer c.lock.Unlock()
	for n := range c.vectors {
		if vs := &c.vectors[n]; vs.pending && vs.enabled && vs.handler != nil {
			return true
		}
	}
	return false
}

// next picks the most urgent pending vector and clears its pending bit.
func (c *Controller) next() (Vector, Handler) {
	c.lock.Lock()
	defer c.lock.Unlock()
	found := -1
	for n := range c.vectors {
		vs := &c.vectors[n]
		if !vs.pending || !vs.enabled {
			continue
		}
		if found < 0 || vs.priority < c.vectors[found].priority {
			found = n
		}
	}
	if found < 0 {
		return 0, nil
	}
	vs := &c.vectors[found]
	vs.pending = false
	return Vector(found), vs.handler
}

// Run implements Runnable. It is the interrupt context: handlers are invoked
// only from this goroutine while it runs.
func (c *Controller) Run(ctx context.Context) error {
	c.Dispatch()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-c.wakeUpCh:
			c.Dispatch()
		}
	}
}

func (c *Controller) wakeUp() {
	select {
	case c.wakeUpCh <- struct{}{}:
	default:
	}
}
