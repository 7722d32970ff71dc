package modem

import (
	"container/heap"
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/op/go-logging"
	"golang.org/x/sync/errgroup"

	"github.com/patel999jay/uwacomm/codecerr"
	"github.com/patel999jay/uwacomm/config"
	"github.com/patel999jay/uwacomm/config/flag"
)

var log = logging.MustGetLogger("uwacomm.modem")

var _ Driver = &Mock{}

// Hooks that tests override to get deterministic channel behavior.
var (
	timeNow   = time.Now
	randFloat = rand.Float64
)

// Mock simulates an acoustic modem channel in loopback mode: accepted
// frames are echoed back to the registered handlers after the configured
// propagation delay, subject to probabilistic packet loss and bit errors.
//
// The simulation watches the global configuration store for the following
// parameters, so channel conditions can be changed while running:
//
//	modem/mock/delay      propagation delay in seconds (default 1.0)
//	modem/mock/loss       packet loss probability (default 0.05)
//	modem/mock/ber        bit error rate (default 0.0001)
//	modem/mock/maxframe   hard MTU in bytes (default 64)
//
// Deliveries happen on a single worker goroutine in scheduled-time order,
// ties broken by submission order; they never happen inside SendFrame.
type Mock struct {
	mutex  sync.Mutex
	dialed bool

	localID uint8

	// Channel condition options.
	delay    *flag.Float64Flag
	loss     *flag.Float64Flag
	ber      *flag.Float64Flag
	maxFrame *flag.Uint32Flag

	handlers []Handler
	pending  deliveryQueue
	nextSeq  uint64

	// Signals the worker that the queue head may have changed.
	wakeChan chan struct{}

	cancelFn context.CancelFunc
	group    *errgroup.Group
}

// Option customizes a Mock at construction time.
type Option func(*Mock)

// WithLocalID sets the vehicle id reported as the source of looped-back
// frames. The default is 0 (topside).
func WithLocalID(id uint8) Option {
	return func(m *Mock) { m.localID = id }
}

// WithDelay overrides the propagation delay.
func WithDelay(delay time.Duration) Option {
	return func(m *Mock) { m.delay.Set(delay.Seconds()) }
}

// WithLossProbability overrides the packet loss probability.
func WithLossProbability(p float64) Option {
	return func(m *Mock) { m.loss.Set(p) }
}

// WithBitErrorRate overrides the bit error rate.
func WithBitErrorRate(ber float64) Option {
	return func(m *Mock) { m.ber.Set(ber) }
}

// WithMaxFrameSize overrides the hard MTU.
func WithMaxFrameSize(size uint32) Option {
	return func(m *Mock) { m.maxFrame.Set(size) }
}

// NewMock creates a simulated modem with the default channel conditions.
func NewMock(opts ...Option) *Mock {
	m := &Mock{
		delay:    flag.NewFloat64(config.Default, "modem/mock/delay", 1.0),
		loss:     flag.NewFloat64(config.Default, "modem/mock/loss", 0.05),
		ber:      flag.NewFloat64(config.Default, "modem/mock/ber", 0.0001),
		maxFrame: flag.NewUint32(config.Default, "modem/mock/maxframe", 64),
		wakeChan: make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Dial starts the delivery worker. Dialing an already dialed modem is a
// no-op.
func (m *Mock) Dial() error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if m.dialed {
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		return m.deliverLoop(ctx)
	})

	m.cancelFn = cancel
	m.group = group
	m.dialed = true

	log.Infof("mock modem dialed (delay=%gs loss=%g ber=%g mtu=%d)",
		m.delay.Get(), m.loss.Get(), m.ber.Get(), m.maxFrame.Get())
	return nil
}

// Close stops the delivery worker, drops all pending deliveries and
// detaches all registered handlers.
func (m *Mock) Close() error {
	m.mutex.Lock()
	if !m.dialed {
		m.mutex.Unlock()
		return ErrClosed
	}

	m.cancelFn()
	m.dialed = false
	dropped := len(m.pending)
	m.pending = nil
	m.handlers = nil
	group := m.group
	m.mutex.Unlock()

	_ = group.Wait()
	if dropped > 0 {
		log.Infof("mock modem closed, dropped %d pending deliveries", dropped)
	}
	return nil
}

// HandleFrame registers a handler for looped-back frames.
func (m *Mock) HandleFrame(h Handler) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.handlers = append(m.handlers, h)
}

// SendFrame accepts a frame for transmission and schedules its loopback
// delivery after the configured propagation delay. Frames larger than the
// MTU fail synchronously with an OversizeMessage error.
func (m *Mock) SendFrame(data []byte, dest uint8) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if !m.dialed {
		return ErrClosed
	}
	if mtu := int(m.maxFrame.Get()); len(data) > mtu {
		return codecerr.New(codecerr.OversizeMessage, "frame is %d bytes, modem MTU is %d", len(data), mtu)
	}

	d := &delivery{
		id:   uuid.New().String(),
		at:   timeNow().Add(time.Duration(m.delay.Get() * float64(time.Second))),
		seq:  m.nextSeq,
		data: append([]byte(nil), data...),
		src:  m.localID,
	}
	m.nextSeq++
	heap.Push(&m.pending, d)

	log.Debugf("tx %s: %d bytes to vehicle %d", d.id, len(data), dest)

	select {
	case m.wakeChan <- struct{}{}:
	default:
	}
	return nil
}

// deliverLoop drains the pending queue in scheduled-time order.
func (m *Mock) deliverLoop(ctx context.Context) error {
	for {
		m.mutex.Lock()
		var wait time.Duration
		if len(m.pending) == 0 {
			wait = time.Hour
		} else {
			wait = m.pending[0].at.Sub(timeNow())
		}

		if wait <= 0 && len(m.pending) > 0 {
			d := heap.Pop(&m.pending).(*delivery)
			handlers := append([]Handler(nil), m.handlers...)
			m.mutex.Unlock()

			m.deliver(d, handlers)
			continue
		}
		m.mutex.Unlock()

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case <-m.wakeChan:
			timer.Stop()
		case <-timer.C:
		}
	}
}

// deliver applies the channel effects to one frame and fans it out.
func (m *Mock) deliver(d *delivery, handlers []Handler) {
	if randFloat() < m.loss.Get() {
		log.Debugf("rx %s: frame lost in channel", d.id)
		return
	}

	if ber := m.ber.Get(); ber > 0 {
		flipped := 0
		for i := range d.data {
			for bit := 0; bit < 8; bit++ {
				if randFloat() < ber {
					d.data[i] ^= 1 << uint(bit)
					flipped++
				}
			}
		}
		if flipped > 0 {
			log.Debugf("rx %s: injected %d bit errors", d.id, flipped)
		}
	}

	log.Debugf("rx %s: %d bytes from vehicle %d", d.id, len(d.data), d.src)
	for _, h := range handlers {
		h(d.data, d.src)
	}
}

// delivery is one scheduled loopback event.
type delivery struct {
	id   string
	at   time.Time
	seq  uint64
	data []byte
	src  uint8
}

// deliveryQueue is a min-heap ordered by scheduled time, ties broken by
// submission order.
type deliveryQueue []*delivery

func (q deliveryQueue) Len() int { return len(q) }

func (q deliveryQueue) Less(i, j int) bool {
	if q[i].at.Equal(q[j].at) {
		return q[i].seq < q[j].seq
	}
	return q[i].at.Before(q[j].at)
}

func (q deliveryQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *deliveryQueue) Push(x interface{}) {
	*q = append(*q, x.(*delivery))
}

func (q *deliveryQueue) Pop() interface{} {
	old := *q
	n := len(old)
	d := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return d
}
