package audio

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"murmur/log"
)

var ErrCaptureActive = errors.New("capture already active")

// Session is the audio of one record/stop cycle. The controller
// appends to it exclusively until Stop hands it to the caller; after
// that the controller keeps no reference.
type Session struct {
	StartedAt  time.Time
	SampleRate int
	pcm        []byte
}

// PCM returns the buffered little-endian 16-bit mono samples.
func (s *Session) PCM() []byte { return s.pcm }

func (s *Session) Frames() uint64 { return uint64(len(s.pcm) / 2) }

func (s *Session) Duration() time.Duration {
	if s.SampleRate == 0 {
		return 0
	}
	return time.Duration(float64(s.Frames()) / float64(s.SampleRate) * float64(time.Second))
}

// Controller owns the capture device and the drain goroutine. The
// capture callback only copies and enqueues; buffering, level
// computation and session ownership live on the drain side.
type Controller struct {
	device  CaptureDevice
	rate    int
	onLevel func(float64)

	mu        sync.Mutex
	sess      *Session
	frameCh   chan []byte
	stopDrain chan struct{}
	drainDone chan struct{}
	accepting atomic.Bool
	dropped   atomic.Uint64
	running   bool
}

// NewController wraps an open capture device. onLevel, if non-nil,
// receives an RMS level per chunk from the drain goroutine.
func NewController(device CaptureDevice, sampleRate int, onLevel func(float64)) *Controller {
	return &Controller{device: device, rate: sampleRate, onLevel: onLevel}
}

func (c *Controller) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running {
		return ErrCaptureActive
	}

	sess := &Session{StartedAt: time.Now(), SampleRate: c.rate}
	c.sess = sess
	c.frameCh = make(chan []byte, 64)
	c.stopDrain = make(chan struct{})
	c.drainDone = make(chan struct{})
	c.accepting.Store(true)
	go c.drain(sess, c.frameCh, c.stopDrain, c.drainDone)

	frameCh := c.frameCh
	c.device.SetCallback(func(data []byte, frameCount uint32) {
		if len(data) == 0 || !c.accepting.Load() {
			return
		}
		pcm := make([]byte, len(data))
		copy(pcm, data)
		select {
		case frameCh <- pcm:
		default:
			c.dropped.Add(1)
		}
	})

	if err := c.device.Start(); err != nil {
		c.device.ClearCallback()
		c.accepting.Store(false)
		close(c.stopDrain)
		<-c.drainDone
		c.sess = nil
		return err
	}
	c.running = true
	return nil
}

func (c *Controller) drain(sess *Session, frames <-chan []byte, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	for {
		select {
		case data := <-frames:
			sess.pcm = append(sess.pcm, data...)
			if c.onLevel != nil {
				c.onLevel(rms(data))
			}
		case <-stop:
			// Flush whatever the callback enqueued before it stopped.
			for {
				select {
				case data := <-frames:
					sess.pcm = append(sess.pcm, data...)
				default:
					return
				}
			}
		}
	}
}

// Stop ends capture, drains every queued frame into the session and
// returns it. Ownership of the session moves to the caller; the
// controller is reusable for the next Start.
func (c *Controller) Stop() *Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.running {
		return nil
	}

	c.device.Stop() // returns after the callback has quiesced
	c.device.ClearCallback()
	c.accepting.Store(false)
	close(c.stopDrain)
	<-c.drainDone

	if n := c.dropped.Swap(0); n > 0 {
		log.Warnf("audio: capture queue overflow, dropped %d chunks", n)
	}

	sess := c.sess
	c.sess = nil
	c.running = false
	return sess
}

func (c *Controller) Recording() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

func (c *Controller) DeviceName() string { return c.device.DeviceName() }

// SwitchDevice replaces the capture device. Only valid while stopped.
func (c *Controller) SwitchDevice(device CaptureDevice) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running {
		return ErrCaptureActive
	}
	c.device.Close()
	c.device = device
	return nil
}
