package audio

import "sync"

const fakeChunkBytes = 2048

// FakeContext replays a fixed PCM buffer through the CaptureDevice
// interface. Used by tests and by headless test mode.
type FakeContext struct {
	pcm []byte
}

func NewFakeContext(pcm []byte) *FakeContext {
	return &FakeContext{pcm: pcm}
}

func (f *FakeContext) Devices() ([]DeviceInfo, error) {
	return []DeviceInfo{{ID: "fake", Name: "fake"}}, nil
}

func (f *FakeContext) Close() {}

func (f *FakeContext) NewCapture(_ *DeviceInfo, _ CaptureConfig) (CaptureDevice, error) {
	return NewFakeCapture(f.pcm), nil
}

type FakeCapture struct {
	pcm []byte

	mu      sync.Mutex
	cb      DataCallback
	started bool
	fed     chan struct{}
}

func NewFakeCapture(pcm []byte) *FakeCapture {
	return &FakeCapture{pcm: pcm}
}

func (f *FakeCapture) SetCallback(cb DataCallback) {
	f.mu.Lock()
	f.cb = cb
	f.mu.Unlock()
}

func (f *FakeCapture) ClearCallback() {
	f.mu.Lock()
	f.cb = nil
	f.mu.Unlock()
}

func (f *FakeCapture) DeviceName() string { return "fake" }

// Start feeds the whole buffer through the callback in capture-sized
// chunks on a separate goroutine.
func (f *FakeCapture) Start() error {
	f.mu.Lock()
	f.started = true
	f.fed = make(chan struct{})
	fed := f.fed
	f.mu.Unlock()

	go func() {
		defer close(fed)
		for pos := 0; pos < len(f.pcm); pos += fakeChunkBytes {
			end := min(pos+fakeChunkBytes, len(f.pcm))
			f.mu.Lock()
			cb := f.cb
			f.mu.Unlock()
			if cb == nil {
				return
			}
			chunk := make([]byte, end-pos)
			copy(chunk, f.pcm[pos:end])
			cb(chunk, uint32(len(chunk)/2))
		}
	}()
	return nil
}

// Stop blocks until the feed goroutine is done, matching the real
// backends' quiesce-before-return contract.
func (f *FakeCapture) Stop() {
	f.mu.Lock()
	fed := f.fed
	started := f.started
	f.started = false
	f.mu.Unlock()
	if started && fed != nil {
		<-fed
	}
}

func (f *FakeCapture) Close() {}
