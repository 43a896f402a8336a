package st4

import (
	"bytes"
	"errors"
	"sync"
	"time"
)

// mockPort implements Port for testing.
type mockPort struct {
	mu       sync.Mutex
	readBuf  *bytes.Buffer
	writeBuf *bytes.Buffer
	writes   int
	readErr  error
	writeErr error
	timeout  time.Duration
	closed   bool
}

func newMockPort() *mockPort {
	return &mockPort{
		readBuf:  bytes.NewBuffer(nil),
		writeBuf: bytes.NewBuffer(nil),
	}
}

func (m *mockPort) Read(b []byte) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return 0, errors.New("port closed")
	}
	if m.readErr != nil {
		return 0, m.readErr
	}
	if m.readBuf.Len() == 0 {
		// behave like a serial port whose read timeout expired
		return 0, nil
	}
	return m.readBuf.Read(b)
}

func (m *mockPort) Write(b []byte) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return 0, errors.New("port closed")
	}
	if m.writeErr != nil {
		return 0, m.writeErr
	}
	m.writes++
	return m.writeBuf.Write(b)
}

func (m *mockPort) SetReadTimeout(t time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.timeout = t
	return nil
}

func (m *mockPort) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// respond queues data to be returned by Read.
func (m *mockPort) respond(data string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.readBuf.WriteString(data)
}

// written returns everything written to the port.
func (m *mockPort) written() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writeBuf.String()
}

// blockingPort blocks in Read until data is fed or the read timeout set
// through SetReadTimeout expires, like a real serial port.
type blockingPort struct {
	mu          sync.Mutex
	timeout     time.Duration
	timeoutSets int
	data        chan []byte
	rest        []byte
}

func newBlockingPort() *blockingPort {
	return &blockingPort{
		timeout: -1,
		data:    make(chan []byte, 16),
	}
}

func (p *blockingPort) Read(b []byte) (int, error) {
	p.mu.Lock()
	if len(p.rest) > 0 {
		n := copy(b, p.rest)
		p.rest = p.rest[n:]
		p.mu.Unlock()
		return n, nil
	}
	timeout := p.timeout
	p.mu.Unlock()

	var expired <-chan time.Time
	if timeout >= 0 {
		expired = time.After(timeout)
	}

	select {
	case data := <-p.data:
		p.mu.Lock()
		defer p.mu.Unlock()
		n := copy(b, data)
		p.rest = append(p.rest, data[n:]...)
		return n, nil
	case <-expired:
		return 0, nil
	}
}

func (p *blockingPort) Write(b []byte) (int, error) { return len(b), nil }
func (p *blockingPort) Close() error                { return nil }

func (p *blockingPort) SetReadTimeout(t time.Duration) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.timeout = t
	p.timeoutSets++
	return nil
}

// feed makes data available to the next Read.
func (p *blockingPort) feed(data string) {
	p.data <- []byte(data)
}
