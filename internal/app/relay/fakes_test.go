package relay

import (
	"encoding/json"
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

var errFakeSend = errors.New("fake send failure")

// fakeHandle is an in-memory Transport recording everything sent to it.
type fakeHandle struct {
	id string

	mu         sync.Mutex
	frames     [][]byte
	failSends  bool
	closeCount int
	closeCode  int

	inbound   chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

func newFakeHandle(id string) *fakeHandle {
	return &fakeHandle{
		id:      id,
		inbound: make(chan []byte),
		done:    make(chan struct{}),
	}
}

func (f *fakeHandle) ID() string { return f.id }

func (f *fakeHandle) Send(data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failSends || f.closeCount > 0 {
		return errFakeSend
	}
	f.frames = append(f.frames, data)
	return nil
}

func (f *fakeHandle) Close(code int, reason string) error {
	f.mu.Lock()
	f.closeCount++
	if f.closeCount == 1 {
		f.closeCode = code
	}
	f.mu.Unlock()

	f.closeOnce.Do(func() { close(f.done) })
	return nil
}

func (f *fakeHandle) ReadLoop(onFrame func([]byte)) error {
	for {
		select {
		case frame := <-f.inbound:
			onFrame(frame)
		case <-f.done:
			return io.EOF
		}
	}
}

func (f *fakeHandle) setFailSends(fail bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failSends = fail
}

func (f *fakeHandle) closed() (bool, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closeCount > 0, f.closeCode
}

// received decodes every frame sent to the handle so far.
func (f *fakeHandle) received(t *testing.T) []map[string]any {
	t.Helper()

	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]map[string]any, 0, len(f.frames))
	for _, raw := range f.frames {
		var m map[string]any
		require.NoError(t, json.Unmarshal(raw, &m))
		out = append(out, m)
	}
	return out
}

func (f *fakeHandle) frameCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.frames)
}

func (f *fakeHandle) lastRaw() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.frames) == 0 {
		return ""
	}
	return string(f.frames[len(f.frames)-1])
}

// fakeVerifier accepts exactly the tokens in its map.
type fakeVerifier map[string]string

func (v fakeVerifier) Verify(token string) (string, error) {
	identity, ok := v[token]
	if !ok {
		return "", errors.New("invalid token")
	}
	return identity, nil
}

// presenceUsers extracts the users of a presence frame as strings.
func presenceUsers(t *testing.T, frame map[string]any) []string {
	t.Helper()

	require.Equal(t, TypeUsers, frame["type"])
	raw, ok := frame["users"].([]any)
	require.True(t, ok, "users must be a list: %v", frame)

	users := make([]string, 0, len(raw))
	for _, u := range raw {
		users = append(users, u.(string))
	}
	return users
}

// framesOfType filters decoded frames by their type field.
func framesOfType(frames []map[string]any, typ string) []map[string]any {
	var out []map[string]any
	for _, f := range frames {
		if f["type"] == typ {
			out = append(out, f)
		}
	}
	return out
}
