package api

import (
	"encoding/json"
	"io"
	"strings"
	"sync"

	"github.com/sandeepkv93/todoai/internal/chat"
)

const doneSentinel = "[DONE]"

// EventStream yields the agent events of one streaming request. Next returns
// io.EOF once the server closes the stream. Close must always be called.
type EventStream struct {
	scanner   *sseScanner
	body      io.Closer
	closeOnce sync.Once
}

func newEventStream(body io.ReadCloser) *EventStream {
	return &EventStream{scanner: newSSEScanner(body), body: body}
}

func (s *EventStream) Next() (chat.Event, error) {
	for s.scanner.Next() {
		raw := s.scanner.Event()
		if strings.TrimSpace(raw.Data) == doneSentinel {
			continue
		}
		return chat.Event{Kind: raw.Type, Data: decodeData(raw.Data)}, nil
	}
	if err := s.scanner.Err(); err != nil {
		return chat.Event{}, err
	}
	return chat.Event{}, io.EOF
}

func (s *EventStream) Close() error {
	var err error
	s.closeOnce.Do(func() { err = s.body.Close() })
	return err
}

func decodeData(data string) any {
	var decoded any
	if err := json.Unmarshal([]byte(data), &decoded); err != nil {
		return data
	}
	return decoded
}
