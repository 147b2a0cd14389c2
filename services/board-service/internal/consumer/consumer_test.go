package consumer

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/md-rashed-zaman/dayboard/services/board-service/internal/calendar"
)

var selected = calendar.New(2026, time.October, 14)

func TestAffects(t *testing.T) {
	cases := []struct {
		name  string
		topic string
		ev    ChangeEvent
		want  bool
	}{
		{"booking same date", TopicBookingChanged, ChangeEvent{Date: "2026-10-14"}, true},
		{"booking other date", TopicBookingChanged, ChangeEvent{Date: "2026-10-15"}, false},
		{"booking without date", TopicBookingChanged, ChangeEvent{}, false},
		{"booking bad date", TopicBookingChanged, ChangeEvent{Date: "14/10/2026"}, false},
		{"shift same month", TopicShiftChanged, ChangeEvent{Date: "2026-10-02"}, true},
		{"shift other month", TopicShiftChanged, ChangeEvent{Date: "2026-11-14"}, false},
		{"shift month only", TopicShiftChanged, ChangeEvent{Month: "2026-10"}, true},
		{"shift month mismatch", TopicShiftChanged, ChangeEvent{Month: "2026-09"}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Affects(selected, tc.topic, tc.ev); got != tc.want {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
		})
	}
}

type fakeDesk struct {
	mu      sync.Mutex
	reloads int
	err     error
}

func (f *fakeDesk) Selected() calendar.Date { return selected }

func (f *fakeDesk) Reload(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reloads++
	return f.err
}

func (f *fakeDesk) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.reloads
}

type fakeReader struct {
	msgs   chan kafka.Message
	closed bool
}

func (f *fakeReader) ReadMessage(ctx context.Context) (kafka.Message, error) {
	select {
	case m := <-f.msgs:
		return m, nil
	case <-ctx.Done():
		return kafka.Message{}, ctx.Err()
	}
}

func (f *fakeReader) Close() error {
	f.closed = true
	return nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestHandle(t *testing.T) {
	desk := &fakeDesk{}
	c := NewWithReader(quietLogger(), desk, &fakeReader{})

	if !c.handle(context.Background(), kafka.Message{Topic: TopicBookingChanged, Value: []byte(`{"date":"2026-10-14"}`)}) {
		t.Fatal("expected reload for selected date")
	}
	if c.handle(context.Background(), kafka.Message{Topic: TopicBookingChanged, Value: []byte(`{"date":"2026-10-13"}`)}) {
		t.Fatal("expected other dates to be ignored")
	}
	if c.handle(context.Background(), kafka.Message{Topic: TopicBookingChanged, Value: []byte(`not json`)}) {
		t.Fatal("expected invalid payload to be ignored")
	}
	if desk.count() != 1 {
		t.Fatalf("expected 1 reload, got %d", desk.count())
	}

	desk.err = errors.New("db down")
	if c.handle(context.Background(), kafka.Message{Topic: TopicShiftChanged, Value: []byte(`{"month":"2026-10"}`)}) {
		t.Fatal("expected failed reload to report false")
	}
}

func TestRun_StopsOnCancel(t *testing.T) {
	desk := &fakeDesk{}
	reader := &fakeReader{msgs: make(chan kafka.Message, 1)}
	c := NewWithReader(quietLogger(), desk, reader)
	reader.msgs <- kafka.Message{Topic: TopicBookingChanged, Value: []byte(`{"date":"2026-10-14"}`)}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		c.Run(ctx)
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for desk.count() == 0 {
		select {
		case <-deadline:
			t.Fatal("expected message to be handled")
		case <-time.After(5 * time.Millisecond):
		}
	}
	cancel()
	<-done
	if !reader.closed {
		t.Fatal("expected reader to be closed")
	}
}
