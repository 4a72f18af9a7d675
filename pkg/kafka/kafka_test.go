package kafka

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeReader struct {
	mu        sync.Mutex
	msgs      []kafka.Message
	committed []int64
	cancel    context.CancelFunc
}

func (f *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.msgs) == 0 {
		f.cancel()
		return kafka.Message{}, ctx.Err()
	}
	m := f.msgs[0]
	f.msgs = f.msgs[1:]
	return m, nil
}

func (f *fakeReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range msgs {
		f.committed = append(f.committed, m.Offset)
	}
	return nil
}

func (f *fakeReader) Close() error { return nil }

func TestConsumerCommitsHandledAndPoisonMessages(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	r := &fakeReader{
		cancel: cancel,
		msgs: []kafka.Message{
			{Offset: 1, Value: []byte(`{"language":"en"}`)},
			{Offset: 2, Value: []byte(`not json`)},
			{Offset: 3, Value: []byte(`{"language":"fail"}`)},
		},
	}
	var seen []string
	c := newConsumer(r, "t", func(ctx context.Context, key, value []byte) error {
		ev, err := DecodeJSON[struct {
			Language string `json:"language"`
		}](value)
		if err != nil {
			return err
		}
		if ev.Language == "fail" {
			return errors.New("transient")
		}
		seen = append(seen, ev.Language)
		return nil
	})

	require.NoError(t, c.Start(ctx))
	assert.Equal(t, []string{"en"}, seen)
	assert.Equal(t, []int64{1, 2}, r.committed)
}

type fakeWriter struct {
	fails int
	got   []kafka.Message
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if f.fails > 0 {
		f.fails--
		return errors.New("broker unavailable")
	}
	f.got = append(f.got, msgs...)
	return nil
}

func (f *fakeWriter) Close() error { return nil }

func TestProducerRetriesAndSetsTypeHeader(t *testing.T) {
	w := &fakeWriter{fails: 1}
	p := newProducer(w, "t")
	p.retry.InitialDelay = 1

	err := p.Publish(context.Background(), Event{Key: "en", Type: "document.stored", Value: map[string]string{"url": "u1"}})
	require.NoError(t, err)
	require.Len(t, w.got, 1)
	assert.Equal(t, "en", string(w.got[0].Key))
	assert.JSONEq(t, `{"url":"u1"}`, string(w.got[0].Value))
	require.Len(t, w.got[0].Headers, 1)
	assert.Equal(t, "document.stored", string(w.got[0].Headers[0].Value))
}

func TestProducerRejectsUnmarshalableValue(t *testing.T) {
	p := newProducer(&fakeWriter{}, "t")
	err := p.Publish(context.Background(), Event{Key: "k", Value: make(chan int)})
	assert.Error(t, err)
}
