package bus

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/nats-io/nats.go"
)

const flushTimeout = 2 * time.Second

// 認証イベントをNATSに流す
type Bus struct {
	conn *nats.Conn
}

func New(url string, opts ...nats.Option) (*Bus, error) {
	opts = append([]nats.Option{
		nats.Name("authcore"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2 * time.Second),
	}, opts...)

	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, err
	}
	return &Bus{conn: nc}, nil
}

// 送信中のものを流してから閉じる
func (b *Bus) Close() {
	if b == nil {
		return
	}
	if err := b.conn.Drain(); err != nil {
		b.conn.Close()
	}
}

// vをJSONにしてsubjectへ送る
func (b *Bus) Publish(ctx context.Context, subj string, v any) error {
	if b == nil {
		return errors.New("nil bus")
	}

	data, err := json.Marshal(v)
	if err != nil {
		return err
	}

	if err := b.conn.Publish(subj, data); err != nil {
		return err
	}

	// FlushWithContextは期限が必須
	ctx, cancel := context.WithTimeout(ctx, flushTimeout)
	defer cancel()
	return b.conn.FlushWithContext(ctx)
}
