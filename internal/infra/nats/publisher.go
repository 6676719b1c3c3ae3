package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"

	"trainvoc-room-service/internal/domain"
)

type Config struct {
	URL           string
	SubjectPrefix string
	MaxReconnects int
	ReconnectWait time.Duration
}

func DefaultConfig() Config {
	return Config{
		URL:           nats.DefaultURL,
		SubjectPrefix: "trainvoc.rooms",
		MaxReconnects: -1, // Infinite
		ReconnectWait: 2 * time.Second,
	}
}

// Publisher fans phase events out on <prefix>.<roomCode>.
type Publisher struct {
	nc     *nats.Conn
	prefix string
}

func NewPublisher(cfg Config) (*Publisher, error) {
	opts := []nats.Option{
		nats.Name("trainvoc-room-service"),
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.Error().Err(err).Msg("NATS disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info().Str("url", nc.ConnectedUrl()).Msg("NATS reconnected")
		}),
		nats.ErrorHandler(func(nc *nats.Conn, sub *nats.Subscription, err error) {
			log.Error().Err(err).Msg("NATS error")
		}),
	}

	nc, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}
	prefix := cfg.SubjectPrefix
	if prefix == "" {
		prefix = DefaultConfig().SubjectPrefix
	}
	return &Publisher{nc: nc, prefix: prefix}, nil
}

func (p *Publisher) Subject(roomCode string) string {
	return p.prefix + "." + roomCode
}

func (p *Publisher) Publish(_ context.Context, ev domain.PhaseEvent) error {
	msg, err := newMessage(p.Subject(ev.RoomCode), ev)
	if err != nil {
		return err
	}
	if err := p.nc.PublishMsg(msg); err != nil {
		return fmt.Errorf("publish phase event: %w", err)
	}
	log.Debug().
		Str("subject", msg.Subject).
		Str("phase", ev.Phase.String()).
		Int("question", ev.QuestionIndex).
		Msg("published phase event")
	return nil
}

func (p *Publisher) Close() error {
	if p.nc == nil {
		return nil
	}
	if err := p.nc.Drain(); err != nil {
		p.nc.Close()
		return err
	}
	return nil
}

func newMessage(subject string, ev domain.PhaseEvent) (*nats.Msg, error) {
	data, err := json.Marshal(ev)
	if err != nil {
		return nil, fmt.Errorf("marshal phase event: %w", err)
	}
	return &nats.Msg{
		Subject: subject,
		Data:    data,
		Header: nats.Header{
			"Room-Code":      []string{ev.RoomCode},
			"Phase":          []string{ev.Phase.String()},
			"Question-Index": []string{strconv.Itoa(ev.QuestionIndex)},
		},
	}, nil
}
