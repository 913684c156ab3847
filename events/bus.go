// Package events — шина изменений данных поверх Redis pub/sub.
// Каждая запись в БД сопровождается событием; подписчик (менеджер табло)
// перечитывает изменившийся вход и переоценивает состояние экранов.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-redis/redis/v8"
)

type Kind string

const (
	KindMatches   Kind = "matches"
	KindSelection Kind = "selection"
	KindMedia     Kind = "media"
	KindSponsors  Kind = "sponsors"
)

// Event описывает одно изменение данных игрового дня.
type Event struct {
	TournamentID int    `json:"tournament_id"`
	DisplayDate  string `json:"display_date"`
	Kind         Kind   `json:"kind"`
}

const updatesChannel = "league:updates"

type Bus struct {
	client *redis.Client
	logger *slog.Logger
}

func NewBus(addr, password string, logger *slog.Logger) (*Bus, error) {
	if logger == nil {
		logger = slog.Default()
	}
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Info("connected to Redis", slog.String("address", addr))
	return &Bus{client: client, logger: logger}, nil
}

// Publish отправляет событие изменения. Ошибка публикации не фатальна для
// вызывающего: сервисы логируют её и продолжают, экран догонит состояние
// по следующему событию или снапшоту.
func (b *Bus) Publish(ctx context.Context, ev Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	if err := b.client.Publish(ctx, updatesChannel, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	return nil
}

// Subscribe запускает горутину-подписчика, зовущую handle на каждое событие.
// Завершается с отменой контекста.
func (b *Bus) Subscribe(ctx context.Context, handle func(Event)) {
	pubsub := b.client.Subscribe(ctx, updatesChannel)

	go func() {
		defer pubsub.Close()
		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var ev Event
				if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
					b.logger.Warn("skipping malformed event",
						slog.String("payload", msg.Payload), slog.Any("error", err))
					continue
				}
				handle(ev)
			}
		}
	}()
}

func (b *Bus) Close() error {
	return b.client.Close()
}
