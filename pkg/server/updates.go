package server

import (
	"context"
	"time"

	"github.com/matst80/council-finder/pkg/messaging"
	"github.com/matst80/council-finder/pkg/types"
	amqp "github.com/rabbitmq/amqp091-go"
)

// ListenForUpdates subscribes to data update announcements on conn.
func (ws *WebServer) ListenForUpdates(conn *amqp.Connection, prefix string) error {
	ch, err := conn.Channel()
	if err != nil {
		return err
	}
	if err := messaging.DefineTopic(ch, prefix, messaging.DataUpdated); err != nil {
		ch.Close()
		return err
	}
	return messaging.ListenToTopic(ch, prefix, messaging.DataUpdated, ws.logger, func(update types.DataUpdate) error {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return ws.HandleDataUpdate(ctx, update)
	})
}

// AnnounceUpdate publishes a data update, used by the data pipeline after
// regenerating municipality files.
func AnnounceUpdate(conn *amqp.Connection, prefix string, codes ...string) error {
	return messaging.SendChange(conn, prefix, messaging.DataUpdated, types.DataUpdate{Codes: codes})
}
