package messaging

import (
	"github.com/matst80/council-finder/pkg/common/jsoncompat"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

func DeclareBindAndConsume(ch *amqp.Channel, prefix string, topic ChangeTopic) (<-chan amqp.Delivery, error) {
	name := getName(prefix, topic)
	q, err := ch.QueueDeclare(
		"",    // name
		false, // durable
		false, // delete when unused
		true,  // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		return nil, err
	}
	if err = ch.QueueBind(q.Name, name, name, false, nil); err != nil {
		return nil, err
	}
	return ch.Consume(q.Name, "", false, false, false, false, nil)
}

// ListenToTopic consumes topic until the channel closes. A delivery whose
// handler fails is rejected without requeue and consumption continues.
func ListenToTopic[V any](ch *amqp.Channel, prefix string, topic ChangeTopic, logger *zap.Logger, handler func(V) error) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	fc, err := DeclareBindAndConsume(ch, prefix, topic)
	if err != nil {
		return err
	}

	go func(msgs <-chan amqp.Delivery) {
		defer ch.Close()
		for d := range msgs {
			if err := Handle(d.Body, handler); err != nil {
				logger.Error("error processing message", zap.String("topic", string(topic)), zap.Error(err))
				_ = d.Nack(false, false)
				continue
			}
			_ = d.Ack(false)
		}
	}(fc)
	return nil
}

// Handle decodes one message body and passes it to handler.
func Handle[V any](body []byte, handler func(V) error) error {
	var msg V
	if err := jsoncompat.Unmarshal(body, &msg); err != nil {
		return err
	}
	return handler(msg)
}
