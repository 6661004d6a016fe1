package tracking

import (
	"net/http"

	"github.com/matst80/council-finder/pkg/messaging"
	"github.com/matst80/council-finder/pkg/types"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

const trackingPrefix = "global"

type RabbitTracking struct {
	context    string
	connection *amqp.Connection
	logger     *zap.Logger
}

func NewRabbitTracking(url, context string, logger *zap.Logger) (*RabbitTracking, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	ret := RabbitTracking{
		context: context,
		logger:  logger,
	}
	if err := ret.connect(url); err != nil {
		return nil, err
	}
	return &ret, nil
}

func (t *RabbitTracking) connect(url string) error {
	conn, err := amqp.Dial(url)
	if err != nil {
		return err
	}
	t.connection = conn
	ch, err := conn.Channel()
	if err != nil {
		return err
	}
	defer ch.Close()
	return messaging.DefineTopic(ch, trackingPrefix, messaging.Tracking)
}

func (t *RabbitTracking) Close() error {
	return t.connection.Close()
}

func (t *RabbitTracking) send(data any) error {
	return messaging.SendChange(t.connection, trackingPrefix, messaging.Tracking, data)
}

type BaseEvent struct {
	SessionId string `json:"session_id"`
	Context   string `json:"context,omitempty"`
	Event     uint16 `json:"event"`
}

type Session struct {
	*BaseEvent
	UserAgent    string `json:"user_agent,omitempty"`
	Ip           string `json:"ip,omitempty"`
	Language     string `json:"language,omitempty"`
	PragmaHeader string `json:"pragma,omitempty"`
}

type SearchEventData struct {
	*BaseEvent
	Scope           string            `json:"scope"`
	Query           string            `json:"query"`
	Selections      map[string]string `json:"selections,omitempty"`
	NumberOfResults int               `json:"noi"`
	Referer         string            `json:"referer,omitempty"`
}

func clientIp(r *http.Request) string {
	ip := r.Header.Get("X-Real-Ip")
	if ip == "" {
		ip = r.Header.Get("X-Forwarded-For")
	}
	if ip == "" {
		ip = r.RemoteAddr
	}
	return ip
}

func NewSessionEvent(context, sessionId string, r *http.Request) Session {
	return Session{
		BaseEvent:    &BaseEvent{Event: 0, SessionId: sessionId, Context: context},
		Language:     r.Header.Get("Accept-Language"),
		UserAgent:    r.UserAgent(),
		Ip:           clientIp(r),
		PragmaHeader: r.Header.Get("Pragma"),
	}
}

func NewSearchEvent(context, sessionId string, scope types.Scope, query string, selections types.FacetSelections, resultLen int, r *http.Request) *SearchEventData {
	var sel map[string]string
	if len(selections) > 0 {
		sel = make(map[string]string, len(selections))
		for field, value := range selections {
			sel[string(field)] = value
		}
	}
	return &SearchEventData{
		BaseEvent:       &BaseEvent{Event: 1, SessionId: sessionId, Context: context},
		Scope:           scope.Id,
		Query:           query,
		Selections:      sel,
		NumberOfResults: resultLen,
		Referer:         r.Header.Get("Referer"),
	}
}

func (rt *RabbitTracking) TrackSession(sessionId string, r *http.Request) {
	if err := rt.send(NewSessionEvent(rt.context, sessionId, r)); err != nil {
		rt.logger.Warn("error sending session event", zap.Error(err))
	}
}

func (rt *RabbitTracking) TrackSearch(sessionId string, scope types.Scope, query string, selections types.FacetSelections, resultLen int, r *http.Request) {
	if err := rt.send(NewSearchEvent(rt.context, sessionId, scope, query, selections, resultLen, r)); err != nil {
		rt.logger.Warn("error sending search event", zap.Error(err))
	}
}
