package service

// Push event names delivered over the WebSocket hub
const (
	EventMessageReceived      = "message-received"
	EventMessageSentAck       = "message-sent-ack"
	EventMessageRead          = "message-read"
	EventConversationRead     = "conversation-read"
	EventGroupMessageReceived = "group-message-received"
	EventGroupMessageDeleted  = "group-message-deleted"
	EventNewNotification      = "new-notification"
)

// EventPublisher pushes an event to every live connection subscribed to
// a channel. Fire-and-forget: implementations never block and never
// return delivery errors; durable storage is the source of truth.
type EventPublisher interface {
	Publish(channel, event string, payload interface{})
}
