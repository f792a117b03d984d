package publishers

// Logger is the object-logging surface sinks write delivery records to.
type Logger interface {
	InfoObj(msg, key string, obj interface{})
	DebugObj(msg, key string, obj interface{})
	WarnObj(msg, key string, obj interface{})
	ErrorObj(msg, key string, obj interface{})
}

type discardLogger struct{}

func (discardLogger) InfoObj(string, string, interface{})  {}
func (discardLogger) DebugObj(string, string, interface{}) {}
func (discardLogger) WarnObj(string, string, interface{})  {}
func (discardLogger) ErrorObj(string, string, interface{}) {}

func ensureLogger(log Logger) Logger {
	if log == nil {
		return discardLogger{}
	}
	return log
}

// logDelivery writes the debug record every sink emits after a successful
// publish. extra carries sink-specific fields such as message ids.
func logDelivery(log Logger, typ, publisherID string, evt Event, extra map[string]any) {
	fields := map[string]any{
		"publisher_id": publisherID,
		"event_id":     evt.ID,
		"query_id":     evt.QueryID,
		"endpoint":     evt.Endpoint,
		"digest":       evt.Digest,
	}
	for k, v := range extra {
		fields[k] = v
	}
	log.DebugObj(typ+" publisher delivered event", "publisher_"+typ+"_delivery", fields)
}
