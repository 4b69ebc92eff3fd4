package mqtt

import (
	"fmt"
	"strings"

	"github.com/nerrad567/rwanda"
)

// Topic prefixes.
//
// Lookups use a request/response pair keyed by a caller-chosen request ID:
//
//	rwanda/request/{level}/{request_id}   -> filter JSON
//	rwanda/response/{level}/{request_id}  <- names JSON
const (
	// TopicPrefix is the base for all topics.
	TopicPrefix = "rwanda"

	// TopicPrefixSystem is the base for system topics.
	TopicPrefixSystem = "rwanda/system"
)

// Topics provides builders for the lookup topics.
//
//	topics := mqtt.Topics{}
//	reqTopic := topics.Request(rwanda.LevelCell, "req-abc123")
//	// Returns: "rwanda/request/cells/req-abc123"
type Topics struct{}

// Request returns the topic a client publishes a lookup filter to.
//
// Example: rwanda/request/cells/req-abc123
func (Topics) Request(level rwanda.Level, requestID string) string {
	return fmt.Sprintf("%s/request/%s/%s", TopicPrefix, level.Plural(), requestID)
}

// Response returns the topic the answer to a lookup is published on.
//
// Example: rwanda/response/cells/req-abc123
func (Topics) Response(level rwanda.Level, requestID string) string {
	return fmt.Sprintf("%s/response/%s/%s", TopicPrefix, level.Plural(), requestID)
}

// ResponseFor returns the response topic for a request topic by swapping
// the request segment. The level segment is kept as received.
func (Topics) ResponseFor(requestTopic string) (string, bool) {
	rest, ok := strings.CutPrefix(requestTopic, TopicPrefix+"/request/")
	if !ok {
		return "", false
	}
	return TopicPrefix + "/response/" + rest, true
}

// SystemStatus returns the retained online/offline status topic.
//
// Example: rwanda/system/status
func (Topics) SystemStatus() string {
	return fmt.Sprintf("%s/status", TopicPrefixSystem)
}

// AllRequests returns a pattern matching every lookup request.
//
// Pattern: rwanda/request/+/+
func (Topics) AllRequests() string {
	return fmt.Sprintf("%s/request/+/+", TopicPrefix)
}

// ParseRequest splits a request topic into its level segment and request ID.
func (Topics) ParseRequest(topic string) (level, requestID string, ok bool) {
	rest, found := strings.CutPrefix(topic, TopicPrefix+"/request/")
	if !found {
		return "", "", false
	}
	level, requestID, found = strings.Cut(rest, "/")
	if !found || level == "" || requestID == "" || strings.Contains(requestID, "/") {
		return "", "", false
	}
	return level, requestID, true
}
