package kafka

// apiKey identifies the Kafka RPC a request/response pair implements. Only
// the api keys this client speaks are listed; Kafka reserves many more for
// features out of scope here (transactions, SASL, ACLs, ...).
type apiKey int16

const (
	apiKeyProduce           apiKey = 0
	apiKeyFetch             apiKey = 1
	apiKeyOffset            apiKey = 2
	apiKeyMetadata          apiKey = 3
	apiKeyOffsetCommit      apiKey = 8
	apiKeyOffsetFetch       apiKey = 9
	apiKeyConsumerMetadata  apiKey = 10
	apiKeyJoinGroup         apiKey = 11
	apiKeyHeartbeat         apiKey = 12
	apiKeyLeaveGroup        apiKey = 13
	apiKeySyncGroup         apiKey = 14
	apiKeyCreateTopics      apiKey = 19
	apiKeyDeleteTopics      apiKey = 20
)

// protocolBody is implemented by every request and response type. version()
// is always 0 in this client: Kafka 0.8.x predates per-request API
// versioning, so there is exactly one wire shape for each api key.
type protocolBody interface {
	key() int16
	version() int16
	encode(pe packetEncoder) error
	decode(pd packetDecoder, version int16) error
}

// hasResponser is implemented by request bodies whose response-ness depends
// on their own field values, today only ProduceRequest (RequiredAcks == 0
// means fire-and-forget).
type hasResponser interface {
	hasResponse() bool
}

// requestHasResponse reports whether sending req will produce a response
// frame from the broker, per spec.md's Request.has_response flag.
func requestHasResponse(body protocolBody) bool {
	if hr, ok := body.(hasResponser); ok {
		return hr.hasResponse()
	}
	return true
}
