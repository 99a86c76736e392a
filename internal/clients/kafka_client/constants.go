package kafka_client

import "time"

const (
	KAFKA_TOPIC_EVALUATION_REQUESTS = "evaluation-requests" // evaluation requests keyed by caller id
	KAFKA_TOPIC_EVALUATION_RESULTS  = "evaluation-results"  // one envelope per consumed request
)

const (
	MAX_RETRIES   = 5
	RETRY_DELAY   = 2 * time.Second
	FLUSH_TIMEOUT = 5 * time.Second
	POLL_TIMEOUT  = time.Second
)
