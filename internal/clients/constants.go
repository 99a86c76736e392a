package clients

import "time"

const (
	DEFAULT_MODEL_TIMEOUT = 20 * time.Second
	USER_AGENT            = "judgeflow-client/1.0 (+https://github.com/spacesedan/judgeflow)"
)
