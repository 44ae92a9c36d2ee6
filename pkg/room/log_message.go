package room

import (
	"luckyman-server/pkg/playable"
)

const logMessageLimit = 25

// addLogMessages keeps the most recent log messages so late joiners can catch up
// Note: this must only be called from within the run loop
func (d *Dealer) addLogMessages(messages []*playable.LogMessage) {
	m := append(d.logMessages, messages...)
	count := len(m)
	if count > logMessageLimit {
		m = m[count-logMessageLimit:]
	}

	d.logMessages = m
}

func (d *Dealer) sendLogMessages(messages []*playable.LogMessage) {
	d.addLogMessages(messages)
	d.broadcast(&playable.Response{
		Key:  keyLog,
		Data: messages,
	})
}
