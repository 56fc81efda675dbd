package watermilldb

import (
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

const outputChannelBuffer = 256

// NewPubSub returns the in-process bus shared by the event repository and
// its readers.
func NewPubSub() *gochannel.GoChannel {
	return gochannel.NewGoChannel(
		gochannel.Config{OutputChannelBuffer: outputChannelBuffer},
		watermill.NewStdLogger(false, false),
	)
}
