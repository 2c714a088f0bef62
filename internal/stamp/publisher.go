package stamp

import (
	"strconv"
	"time"

	"go.uber.org/zap"

	"taskify/app/internal/localstore"
)

// Publisher records that a channel's data changed. It is co-located with
// every create/update/delete path: the accessor calls Publish after the
// remote write commits.
type Publisher struct {
	store *localstore.Store
	log   *zap.Logger
	now   func() time.Time
}

func NewPublisher(store *localstore.Store, log *zap.Logger) *Publisher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Publisher{
		store: store,
		log:   log,
		now:   time.Now,
	}
}

// Publish writes the current epoch-millisecond time to the channel. Failures
// are logged and swallowed: the mutation that triggered the publish has
// already committed, so aborting it here would only trade staleness for a
// spurious write error.
func (p *Publisher) Publish(channel string) {
	value := strconv.FormatInt(p.now().UnixMilli(), 10)
	if err := p.store.SetString(channel, value); err != nil {
		p.log.Warn("failed to publish change stamp",
			zap.String("channel", channel),
			zap.Error(err),
		)
	}
}
