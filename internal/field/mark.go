package field

import "fieldmark/internal/model"

// markPhase is the state of one in-flight mark request. Each Mark call owns
// its own request, so concurrent invocations never share a flag; the phases
// exist for logging and to make the request lifecycle explicit.
type markPhase int

const (
	markIdle markPhase = iota
	markAwaitingPosition
	markAwaitingIdentity
	markPersisting
	markDone
	markFailed
)

func (p markPhase) String() string {
	switch p {
	case markIdle:
		return "idle"
	case markAwaitingPosition:
		return "awaiting-position"
	case markAwaitingIdentity:
		return "awaiting-identity"
	case markPersisting:
		return "persisting"
	case markDone:
		return "done"
	case markFailed:
		return "failed"
	}
	return "unknown"
}

type markRequest struct {
	category model.Category
	phase    markPhase
	logger   Logger
}

func newMarkRequest(category model.Category, logger Logger) *markRequest {
	return &markRequest{category: category, phase: markIdle, logger: logger}
}

func (r *markRequest) transition(next markPhase) {
	r.logger.Debug("mark request", "category", r.category, "from", r.phase, "to", next)
	r.phase = next
}

func (r *markRequest) fail(err error) {
	r.logger.Debug("mark request failed", "category", r.category, "phase", r.phase, "err", err)
	r.phase = markFailed
}

func (r *markRequest) done(p model.Point) {
	r.phase = markDone
	r.logger.Debug("mark request complete", "category", r.category, "sequence", p.SequenceNumber)
}
