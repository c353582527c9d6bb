package service

import "github.com/phrazzld/receipt-api/internal/domain"

// Recorder receives business events for metrics. Implementations must be
// safe for concurrent use.
type Recorder interface {
	DocumentCreated(kind domain.DocumentKind)
	ChallengeCreated(kind domain.DocumentKind)
	ChallengeResolved(status domain.ChallengeStatus)
}

type nopRecorder struct{}

func (nopRecorder) DocumentCreated(domain.DocumentKind)      {}
func (nopRecorder) ChallengeCreated(domain.DocumentKind)     {}
func (nopRecorder) ChallengeResolved(domain.ChallengeStatus) {}

func recorderOrNop(r Recorder) Recorder {
	if r == nil {
		return nopRecorder{}
	}
	return r
}
