package bot

// Update sources reported to an Observer.
const (
	SourcePolling = "polling"
	SourceWebhook = "webhook"
)

// Observer is notified of delivery events. Implementations must be safe
// for concurrent use; the gateway metrics implement it.
type Observer interface {
	UpdateReceived(source string)
	DispatchFailed(source string)
	PollTimeout()
}

type nopObserver struct{}

func (nopObserver) UpdateReceived(string) {}
func (nopObserver) DispatchFailed(string) {}
func (nopObserver) PollTimeout()          {}
