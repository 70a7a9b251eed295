// ABOUTME: Coalescing change notification for front-ends that re-read controller state on demand.
// ABOUTME: The returned listener never blocks the controller.
package editor

// Notifier returns a listener for WithOnChange and the channel it signals.
// The channel holds at most one pending signal; further signals are dropped
// until it is drained, so a receiver must read the latest State itself.
func Notifier() (func(State), <-chan struct{}) {
	ch := make(chan struct{}, 1)
	return func(State) {
		select {
		case ch <- struct{}{}:
		default:
		}
	}, ch
}
