package server

// Sync returns once the hub has applied every event submitted before it.
func (h *Hub) Sync() {
	done := make(chan struct{})
	if h.submit(event{kind: eventBarrier, done: done}) {
		<-done
	}
}
