package session

// Subscribe returns a channel that receives the current state immediately and then
// the latest state after every change. Slow readers only ever see the newest value;
// writers never block. The channel is closed by cancel or by Unmount.
func (s *Store) Subscribe() (<-chan State, func()) {
	ch := make(chan State, 1)

	s.mu.Lock()
	s.subsMu.Lock()
	if s.unmounted {
		s.subsMu.Unlock()
		s.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch
	ch <- s.state
	s.subsMu.Unlock()
	s.mu.Unlock()

	cancel := func() {
		s.subsMu.Lock()
		defer s.subsMu.Unlock()
		if c, ok := s.subs[id]; ok {
			close(c)
			delete(s.subs, id)
		}
	}
	return ch, cancel
}

// publishLocked must be called with s.mu held so states are delivered in order
func (s *Store) publishLocked() {
	st := s.state

	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	for _, ch := range s.subs {
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- st:
		default:
		}
	}
}
