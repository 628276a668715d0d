package shell

import "time"

// ShowPopups opens every popup window of the layout and schedules each to
// close once the popup delay elapses. A zero delay keeps popups open until
// they are closed by hand. Returns the number of popups shown.
//
// Timers fire once. Reopening a popup does not reschedule it, and only
// Close stops a pending timer.
func (s *Shell) ShowPopups() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0
	}

	delay := s.opts.PopupDelay
	shown := 0
	for _, spec := range s.layout.Windows {
		if spec.Kind != WindowPopup {
			continue
		}
		w := s.windows[spec.ID]
		w.state = WindowOpen
		s.stack.raise(spec.ID)
		shown++

		if delay > 0 {
			if t, ok := s.popupTimers[spec.ID]; ok {
				t.Stop()
			}
			id := spec.ID
			w.expiresAt = time.Now().Add(delay)
			s.popupTimers[id] = time.AfterFunc(delay, func() {
				s.expirePopup(id)
			})
		}

		s.notifyChange(ChangeEvent{Type: ChangeWindow, ID: spec.ID})
	}

	if shown > 0 {
		s.logger.Debug("popups shown", "count", shown, "delay", delay)
	}
	return shown
}

// expirePopup hides a popup whose delay elapsed.
func (s *Shell) expirePopup(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.popupTimers, id)
	w, ok := s.lookupLocked(id)
	if !ok {
		return
	}
	s.logger.Debug("popup expired", "id", id)
	s.closeLocked(w)
}

// PendingPopups returns the number of popups still open and waiting to be
// dismissed. A popup closed by hand no longer counts, even though its
// timer still fires.
func (s *Shell) PendingPopups() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for id := range s.popupTimers {
		if w, ok := s.windows[id]; ok && w.state != WindowClosed && !w.expiresAt.IsZero() {
			n++
		}
	}
	return n
}
