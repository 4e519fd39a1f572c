package state

// ShowSignIn opens the sign-in panel. The two auth panels are mutually
// exclusive, so the sign-up panel closes in the same commit.
func (s *Service) ShowSignIn() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.UI.ShowSignIn = true
	s.state.UI.ShowSignUp = false
}

// ShowSignUp opens the sign-up panel and closes the sign-in panel.
func (s *Service) ShowSignUp() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.UI.ShowSignUp = true
	s.state.UI.ShowSignIn = false
}

// HideAuthPanels closes both auth panels.
func (s *Service) HideAuthPanels() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.UI.ShowSignIn = false
	s.state.UI.ShowSignUp = false
}

// SetModalOpen flips the single modal flag used to pause background
// playback. It does not nest or count.
func (s *Service) SetModalOpen(open bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.UI.IsAnyModalOpen = open
}
