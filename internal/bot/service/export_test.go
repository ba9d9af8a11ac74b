package service

import "time"

func (s *BotService) SetClock(now func() time.Time) {
	s.now = now
}

func (s *BotService) SetPicker(pick func(n int) int) {
	s.pick = pick
}
