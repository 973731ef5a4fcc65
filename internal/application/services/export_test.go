package services

import "time"

func (s *ReportService) SetClock(now func() time.Time) {
	s.now = now
}

func (s *VerificationService) SetClock(now func() time.Time) {
	s.now = now
}
