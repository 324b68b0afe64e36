package service

import "sync/atomic"

// HealthService backs the liveness and readiness probes. Readiness follows
// the last store ping.
type HealthService struct {
	live   atomic.Bool
	ready  atomic.Bool
	reason atomic.Value // string
}

func NewHealthService() *HealthService {
	s := &HealthService{}
	s.live.Store(true)
	s.ready.Store(false) // 啟動完成後再打開
	s.reason.Store("starting")
	return s
}

func (s *HealthService) SetReady(v bool) {
	s.ready.Store(v)
	if v {
		s.reason.Store("")
	}
}

// ReportStore records the result of a store ping.
func (s *HealthService) ReportStore(err error) {
	if err != nil {
		s.ready.Store(false)
		s.reason.Store("store: " + err.Error())
		return
	}
	s.SetReady(true)
}

func (s *HealthService) IsLive() bool {
	return s.live.Load()
}

func (s *HealthService) IsReady() bool {
	return s.ready.Load()
}

// Reason explains why the service is not ready; empty when ready.
func (s *HealthService) Reason() string {
	r, _ := s.reason.Load().(string)
	return r
}
