// scheduler/status_manager.go

package scheduler

import "golang.org/x/exp/slices"

type Status string

const (
	Blocked   Status = "Blocked"
	Ready     Status = "Ready"
	Running   Status = "Running"
	Completed Status = "Completed"
)

// ExecutionStatus tracks a step in simulated time. Worker is -1 until the
// step is assigned.
type ExecutionStatus struct {
	Status    Status
	Worker    int
	StartTime int
	EndTime   int
}

type StatusManager interface {
	SetStatus(id string, status Status)
	UpdateStatus(id string, status Status, worker, startTime, endTime int)
	Get(id string) (ExecutionStatus, bool)
	Count(status Status) int
	WithStatus(status Status) []string
}

// statusManager is owned by one walker and used from a single goroutine.
type statusManager struct {
	statusMap map[string]*ExecutionStatus
}

func NewStatusManager() StatusManager {
	return &statusManager{
		statusMap: make(map[string]*ExecutionStatus),
	}
}

func (sm *statusManager) SetStatus(id string, status Status) {
	if es, exists := sm.statusMap[id]; exists {
		es.Status = status
		return
	}
	sm.statusMap[id] = &ExecutionStatus{Status: status, Worker: -1}
}

func (sm *statusManager) UpdateStatus(id string, status Status, worker, startTime, endTime int) {
	if _, exists := sm.statusMap[id]; !exists {
		sm.statusMap[id] = &ExecutionStatus{}
	}
	sm.statusMap[id].Status = status
	sm.statusMap[id].Worker = worker
	sm.statusMap[id].StartTime = startTime
	sm.statusMap[id].EndTime = endTime
}

func (sm *statusManager) Get(id string) (ExecutionStatus, bool) {
	es, ok := sm.statusMap[id]
	if !ok {
		return ExecutionStatus{}, false
	}
	return *es, true
}

func (sm *statusManager) Count(status Status) int {
	n := 0
	for _, es := range sm.statusMap {
		if es.Status == status {
			n++
		}
	}
	return n
}

// WithStatus returns the sorted identifiers currently in status.
func (sm *statusManager) WithStatus(status Status) []string {
	var ids []string
	for id, es := range sm.statusMap {
		if es.Status == status {
			ids = append(ids, id)
		}
	}
	slices.SortFunc(ids, compareIDs)
	return ids
}
