// Package stepfunctions implements L3's Step Functions thin store
// (spec.md §4.4): state machines and their executions. Executions are
// created RUNNING and never actually advance through states; StopExecution
// moves one to ABORTED, and GetExecutionHistory always reports the single
// synthetic ExecutionStarted event.
package stepfunctions

import (
	"sort"
	"sync"

	"github.com/nimbusemu/nimbus/internal/apperr"
	"github.com/nimbusemu/nimbus/internal/identity"
)

// StateMachine is one registered state machine definition.
type StateMachine struct {
	Name       string
	ARN        string
	Definition string
	RoleArn    string
	CreatedAt  string
}

// ExecutionStatus enumerates the statuses this emulator actually
// produces (spec.md §4.4 names no transitions beyond RUNNING/ABORTED).
type ExecutionStatus string

const (
	ExecutionRunning ExecutionStatus = "RUNNING"
	ExecutionAborted ExecutionStatus = "ABORTED"
)

// Execution is one run of a state machine.
type Execution struct {
	Name            string
	ARN             string
	StateMachineArn string
	Input           string
	Status          ExecutionStatus
	StartDate       string
	StopDate        string
}

// Registry is the single in-memory Step Functions store.
type Registry struct {
	mu            sync.RWMutex
	stateMachines map[string]*StateMachine
	executions    map[string]*Execution
	identity      identity.Identity
}

// NewRegistry constructs an empty Step Functions registry.
func NewRegistry(id identity.Identity) *Registry {
	return &Registry{
		stateMachines: map[string]*StateMachine{},
		executions:    map[string]*Execution{},
		identity:      id,
	}
}

// CreateStateMachine registers a new state machine, idempotent by name.
func (r *Registry) CreateStateMachine(name, definition, roleArn, now string) (*StateMachine, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if sm, ok := r.stateMachines[name]; ok {
		return sm, nil
	}
	sm := &StateMachine{
		Name:       name,
		ARN:        r.identity.ARN("states", "stateMachine:"+name),
		Definition: definition,
		RoleArn:    roleArn,
		CreatedAt:  now,
	}
	r.stateMachines[name] = sm
	return sm, nil
}

// GetStateMachine resolves a state machine by ARN.
func (r *Registry) GetStateMachine(arn string) (*StateMachine, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, sm := range r.stateMachines {
		if sm.ARN == arn {
			return sm, nil
		}
	}
	return nil, apperr.New(apperr.NotFound, "State Machine Does Not Exist: '"+arn+"'")
}

// DeleteStateMachine removes a state machine; absent ones succeed
// silently.
func (r *Registry) DeleteStateMachine(arn string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for name, sm := range r.stateMachines {
		if sm.ARN == arn {
			delete(r.stateMachines, name)
			return
		}
	}
}

// ListStateMachines returns every state machine, sorted by name.
func (r *Registry) ListStateMachines() []*StateMachine {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*StateMachine, 0, len(r.stateMachines))
	for _, sm := range r.stateMachines {
		out = append(out, sm)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// StartExecution creates a new RUNNING execution of the named state
// machine.
func (r *Registry) StartExecution(stateMachineArn, name, input, now string) (*Execution, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.executions[name]; ok {
		return nil, apperr.New(apperr.AlreadyExists, "Execution Already Exists: '"+name+"'")
	}
	exec := &Execution{
		Name:            name,
		ARN:             r.identity.ARN("states", "execution:"+name),
		StateMachineArn: stateMachineArn,
		Input:           input,
		Status:          ExecutionRunning,
		StartDate:       now,
	}
	r.executions[name] = exec
	return exec, nil
}

// DescribeExecution resolves an execution by ARN.
func (r *Registry) DescribeExecution(arn string) (*Execution, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, e := range r.executions {
		if e.ARN == arn {
			return e, nil
		}
	}
	return nil, apperr.New(apperr.NotFound, "Execution Does Not Exist: '"+arn+"'")
}

// StopExecution moves a RUNNING execution to ABORTED.
func (r *Registry) StopExecution(arn, now string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.executions {
		if e.ARN == arn {
			e.Status = ExecutionAborted
			e.StopDate = now
			return nil
		}
	}
	return apperr.New(apperr.NotFound, "Execution Does Not Exist: '"+arn+"'")
}

// HistoryEvent is one entry of GetExecutionHistory's synthetic log.
type HistoryEvent struct {
	ID        int64
	Type      string
	Timestamp string
}

// GetExecutionHistory always returns the single ExecutionStarted event
// every execution is created with (spec.md §4.4: no state transitions
// are actually simulated).
func (r *Registry) GetExecutionHistory(arn string) ([]HistoryEvent, error) {
	e, err := r.DescribeExecution(arn)
	if err != nil {
		return nil, err
	}
	return []HistoryEvent{{ID: 1, Type: "ExecutionStarted", Timestamp: e.StartDate}}, nil
}
