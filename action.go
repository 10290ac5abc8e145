package snapintersect

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gostonefire/snapintersect/internal/regs"
	"github.com/gostonefire/snapintersect/retc"
	"go.uber.org/atomic"
)

// DefaultPollInterval - Default interval between idle checks in WaitForIdle
const DefaultPollInterval = time.Millisecond

// Action - Models the register driven action on the card. The host writes a job into the register block,
// starts the action and polls until it is idle again, then reads return code and result size from the
// register block. Only one step can be in flight at a time.
type Action struct {
	session      *Session
	pollInterval time.Duration
	running      *atomic.Bool
	steps        *atomic.Int64

	mu        sync.Mutex
	registers []byte
	stepErr   error
}

// NewAction - Returns a pointer to a new idle Action running steps on the given session
//   - session is the session owning the memories and the hash table
//   - pollInterval is the interval between idle checks, 0 gives DefaultPollInterval
func NewAction(session *Session, pollInterval time.Duration) *Action {
	if pollInterval <= 0 {
		pollInterval = DefaultPollInterval
	}

	return &Action{
		session:      session,
		pollInterval: pollInterval,
		running:      atomic.NewBool(false),
		steps:        atomic.NewInt64(0),
		registers:    regs.Encode(regs.Registers{Control: regs.ControlIdle}),
	}
}

// Configure - Writes the job into the register block, it fails if a step is in flight or with an error of
// type retc.InvalidArgument if the job does not fit the registers
func (A *Action) Configure(job Job) (err error) {
	if A.running.Load() {
		err = fmt.Errorf("action is running, can not configure")
		return
	}

	err = regs.CheckJob(job)
	if err != nil {
		return
	}

	A.mu.Lock()
	defer A.mu.Unlock()

	A.registers = regs.Encode(regs.Registers{Control: regs.ControlIdle, Job: job})

	return
}

// Start - Starts the step currently configured in the register block. The step runs in the background,
// use WaitForIdle to wait for it to finish.
func (A *Action) Start() (err error) {
	if !A.running.CompareAndSwap(false, true) {
		err = fmt.Errorf("action is already running")
		return
	}

	A.mu.Lock()
	registers, err := regs.Decode(A.registers)
	if err != nil {
		A.mu.Unlock()
		A.running.Store(false)
		return
	}
	registers.Control = regs.ControlStart | regs.ControlRun
	A.registers = regs.Encode(registers)
	A.stepErr = nil
	A.mu.Unlock()

	go A.run(registers)

	return
}

// run - Runs one step and writes its outcome back into the register block
func (A *Action) run(registers regs.Registers) {
	result, err := A.session.Step(registers.Job)

	registers.Control = regs.ControlIdle
	registers.Retc = result.Retc
	registers.Job.Method = result.Method
	if registers.Job.Step == retc.Compute {
		registers.Job.ResTable.Size = result.ResultSize
	}

	A.mu.Lock()
	A.registers = regs.Encode(registers)
	A.stepErr = err
	A.mu.Unlock()

	A.steps.Inc()
	A.running.Store(false)
}

// IsIdle - Returns true when no step is in flight
func (A *Action) IsIdle() bool {
	return !A.running.Load()
}

// WaitForIdle - Polls the action until it is idle, the timeout expires or ctx is done.
// It returns an error of type retc.Timeout if the timeout expires, or the context error.
func (A *Action) WaitForIdle(ctx context.Context, timeout time.Duration) (err error) {
	if A.IsIdle() {
		return
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	ticker := time.NewTicker(A.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			err = ctx.Err()
			return
		case <-timer.C:
			if A.IsIdle() {
				return
			}
			err = retc.NewTimeout(fmt.Sprintf("action not idle after %s", timeout))
			return
		case <-ticker.C:
			if A.IsIdle() {
				return
			}
		}
	}
}

// ReadResult - Reads the outcome of the last step from the register block.
// It returns:
//   - result is a StepResult struct with return code, result size and method
//   - err is the error the last step failed with, if any
func (A *Action) ReadResult() (result StepResult, err error) {
	if !A.IsIdle() {
		err = fmt.Errorf("action is running, no result to read")
		return
	}

	A.mu.Lock()
	defer A.mu.Unlock()

	registers, err := regs.Decode(A.registers)
	if err != nil {
		return
	}

	result = StepResult{
		Retc:       registers.Retc,
		ResultSize: registers.Job.ResTable.Size,
		Method:     registers.Job.Method,
	}
	err = A.stepErr

	return
}

// Registers - Returns a decoded copy of the register block
func (A *Action) Registers() (registers regs.Registers, err error) {
	A.mu.Lock()
	defer A.mu.Unlock()

	return regs.Decode(A.registers)
}

// Steps - Returns the number of steps completed
func (A *Action) Steps() int64 {
	return A.steps.Load()
}

// Run - Configures, starts and waits for one step, then reads its result
func (A *Action) Run(ctx context.Context, job Job, timeout time.Duration) (result StepResult, err error) {
	err = A.Configure(job)
	if err != nil {
		return
	}
	err = A.Start()
	if err != nil {
		return
	}
	err = A.WaitForIdle(ctx, timeout)
	if err != nil {
		return
	}

	return A.ReadResult()
}
