package experiment

import (
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/Friedrichqi/liberorun/pkg/executor"
	"github.com/Friedrichqi/liberorun/pkg/isolation"
	"github.com/Friedrichqi/liberorun/pkg/workloads/libero"
)

// ExecutorFactory builds the executor one invocation is spawned with.
type ExecutorFactory func(invocation Invocation) executor.Executor

// DefaultExecutorFactory returns a local executor decorated with the
// invocation's device selector.
func DefaultExecutorFactory(invocation Invocation) executor.Executor {
	return executor.NewLocalIsolated(isolation.NewDeviceDecorator(invocation.Devices...))
}

// Runner spawns the enabled invocations of a plan as independent OS processes.
type Runner struct {
	plan        Plan
	newExecutor ExecutorFactory
}

// NewRunner is a constructor for Runner with the default executor factory.
func NewRunner(plan Plan) *Runner {
	return NewRunnerWithExecutorFactory(plan, DefaultExecutorFactory)
}

// NewRunnerWithExecutorFactory is a constructor for Runner with a custom
// executor factory.
func NewRunnerWithExecutorFactory(plan Plan, factory ExecutorFactory) *Runner {
	return &Runner{
		plan:        plan,
		newExecutor: factory,
	}
}

// Run starts every enabled invocation in declaration order, fire-and-forget.
// When the last enabled invocation is marked Foreground, Run blocks until that
// process exits and returns its exit code; otherwise it returns 0 right after
// spawning.
//
// A failed spawn of a background invocation is logged and skipped: the
// launcher does not inspect or react to failures of the processes it starts.
func (r *Runner) Run() (exitCode int, err error) {
	enabled := r.plan.Enabled()
	if len(enabled) == 0 {
		log.Info("no enabled invocations, nothing to launch")
		return 0, nil
	}

	var foregroundHandle executor.TaskHandle
	var foregroundName string

	for i, invocation := range enabled {
		isLast := i == len(enabled)-1
		if invocation.Foreground && !isLast {
			log.Warnf("invocation %q requests foreground but is not the last enabled one, ignoring", invocation.Name)
		}

		launcher := libero.New(r.newExecutor(invocation), invocation.Workload)

		handle, err := launcher.Launch()
		if err != nil {
			if isLast && invocation.Foreground {
				return 0, errors.Wrapf(err, "launching foreground invocation %q failed", invocation.Name)
			}
			log.Errorf("launching invocation %q failed: %v", invocation.Name, err)
			continue
		}

		log.Infof("invocation %q started on devices %v", invocation.Name, invocation.Devices)

		if isLast && invocation.Foreground {
			foregroundHandle = handle
			foregroundName = invocation.Name
		}
	}

	if foregroundHandle == nil {
		return 0, nil
	}

	log.Infof("waiting for foreground invocation %q", foregroundName)
	foregroundHandle.Wait(0)

	exitCode, err = foregroundHandle.ExitCode()
	if err != nil {
		return 0, errors.Wrapf(err, "could not get exit code of invocation %q", foregroundName)
	}

	if exitCode != 0 {
		executor.LogUnsucessfulExecution(foregroundName, foregroundHandle.Address(), foregroundHandle)
	}

	return exitCode, nil
}
