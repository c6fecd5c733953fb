package executor

import (
	"os"
	"os/exec"
	"path"
	"syscall"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/Friedrichqi/liberorun/pkg/isolation"
)

const localAddress = "local"

// Local provisioning is responsible for providing the execution environment
// on local machine via exec.Command.
// It runs command as current user.
type Local struct {
	commandDecorators isolation.Decorators
}

// NewLocal returns instance of local executor without any decorators.
func NewLocal() Local {
	return NewLocalIsolated()
}

// NewLocalIsolated returns a Local instance with given isolation decorators set.
func NewLocalIsolated(decorators ...isolation.Decorator) Local {
	return Local{commandDecorators: decorators}
}

// Name returns user-friendly name of executor.
func (l Local) Name() string {
	return "Local Executor"
}

// Execute runs the command given as input.
// Returned TaskHandle is able to stop & monitor the provisioned process.
func (l Local) Execute(command string) (TaskHandle, error) {
	decoratedCommand := l.commandDecorators.Decorate(command)

	log.Debugf("Starting %q locally", decoratedCommand)

	cmd := exec.Command("sh", "-c", decoratedCommand)

	// It is important to set additional Process Group ID for parent process and his children
	// to have ability to kill all the children processes.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	stdoutFile, stderrFile, err := createExecutorOutputFiles(command, "local")
	if err != nil {
		return nil, errors.Wrapf(err, "cannot create output files for command %q", command)
	}

	log.Debugf("Created temporary files stdout path: %q stderr path: %q",
		stdoutFile.Name(), stderrFile.Name())

	cmd.Stdout = stdoutFile
	cmd.Stderr = stderrFile

	err = cmd.Start()
	if err != nil {
		removeExecutorOutputFiles(stdoutFile, stderrFile)
		return nil, errors.Wrapf(err, "command %q start failed", command)
	}

	log.Debugf("Started with pid %d", cmd.Process.Pid)

	// waitEndChannel is closed when the workload process terminates.
	waitEndChannel := make(chan struct{})

	taskHandle := &localTaskHandle{
		cmdHandler:     cmd,
		command:        decoratedCommand,
		stdoutFile:     stdoutFile,
		stderrFile:     stderrFile,
		waitEndChannel: waitEndChannel,
	}

	// Wait for the workload in goroutine.
	go func() {
		defer close(waitEndChannel)

		// NOTE: Wait() returns an error. We grab the process state in any case
		// (success or failure) below, so the error object matters less in the
		// status handling for now.
		cmd.Wait()

		log.Debugf("Ended %q with exit code %d", decoratedCommand, getExitCode(cmd.ProcessState))
		log.Debugf("Stdout stored in %q, stderr stored in %q", stdoutFile.Name(), stderrFile.Name())
	}()

	register(taskHandle)

	return checkIfProcessFailedToExecute(command, l.Name(), taskHandle)
}

// getExitCode translates the process state into the task exit code: the exit
// status for a normal exit, or the negated signal number when the process was
// terminated by a signal.
func getExitCode(processState *os.ProcessState) int {
	waitStatus := processState.Sys().(syscall.WaitStatus)
	if waitStatus.Exited() {
		return waitStatus.ExitStatus()
	}

	return -int(waitStatus.Signal())
}

// localTaskHandle implements TaskHandle interface.
type localTaskHandle struct {
	cmdHandler *exec.Cmd
	command    string
	stdoutFile *os.File
	stderrFile *os.File

	// waitEndChannel is closed when the task terminates.
	waitEndChannel chan struct{}
}

// isTerminated checks if waitEndChannel is closed. If it is closed, it means
// that wait ended and task is in terminated state.
func (taskHandle *localTaskHandle) isTerminated() bool {
	select {
	case <-taskHandle.waitEndChannel:
		return true
	default:
		return false
	}
}

func (taskHandle *localTaskHandle) getPid() int {
	return taskHandle.cmdHandler.Process.Pid
}

// Stop terminates the local task.
func (taskHandle *localTaskHandle) Stop() error {
	if taskHandle.isTerminated() {
		return nil
	}

	// We signal the entire process group.
	// The kill syscall interprets a negated PID N as the process group N belongs to.
	log.Debugf("Sending SIGTERM to PID %d", -taskHandle.getPid())
	err := syscall.Kill(-taskHandle.getPid(), syscall.SIGTERM)
	if err != nil {
		return errors.Wrapf(err, "could not stop task %q", taskHandle.command)
	}

	// Wait for task termination.
	taskHandle.Wait(0)

	return nil
}

// Status returns a state of the task.
func (taskHandle *localTaskHandle) Status() TaskState {
	if !taskHandle.isTerminated() {
		return RUNNING
	}

	return TERMINATED
}

// ExitCode returns a exitCode. If task is not terminated it returns error.
func (taskHandle *localTaskHandle) ExitCode() (int, error) {
	if !taskHandle.isTerminated() {
		return -1, errors.Errorf("task %q is not terminated", taskHandle.command)
	}

	return getExitCode(taskHandle.cmdHandler.ProcessState), nil
}

// StdoutFile returns a file handle for the task's stdout file.
func (taskHandle *localTaskHandle) StdoutFile() (*os.File, error) {
	return openOutputFile(taskHandle.stdoutFile.Name())
}

// StderrFile returns a file handle for the task's stderr file.
func (taskHandle *localTaskHandle) StderrFile() (*os.File, error) {
	return openOutputFile(taskHandle.stderrFile.Name())
}

// Wait waits for the command to finish with the given timeout time.
// It returns true if task is terminated.
func (taskHandle *localTaskHandle) Wait(timeout time.Duration) bool {
	if taskHandle.isTerminated() {
		return true
	}

	var timeoutChannel <-chan time.Time
	if timeout != 0 {
		// In case of wait with timeout set the timeout channel.
		timeoutChannel = time.After(timeout)
	}

	select {
	case <-taskHandle.waitEndChannel:
		// If waitEndChannel is closed then task is terminated.
		return true
	case <-timeoutChannel:
		// If timeout time exceeded return then task did not terminate yet.
		return false
	}
}

// Clean closes the task's stdout & stderr files.
func (taskHandle *localTaskHandle) Clean() error {
	if err := taskHandle.stdoutFile.Close(); err != nil {
		return errors.Wrapf(err, "close of file %q failed", taskHandle.stdoutFile.Name())
	}
	if err := taskHandle.stderrFile.Close(); err != nil {
		return errors.Wrapf(err, "close of file %q failed", taskHandle.stderrFile.Name())
	}
	return nil
}

// EraseOutput removes task's stdout & stderr files and their directory.
func (taskHandle *localTaskHandle) EraseOutput() error {
	outputDir := path.Dir(taskHandle.stdoutFile.Name())
	if err := os.RemoveAll(outputDir); err != nil {
		return errors.Wrapf(err, "removal of output directory %q failed", outputDir)
	}
	return nil
}

// Address returns address where task was located.
func (taskHandle *localTaskHandle) Address() string {
	return localAddress
}
