package executor

import (
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/sirupsen/logrus"
)

type taskHandleStopper struct {
	taskHandles []TaskHandle
	sync.Mutex
}

var globalTaskHandleStopper *taskHandleStopper

// RegisterInterruptHandle waits for Interrupt signal and stops unconditionally all taskHandles.
func RegisterInterruptHandle() func() {
	globalTaskHandleStopper = &taskHandleStopper{}
	return globalTaskHandleStopper.registerInterruptHandle()
}

// register remembers a handle for interrupt cleanup. Does nothing when
// RegisterInterruptHandle was not called.
func register(t TaskHandle) {
	if globalTaskHandleStopper == nil {
		return
	}
	globalTaskHandleStopper.register(t)
}

func (ths *taskHandleStopper) registerInterruptHandle() func() {
	ths.Lock()
	defer ths.Unlock()
	logrus.Debugf("clean: interrupt handle initialized")

	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		logrus.Debugf("clean: stopAllTaskHandles on signal '%v'", <-c)
		ths.stopAllTaskHandles()
		os.Exit(1)
	}()
	return ths.stopAllTaskHandles
}

func (ths *taskHandleStopper) stopAllTaskHandles() {
	ths.Lock()
	defer ths.Unlock()
	// Stop in reverse order.
	for i := len(ths.taskHandles) - 1; i >= 0; i-- {
		taskHandle := ths.taskHandles[i]
		logrus.Debugf("clean: stopping '%v'...", taskHandle)
		logrus.Debugf("clean: taskHandle '%v' Stop() returned '%v'", taskHandle, taskHandle.Stop())
	}
	ths.taskHandles = nil
}

func (ths *taskHandleStopper) register(t TaskHandle) {
	ths.Lock()
	defer ths.Unlock()
	ths.taskHandles = append(ths.taskHandles, t)
}
