package experiment

import (
	"testing"

	"github.com/pkg/errors"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/stretchr/testify/mock"

	"github.com/Friedrichqi/liberorun/pkg/executor"
	"github.com/Friedrichqi/liberorun/pkg/executor/mocks"
	"github.com/Friedrichqi/liberorun/pkg/workloads/libero"
)

func testInvocation(name string, devices []int, enabled bool, foreground bool) Invocation {
	config := libero.DefaultConfig()
	config.PretrainedCheckpoint = "/data1/pretrained_models/openvla_libero/spatial"
	return Invocation{
		Name:       name,
		Devices:    devices,
		Workload:   config,
		Enabled:    enabled,
		Foreground: foreground,
	}
}

// recordingFactory returns mocked executors and records which invocations
// requested one.
type recordingFactory struct {
	invocations []Invocation
	executors   []*mocks.Executor
}

func (f *recordingFactory) build(handle executor.TaskHandle, launchErr error) ExecutorFactory {
	return func(invocation Invocation) executor.Executor {
		f.invocations = append(f.invocations, invocation)
		mockedExecutor := new(mocks.Executor)
		mockedExecutor.On("Execute", mock.AnythingOfType("string")).Return(handle, launchErr).Once()
		f.executors = append(f.executors, mockedExecutor)
		return mockedExecutor
	}
}

func TestRunner(t *testing.T) {
	Convey("While using the plan runner", t, func() {
		Convey("With three declared invocations and one enabled, exactly one process is spawned", func() {
			backgroundHandle := new(mocks.TaskHandle)

			factory := &recordingFactory{}
			plan := Plan{
				Name: "test",
				Invocations: []Invocation{
					testInvocation("spatial", []int{1}, true, false),
					testInvocation("object", []int{2}, false, false),
					testInvocation("goal", []int{3}, false, false),
				},
			}

			exitCode, err := NewRunnerWithExecutorFactory(plan, factory.build(backgroundHandle, nil)).Run()
			So(err, ShouldBeNil)
			So(exitCode, ShouldEqual, 0)

			So(factory.invocations, ShouldHaveLength, 1)
			So(factory.invocations[0].Name, ShouldEqual, "spatial")
			So(factory.invocations[0].Devices, ShouldResemble, []int{1})
			for _, mockedExecutor := range factory.executors {
				mockedExecutor.AssertExpectations(t)
			}
		})

		Convey("With all invocations disabled, nothing is spawned and runner completes immediately", func() {
			factory := &recordingFactory{}
			plan := Plan{
				Invocations: []Invocation{
					testInvocation("spatial", []int{1}, false, true),
					testInvocation("object", []int{2}, false, false),
				},
			}

			exitCode, err := NewRunnerWithExecutorFactory(plan, factory.build(nil, nil)).Run()
			So(err, ShouldBeNil)
			So(exitCode, ShouldEqual, 0)
			So(factory.invocations, ShouldBeEmpty)
		})

		Convey("Foreground invocation propagates its exit code", func() {
			foregroundHandle := new(mocks.TaskHandle)
			foregroundHandle.On("Wait", mock.AnythingOfType("time.Duration")).Return(true)
			foregroundHandle.On("ExitCode").Return(3, nil)
			foregroundHandle.On("Address").Return("local")
			foregroundHandle.On("StdoutFile").Return(nil, errors.New("no stdout"))
			foregroundHandle.On("StderrFile").Return(nil, errors.New("no stderr"))

			factory := &recordingFactory{}
			plan := Plan{
				Invocations: []Invocation{
					testInvocation("spatial", []int{1}, true, true),
				},
			}

			exitCode, err := NewRunnerWithExecutorFactory(plan, factory.build(foregroundHandle, nil)).Run()
			So(err, ShouldBeNil)
			So(exitCode, ShouldEqual, 3)
			foregroundHandle.AssertExpectations(t)
		})

		Convey("Foreground invocation with zero exit code returns zero", func() {
			foregroundHandle := new(mocks.TaskHandle)
			foregroundHandle.On("Wait", mock.AnythingOfType("time.Duration")).Return(true)
			foregroundHandle.On("ExitCode").Return(0, nil)

			factory := &recordingFactory{}
			plan := Plan{
				Invocations: []Invocation{
					testInvocation("spatial", []int{1}, true, true),
				},
			}

			exitCode, err := NewRunnerWithExecutorFactory(plan, factory.build(foregroundHandle, nil)).Run()
			So(err, ShouldBeNil)
			So(exitCode, ShouldEqual, 0)
		})

		Convey("Foreground is only honored on the last enabled invocation", func() {
			backgroundHandle := new(mocks.TaskHandle)

			factory := &recordingFactory{}
			plan := Plan{
				Invocations: []Invocation{
					testInvocation("spatial", []int{1}, true, true),
					testInvocation("object", []int{2}, true, false),
				},
			}

			// Neither Wait nor ExitCode may be called on any handle because
			// the last enabled invocation is not foregrounded.
			exitCode, err := NewRunnerWithExecutorFactory(plan, factory.build(backgroundHandle, nil)).Run()
			So(err, ShouldBeNil)
			So(exitCode, ShouldEqual, 0)
			So(factory.invocations, ShouldHaveLength, 2)
			backgroundHandle.AssertNotCalled(t, "Wait", mock.Anything)
		})

		Convey("A failed background spawn does not abort the remaining invocations", func() {
			factory := &recordingFactory{}
			plan := Plan{
				Invocations: []Invocation{
					testInvocation("spatial", []int{1}, true, false),
					testInvocation("object", []int{2}, true, false),
				},
			}

			exitCode, err := NewRunnerWithExecutorFactory(plan, factory.build(nil, errors.New("spawn failed"))).Run()
			So(err, ShouldBeNil)
			So(exitCode, ShouldEqual, 0)
			So(factory.invocations, ShouldHaveLength, 2)
		})

		Convey("A failed foreground spawn is returned as error", func() {
			factory := &recordingFactory{}
			plan := Plan{
				Invocations: []Invocation{
					testInvocation("spatial", []int{1}, true, true),
				},
			}

			_, err := NewRunnerWithExecutorFactory(plan, factory.build(nil, errors.New("spawn failed"))).Run()
			So(err, ShouldNotBeNil)
		})
	})
}
