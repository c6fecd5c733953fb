package executor

import (
	"io/ioutil"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/Friedrichqi/liberorun/pkg/isolation"
)

// TestLocal tests the execution of process on local machine.
func TestLocal(t *testing.T) {
	Convey("While using Local Shell", t, func() {
		l := NewLocal()

		Convey("When blocking infinitively sleep command is executed", func() {
			task, err := l.Execute("sleep inf")
			So(err, ShouldBeNil)
			So(task, ShouldNotBeNil)

			defer task.EraseOutput()
			defer task.Clean()
			defer task.Stop()

			Convey("Task should be still running", func() {
				So(task.Status(), ShouldEqual, RUNNING)

				_, err := task.ExitCode()
				So(err, ShouldNotBeNil)
			})

			Convey("When we wait for task termination with the 1ms timeout, timeout should exceed", func() {
				isTaskTerminated := task.Wait(1 * time.Millisecond)
				So(isTaskTerminated, ShouldBeFalse)
				So(task.Status(), ShouldEqual, RUNNING)
			})

			Convey("When we stop the task", func() {
				err := task.Stop()
				So(err, ShouldBeNil)

				Convey("The task should be terminated and the exit code should indicate killing", func() {
					So(task.Status(), ShouldEqual, TERMINATED)

					exitCode, err := task.ExitCode()
					So(err, ShouldBeNil)
					// Terminated by SIGTERM.
					So(exitCode, ShouldEqual, -15)
				})
			})
		})

		Convey("When command `echo output` is executed", func() {
			task, err := l.Execute("echo output")
			So(err, ShouldBeNil)
			So(task, ShouldNotBeNil)

			defer task.EraseOutput()
			defer task.Clean()

			Convey("When we wait for the task to terminate", func() {
				isTaskTerminated := task.Wait(0)
				So(isTaskTerminated, ShouldBeTrue)
				So(task.Status(), ShouldEqual, TERMINATED)

				Convey("The exit status should be 0", func() {
					exitCode, err := task.ExitCode()
					So(err, ShouldBeNil)
					So(exitCode, ShouldEqual, 0)
				})

				Convey("And command stdout needs to match 'output'", func() {
					stdoutFile, err := task.StdoutFile()
					So(err, ShouldBeNil)
					defer stdoutFile.Close()

					content, err := ioutil.ReadAll(stdoutFile)
					So(err, ShouldBeNil)
					So(string(content), ShouldEqual, "output\n")
				})
			})
		})

		Convey("When we execute two tasks in the same time", func() {
			task1, err1 := l.Execute("echo output1")
			task2, err2 := l.Execute("echo output2")
			So(err1, ShouldBeNil)
			So(err2, ShouldBeNil)

			defer task1.EraseOutput()
			defer task1.Clean()
			defer task2.EraseOutput()
			defer task2.Clean()

			task1.Wait(0)
			task2.Wait(0)

			exitCode1, err := task1.ExitCode()
			So(err, ShouldBeNil)
			exitCode2, err := task2.ExitCode()
			So(err, ShouldBeNil)

			So(exitCode1, ShouldEqual, 0)
			So(exitCode2, ShouldEqual, 0)
		})
	})

	Convey("While using Local Shell with device isolation", t, func() {
		l := NewLocalIsolated(isolation.NewDeviceDecorator(3))

		Convey("Spawned process should see the device selector in its environment", func() {
			task, err := l.Execute("sh -c 'echo $CUDA_VISIBLE_DEVICES'")
			So(err, ShouldBeNil)
			So(task, ShouldNotBeNil)

			defer task.EraseOutput()
			defer task.Clean()

			task.Wait(0)

			stdoutFile, err := task.StdoutFile()
			So(err, ShouldBeNil)
			defer stdoutFile.Close()

			content, err := ioutil.ReadAll(stdoutFile)
			So(err, ShouldBeNil)
			So(string(content), ShouldEqual, "3\n")
		})
	})
}
