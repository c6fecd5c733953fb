package libero

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/stretchr/testify/mock"

	"github.com/Friedrichqi/liberorun/pkg/executor/mocks"
)

// TestLiberoWithMockedExecutor runs the LIBERO launcher with a mocked executor
// to verify command rendering and validation.
func TestLiberoWithMockedExecutor(t *testing.T) {
	const expectedCommand = "python experiments/robot/libero/run_libero_eval.py" +
		" --model_family openvla" +
		" --pretrained_checkpoint /data1/pretrained_models/openvla_libero/spatial" +
		" --task_suite_name libero_spatial" +
		" --center_crop True"

	Convey("While using LIBERO launcher", t, func() {
		mockedExecutor := new(mocks.Executor)
		mockedTaskHandle := new(mocks.TaskHandle)

		config := DefaultConfig()
		config.PretrainedCheckpoint = "/data1/pretrained_models/openvla_libero/spatial"

		launcher := New(mockedExecutor, config)

		Convey("Build command should render exactly the four mandatory flags for a default config", func() {
			So(launcher.buildCommand(), ShouldEqual, expectedCommand)
		})

		Convey("While simulating proper execution", func() {
			mockedExecutor.On("Execute", expectedCommand).Return(mockedTaskHandle, nil).Once()

			task, err := launcher.Launch()
			So(err, ShouldBeNil)
			So(task, ShouldEqual, mockedTaskHandle)

			mockedExecutor.AssertExpectations(t)
		})

		Convey("Non-default options should be appended after the mandatory flags", func() {
			config.NumTrialsPerTask = 10
			config.RunIDNote = "smoke"
			config.Seed = 42
			launcher := New(mockedExecutor, config)

			command := launcher.buildCommand()
			So(command, ShouldStartWith, expectedCommand)
			So(command, ShouldContainSubstring, " --num_trials_per_task 10")
			So(command, ShouldContainSubstring, " --run_id_note smoke")
			So(command, ShouldContainSubstring, " --seed 42")
		})

		Convey("Wandb options should be rendered together", func() {
			config.UseWandb = true
			config.WandbProject = "openvla"
			config.WandbEntity = "roboeval"
			launcher := New(mockedExecutor, config)

			command := launcher.buildCommand()
			So(command, ShouldContainSubstring, " --use_wandb True --wandb_project openvla --wandb_entity roboeval")
		})

		Convey("Launch with empty checkpoint should fail without spawning", func() {
			config.PretrainedCheckpoint = ""
			launcher := New(mockedExecutor, config)

			task, err := launcher.Launch()
			So(err, ShouldNotBeNil)
			So(task, ShouldBeNil)
			mockedExecutor.AssertNotCalled(t, "Execute", mock.Anything)
		})

		Convey("Launch with both quantization modes should fail", func() {
			config.LoadIn8Bit = true
			config.LoadIn4Bit = true
			launcher := New(mockedExecutor, config)

			task, err := launcher.Launch()
			So(err, ShouldNotBeNil)
			So(task, ShouldBeNil)
		})

		Convey("Launch with image_aug checkpoint and disabled center crop should fail", func() {
			config.PretrainedCheckpoint = "/data1/pretrained_models/openvla_libero/spatial_image_aug"
			config.CenterCrop = false
			launcher := New(mockedExecutor, config)

			task, err := launcher.Launch()
			So(err, ShouldNotBeNil)
			So(task, ShouldBeNil)
		})

		Convey("Launch with unknown task suite should fail", func() {
			config.TaskSuiteName = "libero_unknown"
			launcher := New(mockedExecutor, config)

			task, err := launcher.Launch()
			So(err, ShouldNotBeNil)
			So(task, ShouldBeNil)
		})
	})
}
