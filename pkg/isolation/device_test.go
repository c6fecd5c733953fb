package isolation

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestDeviceDecorator(t *testing.T) {
	Convey("While using device decorator", t, func() {
		Convey("Single device should render single value", func() {
			decorator := NewDeviceDecorator(1)
			So(decorator.Decorate("python eval.py"), ShouldEqual,
				"CUDA_VISIBLE_DEVICES=1 python eval.py")
		})

		Convey("Multiple devices should render comma separated list", func() {
			decorator := NewDeviceDecorator(0, 2, 3)
			So(decorator.Decorate("python eval.py"), ShouldEqual,
				"CUDA_VISIBLE_DEVICES=0,2,3 python eval.py")
		})

		Convey("Empty device list should hide all devices", func() {
			decorator := NewDeviceDecorator()
			So(decorator.Decorate("python eval.py"), ShouldEqual,
				"CUDA_VISIBLE_DEVICES= python eval.py")
		})

		Convey("Negative identifiers should be skipped", func() {
			decorator := NewDeviceDecorator(-1, 1)
			So(decorator.Decorate("python eval.py"), ShouldEqual,
				"CUDA_VISIBLE_DEVICES=1 python eval.py")
		})

		Convey("Decorators should compose with other decorators", func() {
			// The device decorator must be applied last so that the
			// environment assignment stays at the front of the shell command.
			decorators := Decorators{NewTasksetDecorator([]int{0, 1}), NewDeviceDecorator(1)}
			So(decorators.Decorate("python eval.py"), ShouldEqual,
				"CUDA_VISIBLE_DEVICES=1 taskset -c 0,1 python eval.py")
		})
	})
}
