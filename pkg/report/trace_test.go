package report

import (
	"io/ioutil"
	"os"
	"path"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func writeTraceFile(t *testing.T, name, content string) string {
	t.Helper()
	dir, err := ioutil.TempDir("", "liberorun_trace")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })

	tracePath := path.Join(dir, name)
	if err := ioutil.WriteFile(tracePath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return tracePath
}

func TestConvertTrace(t *testing.T) {
	Convey("While converting a motion trace to CSV", t, func() {
		Convey("Comma separated values are written with a header", func() {
			tracePath := writeTraceFile(t, "trace.txt", "0.1, 0.99, 0.02, 0.88\n0.2, 0.97, 0.03, 0.91\n")

			outputPath, err := ConvertTrace(tracePath)
			So(err, ShouldBeNil)
			So(outputPath, ShouldEndWith, "trace.csv")

			content, err := ioutil.ReadFile(outputPath)
			So(err, ShouldBeNil)
			So(string(content), ShouldEqual,
				"xyz_magnitude,xyz_cosine_similarity,rot_magnitude,rot_cosine_similarity\n"+
					"0.1,0.99,0.02,0.88\n"+
					"0.2,0.97,0.03,0.91\n")
		})

		Convey("Whitespace separated values are accepted as fallback", func() {
			tracePath := writeTraceFile(t, "trace.txt", "0.1 0.99 0.02 0.88\n")

			outputPath, err := ConvertTrace(tracePath)
			So(err, ShouldBeNil)

			content, err := ioutil.ReadFile(outputPath)
			So(err, ShouldBeNil)
			So(string(content), ShouldContainSubstring, "0.1,0.99,0.02,0.88\n")
		})

		Convey("Blank and malformed lines are skipped", func() {
			tracePath := writeTraceFile(t, "trace.txt", "\n0.1, 0.99, 0.02, 0.88\n\nnot a trace line\n0.5, 0.5\n")

			outputPath, err := ConvertTrace(tracePath)
			So(err, ShouldBeNil)

			content, err := ioutil.ReadFile(outputPath)
			So(err, ShouldBeNil)
			So(string(content), ShouldEqual,
				"xyz_magnitude,xyz_cosine_similarity,rot_magnitude,rot_cosine_similarity\n"+
					"0.1,0.99,0.02,0.88\n")
		})

		Convey("Unparsable values are written as is", func() {
			tracePath := writeTraceFile(t, "trace.txt", "0.1, nan?, 0.02, 0.88\n")

			outputPath, err := ConvertTrace(tracePath)
			So(err, ShouldBeNil)

			content, err := ioutil.ReadFile(outputPath)
			So(err, ShouldBeNil)
			So(string(content), ShouldContainSubstring, "0.1,nan?,0.02,0.88\n")
		})

		Convey("A missing input file is reported", func() {
			_, err := ConvertTrace("/nonexistent/trace.txt")
			So(err, ShouldNotBeNil)
		})
	})
}
