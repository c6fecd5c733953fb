package executor

import (
	"io/ioutil"
	"os"
	"path"
	"strings"

	"github.com/pkg/errors"
)

func getBinaryNameFromCommand(command string) (string, error) {
	_, name := path.Split(command)
	nameSplit := strings.Split(name, " ")
	if len(nameSplit) == 0 {
		return "", errors.Errorf("failed to extract command name from %q", command)
	}
	return nameSplit[0], nil
}

// createExecutorOutputFiles creates a temporary output directory for given
// command and opens stdout & stderr files inside it.
func createExecutorOutputFiles(command, prefix string) (stdout, stderr *os.File, err error) {
	if len(command) == 0 {
		return nil, nil, errors.New("empty command string")
	}

	commandName, err := getBinaryNameFromCommand(command)
	if err != nil {
		return nil, nil, err
	}

	pwd, err := os.Getwd()
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to get working directory")
	}
	outputDir, err := ioutil.TempDir(pwd, prefix+"_"+commandName+"_")
	if err != nil {
		return nil, nil, errors.Wrapf(err, "failed to create output directory for %q", commandName)
	}

	stdoutFileName := path.Join(outputDir, "stdout")
	stdout, err = os.Create(stdoutFileName)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "creation of %q failed", stdoutFileName)
	}

	stderrFileName := path.Join(outputDir, "stderr")
	stderr, err = os.Create(stderrFileName)
	if err != nil {
		os.Remove(stdoutFileName)
		return nil, nil, errors.Wrapf(err, "creation of %q failed", stderrFileName)
	}

	return stdout, stderr, nil
}

// removeExecutorOutputFiles closes output files and removes the whole task
// output directory. Used when the command could not be started.
func removeExecutorOutputFiles(stdout, stderr *os.File) {
	stdout.Close()
	stderr.Close()
	os.RemoveAll(path.Dir(stdout.Name()))
}

// openOutputFile opens an output file for reading.
func openOutputFile(filePath string) (*os.File, error) {
	if _, err := os.Stat(filePath); err != nil {
		return nil, errors.Wrapf(err, "output file %q is not available", filePath)
	}
	file, err := os.Open(filePath)
	if err != nil {
		return nil, errors.Wrapf(err, "open of %q failed", filePath)
	}
	return file, nil
}
