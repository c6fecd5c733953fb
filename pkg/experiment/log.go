package experiment

import (
	"io"
	"os"
	"path"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/Friedrichqi/liberorun/pkg/conf"
)

var experimentDirFlag = conf.NewStringFlag(
	"experiment_dir", "Directory where per-session directories with master logs are created", ".")

// InitializeLogFile creates the session directory and points logrus at both
// stderr and the Master.log file inside it. The returned closer restores
// plain stderr logging.
func (s Session) InitializeLogFile() (closer func(), err error) {
	sessionDir := path.Join(experimentDirFlag.Value(), s.ID)
	if err := os.MkdirAll(sessionDir, 0755); err != nil {
		return nil, errors.Wrapf(err, "could not create session directory %q", sessionDir)
	}

	logFileName := path.Join(sessionDir, "Master.log")
	logFile, err := os.Create(logFileName)
	if err != nil {
		return nil, errors.Wrapf(err, "could not create master log file %q", logFileName)
	}

	logrus.SetOutput(io.MultiWriter(os.Stderr, logFile))
	logrus.Infof("starting session %q", s.ID)

	return func() {
		logrus.SetOutput(os.Stderr)
		logFile.Close()
	}, nil
}
