package libero

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/Friedrichqi/liberorun/pkg/conf"
	"github.com/Friedrichqi/liberorun/pkg/executor"
)

const (
	name = "LIBERO evaluation"

	defaultEvalScript  = "experiments/robot/libero/run_libero_eval.py"
	defaultModelFamily = "openvla"
	defaultTaskSuite   = "libero_spatial"
	defaultNumTrials   = 50
	defaultStepsWait   = 10
	defaultLocalLogDir = "./experiments/logs"
	defaultSeed        = 7
)

// TaskSuites lists the benchmark subsets understood by the evaluation script.
var TaskSuites = []string{
	"libero_spatial",
	"libero_object",
	"libero_goal",
	"libero_10",
	"libero_90",
}

var (
	pythonBinaryFlag = conf.NewStringFlag(
		"libero_python", "Python interpreter used to run the evaluation script", "python")
	evalScriptFlag = conf.NewStringFlag(
		"libero_eval_script", "Path to the LIBERO evaluation script", defaultEvalScript)
	localLogDirFlag = conf.NewStringFlag(
		"libero_log_dir", "Local directory for evaluation logs", defaultLocalLogDir)
	numTrialsFlag = conf.NewIntFlag(
		"libero_trials", "Number of rollouts per task", defaultNumTrials)
	useWandbFlag = conf.NewBoolFlag(
		"libero_wandb", "Log results to Weights & Biases as well", false)
	wandbProjectFlag = conf.NewStringFlag(
		"libero_wandb_project", "Name of W&B project to log to", "")
	wandbEntityFlag = conf.NewStringFlag(
		"libero_wandb_entity", "Name of W&B entity to log under", "")
)

// Config is a config for a single run of the LIBERO evaluation script.
// Flag names and defaults follow the script's own configuration:
//
//	python experiments/robot/libero/run_libero_eval.py \
//	    --model_family openvla \
//	    --pretrained_checkpoint <CHECKPOINT_PATH> \
//	    --task_suite_name [ libero_spatial | libero_object | libero_goal | libero_10 | libero_90 ] \
//	    --center_crop [ True | False ]
type Config struct {
	PythonBinary string
	EvalScript   string

	ModelFamily          string
	PretrainedCheckpoint string
	TaskSuiteName        string
	// CenterCrop must be set when the model was fine-tuned with random-crop
	// image augmentations.
	CenterCrop bool

	NumTrialsPerTask int
	NumStepsWait     int
	RunIDNote        string
	LocalLogDir      string
	Seed             int

	UseWandb     bool
	WandbProject string
	WandbEntity  string

	// OpenVLA quantized loading. Mutually exclusive.
	LoadIn8Bit bool
	LoadIn4Bit bool
}

// DefaultConfig is a constructor for Config with default parameters.
func DefaultConfig() Config {
	return Config{
		PythonBinary:     pythonBinaryFlag.Value(),
		EvalScript:       evalScriptFlag.Value(),
		ModelFamily:      defaultModelFamily,
		TaskSuiteName:    defaultTaskSuite,
		CenterCrop:       true,
		NumTrialsPerTask: numTrialsFlag.Value(),
		NumStepsWait:     defaultStepsWait,
		LocalLogDir:      localLogDirFlag.Value(),
		Seed:             defaultSeed,
		UseWandb:         useWandbFlag.Value(),
		WandbProject:     wandbProjectFlag.Value(),
		WandbEntity:      wandbEntityFlag.Value(),
	}
}

// Validate mirrors the asserts the evaluation script performs on startup, so
// misconfiguration is caught before a process is spawned.
func (c Config) Validate() error {
	if c.PretrainedCheckpoint == "" {
		return errors.New("pretrained checkpoint path must not be empty")
	}

	if c.LoadIn8Bit && c.LoadIn4Bit {
		return errors.New("cannot use both 8-bit and 4-bit quantization")
	}

	if strings.Contains(c.PretrainedCheckpoint, "image_aug") && !c.CenterCrop {
		return errors.New("center crop must be enabled for checkpoints trained with image augmentations")
	}

	if !isKnownTaskSuite(c.TaskSuiteName) {
		return errors.Errorf("unknown task suite %q, supported suites: %s",
			c.TaskSuiteName, strings.Join(TaskSuites, ", "))
	}

	return nil
}

func isKnownTaskSuite(suite string) bool {
	for _, known := range TaskSuites {
		if known == suite {
			return true
		}
	}
	return false
}

// Libero is a launcher for a single LIBERO evaluation process.
type Libero struct {
	exec executor.Executor
	conf Config
}

// New is a constructor for Libero.
func New(exec executor.Executor, config Config) Libero {
	return Libero{
		exec: exec,
		conf: config,
	}
}

// pythonBool renders a bool the way draccus parses it on the script side.
func pythonBool(value bool) string {
	if value {
		return "True"
	}
	return "False"
}

func (l Libero) buildCommand() string {
	var builder strings.Builder

	fmt.Fprintf(&builder, "%s %s", l.conf.PythonBinary, l.conf.EvalScript)
	fmt.Fprintf(&builder, " --model_family %s", l.conf.ModelFamily)
	fmt.Fprintf(&builder, " --pretrained_checkpoint %s", l.conf.PretrainedCheckpoint)
	fmt.Fprintf(&builder, " --task_suite_name %s", l.conf.TaskSuiteName)
	fmt.Fprintf(&builder, " --center_crop %s", pythonBool(l.conf.CenterCrop))

	// Remaining flags are emitted only when they differ from the script's own
	// defaults, keeping the spawned command minimal.
	if l.conf.NumTrialsPerTask != defaultNumTrials {
		fmt.Fprintf(&builder, " --num_trials_per_task %d", l.conf.NumTrialsPerTask)
	}
	if l.conf.NumStepsWait != defaultStepsWait {
		fmt.Fprintf(&builder, " --num_steps_wait %d", l.conf.NumStepsWait)
	}
	if l.conf.RunIDNote != "" {
		fmt.Fprintf(&builder, " --run_id_note %s", l.conf.RunIDNote)
	}
	if l.conf.LocalLogDir != defaultLocalLogDir {
		fmt.Fprintf(&builder, " --local_log_dir %s", l.conf.LocalLogDir)
	}
	if l.conf.Seed != defaultSeed {
		fmt.Fprintf(&builder, " --seed %d", l.conf.Seed)
	}
	if l.conf.LoadIn8Bit {
		fmt.Fprintf(&builder, " --load_in_8bit %s", pythonBool(true))
	}
	if l.conf.LoadIn4Bit {
		fmt.Fprintf(&builder, " --load_in_4bit %s", pythonBool(true))
	}
	if l.conf.UseWandb {
		fmt.Fprintf(&builder, " --use_wandb %s", pythonBool(true))
		fmt.Fprintf(&builder, " --wandb_project %s", l.conf.WandbProject)
		fmt.Fprintf(&builder, " --wandb_entity %s", l.conf.WandbEntity)
	}

	return builder.String()
}

// Launch starts the evaluation process. It returns a workload represented as
// a Task Handle instance.
// Error is returned when Launcher is unable to start a job.
func (l Libero) Launch() (executor.TaskHandle, error) {
	if err := l.conf.Validate(); err != nil {
		return nil, errors.Wrapf(err, "invalid %s configuration", name)
	}

	task, err := l.exec.Execute(l.buildCommand())
	if err != nil {
		return nil, errors.Wrapf(err, "launching %s for suite %q failed", name, l.conf.TaskSuiteName)
	}

	return task, nil
}

// String returns human readable name for job.
func (l Libero) String() string {
	return name
}
