package main

import (
	"fmt"
	"os"
	"path"

	"github.com/sirupsen/logrus"

	"github.com/Friedrichqi/liberorun/pkg/conf"
	"github.com/Friedrichqi/liberorun/pkg/executor"
	"github.com/Friedrichqi/liberorun/pkg/experiment"
	"github.com/Friedrichqi/liberorun/pkg/report"
	"github.com/Friedrichqi/liberorun/pkg/utils/errutil"
	"github.com/Friedrichqi/liberorun/pkg/workloads/libero"
)

const appHelp = `Launches LIBERO robot-policy evaluations as independent OS processes,
one GPU device assignment per process. All invocations are fire-and-forget
except an optional foregrounded last one whose exit code the launcher
propagates.`

var (
	planPathFlag = conf.NewStringFlag(
		"plan", "Path to a YAML launch plan. The built-in default plan is used when empty", "")
	checkpointRootFlag = conf.NewStringFlag(
		"checkpoint_root", "Root directory with the pretrained checkpoints used by the built-in plan",
		"/data1/pretrained_models/openvla_libero")
	dumpConfigFlag = conf.NewBoolFlag(
		"config_dump", "Dump the environment based configuration and exit", false)
	stopOnInterruptFlag = conf.NewBoolFlag(
		"stop_on_interrupt", "Stop all spawned evaluations when the launcher is interrupted instead of leaving them running", false)
	recordMetadataFlag = conf.NewBoolFlag(
		"metadata", "Record flags, environment and platform metadata in Cassandra", false)

	convertTraceFlag = conf.NewStringFlag(
		"convert_trace", "Convert the given motion trace file to CSV and exit", "")
	recordEvalLogFlag = conf.NewStringFlag(
		"record_eval_log", "Parse the given evaluation log, store its result and exit", "")
	showResultsFlag = conf.NewBoolFlag(
		"show_results", "Render all recorded evaluation results and exit", false)
	resultsDBFlag = conf.NewStringFlag(
		"results_db", "Path to the sqlite database with recorded evaluation results", "liberorun_results.db")
)

// defaultPlan mirrors the launch script this tool replaces: every benchmark
// suite is declared, only libero_spatial is enabled and foregrounded.
func defaultPlan() experiment.Plan {
	checkpointRoot := checkpointRootFlag.Value()

	invocation := func(suite string, checkpoint string, devices []int, enabled bool, foreground bool) experiment.Invocation {
		config := libero.DefaultConfig()
		config.TaskSuiteName = suite
		config.PretrainedCheckpoint = path.Join(checkpointRoot, checkpoint)
		config.CenterCrop = true
		return experiment.Invocation{
			Name:       suite,
			Devices:    devices,
			Workload:   config,
			Enabled:    enabled,
			Foreground: foreground,
		}
	}

	return experiment.Plan{
		Name: "default",
		Invocations: []experiment.Invocation{
			invocation("libero_spatial", "spatial", []int{1}, true, true),
			invocation("libero_object", "object", []int{2}, false, false),
			invocation("libero_goal", "goal", []int{3}, false, false),
			invocation("libero_10", "libero_10", []int{0}, false, false),
		},
	}
}

func loadPlan() (experiment.Plan, error) {
	if planPath := planPathFlag.Value(); planPath != "" {
		return experiment.LoadPlan(planPath)
	}
	return defaultPlan(), nil
}

func recordEvalLog(logPath string, sessionID string) error {
	result, err := report.ParseEvalLogFile(logPath)
	if err != nil {
		return err
	}

	store, err := report.OpenStore(resultsDBFlag.Value())
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Save(sessionID, result); err != nil {
		return err
	}

	logrus.Infof("recorded result for suite %q: %d/%d successes (%.3f)",
		result.TaskSuite, result.Successes, result.Episodes, result.TotalSuccessRate)
	return nil
}

func showResults() error {
	store, err := report.OpenStore(resultsDBFlag.Value())
	if err != nil {
		return err
	}
	defer store.Close()

	results, err := store.All()
	if err != nil {
		return err
	}

	report.RenderResults(os.Stdout, results)
	return nil
}

func run() int {
	conf.SetAppName(path.Base(os.Args[0]))
	conf.SetHelp(appHelp)
	errutil.CheckWithContext(conf.ParseFlags(), "Cannot parse flags")

	logrus.SetLevel(conf.LogLevel())
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, TimestampFormat: "2006-01-02 15:04:05.000"})

	if dumpConfigFlag.Value() {
		fmt.Println(conf.DumpConfig())
		return 0
	}

	if tracePath := convertTraceFlag.Value(); tracePath != "" {
		outputPath, err := report.ConvertTrace(tracePath)
		errutil.CheckWithContext(err, "Cannot convert motion trace")
		logrus.Infof("wrote %s", outputPath)
		return 0
	}

	if showResultsFlag.Value() {
		errutil.CheckWithContext(showResults(), "Cannot render recorded results")
		return 0
	}

	session := experiment.NewSession()

	if logPath := recordEvalLogFlag.Value(); logPath != "" {
		errutil.CheckWithContext(recordEvalLog(logPath, session.ID), "Cannot record evaluation log")
		return 0
	}

	plan, err := loadPlan()
	errutil.CheckWithContext(err, "Cannot load launch plan")

	closeLog, err := session.InitializeLogFile()
	errutil.CheckWithContext(err, "Cannot initialize session log")
	defer closeLog()

	plan.RenderSummary(os.Stdout)

	if recordMetadataFlag.Value() {
		metadata := experiment.NewMetadata(session.ID, experiment.MetadataConfigFromFlags())
		errutil.CheckWithContext(metadata.Connect(), "Cannot connect to metadata database")
		defer metadata.Disconnect()

		errutil.CheckWithContext(metadata.RecordFlags(), "Cannot record flags metadata")
		errutil.CheckWithContext(metadata.RecordEnviron(), "Cannot record environment metadata")
		errutil.CheckWithContext(metadata.RecordPlatform(), "Cannot record platform metadata")
	}

	// Spawned evaluations normally outlive the launcher. Stopping them on
	// SIGINT is strictly opt-in.
	if stopOnInterruptFlag.Value() {
		executor.RegisterInterruptHandle()
	}

	exitCode, err := experiment.NewRunner(plan).Run()
	if err != nil {
		logrus.Errorf("launch failed: %+v", err)
		return 1
	}

	return exitCode
}

func main() {
	// os.Exit skips deferred functions, so all the work happens in run().
	os.Exit(run())
}
