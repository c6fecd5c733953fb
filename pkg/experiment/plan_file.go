package experiment

import (
	"fmt"
	"io/ioutil"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/Friedrichqi/liberorun/pkg/workloads/libero"
)

type planFile struct {
	Name        string           `yaml:"name"`
	Invocations []invocationFile `yaml:"invocations"`
}

type invocationFile struct {
	Name       string `yaml:"name"`
	Devices    []int  `yaml:"devices"`
	Enabled    *bool  `yaml:"enabled"`
	Foreground bool   `yaml:"foreground"`

	ModelFamily          string `yaml:"model_family"`
	PretrainedCheckpoint string `yaml:"pretrained_checkpoint"`
	TaskSuiteName        string `yaml:"task_suite_name"`
	CenterCrop           *bool  `yaml:"center_crop"`
	NumTrialsPerTask     int    `yaml:"num_trials_per_task"`
	NumStepsWait         int    `yaml:"num_steps_wait"`
	RunIDNote            string `yaml:"run_id_note"`
	LocalLogDir          string `yaml:"local_log_dir"`
	Seed                 *int   `yaml:"seed"`
	UseWandb             bool   `yaml:"use_wandb"`
	WandbProject         string `yaml:"wandb_project"`
	WandbEntity          string `yaml:"wandb_entity"`
	LoadIn8Bit           bool   `yaml:"load_in_8bit"`
	LoadIn4Bit           bool   `yaml:"load_in_4bit"`
}

// LoadPlan reads a launch plan from a YAML file. Missing workload fields fall
// back to the evaluation script defaults. `enabled` defaults to true, so a
// declared line has to be disabled explicitly; this replaces the
// comment-toggling of shell launch scripts.
func LoadPlan(planPath string) (Plan, error) {
	data, err := ioutil.ReadFile(planPath)
	if err != nil {
		return Plan{}, errors.Wrapf(err, "reading plan file %q failed", planPath)
	}

	var file planFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return Plan{}, errors.Wrapf(err, "parsing plan file %q failed", planPath)
	}

	if len(file.Invocations) == 0 {
		return Plan{}, errors.Errorf("plan file %q declares no invocations", planPath)
	}

	plan := Plan{Name: file.Name}
	for i, entry := range file.Invocations {
		workload := libero.DefaultConfig()
		if entry.ModelFamily != "" {
			workload.ModelFamily = entry.ModelFamily
		}
		if entry.PretrainedCheckpoint != "" {
			workload.PretrainedCheckpoint = entry.PretrainedCheckpoint
		}
		if entry.TaskSuiteName != "" {
			workload.TaskSuiteName = entry.TaskSuiteName
		}
		if entry.CenterCrop != nil {
			workload.CenterCrop = *entry.CenterCrop
		}
		if entry.NumTrialsPerTask != 0 {
			workload.NumTrialsPerTask = entry.NumTrialsPerTask
		}
		if entry.NumStepsWait != 0 {
			workload.NumStepsWait = entry.NumStepsWait
		}
		if entry.RunIDNote != "" {
			workload.RunIDNote = entry.RunIDNote
		}
		if entry.LocalLogDir != "" {
			workload.LocalLogDir = entry.LocalLogDir
		}
		if entry.Seed != nil {
			workload.Seed = *entry.Seed
		}
		if entry.UseWandb {
			workload.UseWandb = true
			workload.WandbProject = entry.WandbProject
			workload.WandbEntity = entry.WandbEntity
		}
		workload.LoadIn8Bit = entry.LoadIn8Bit
		workload.LoadIn4Bit = entry.LoadIn4Bit

		name := entry.Name
		if name == "" {
			name = fmt.Sprintf("invocation-%d", i+1)
		}

		plan.Invocations = append(plan.Invocations, Invocation{
			Name:       name,
			Devices:    entry.Devices,
			Workload:   workload,
			Enabled:    entry.Enabled == nil || *entry.Enabled,
			Foreground: entry.Foreground,
		})
	}

	return plan, nil
}
