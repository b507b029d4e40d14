package scripts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/sirupsen/logrus"
)

type ScriptRunner struct {
	config Config
	logger *logrus.Logger
}

func NewScriptRunner(cfg Config) (*ScriptRunner, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	return &ScriptRunner{config: cfg, logger: logrus.StandardLogger()}, nil
}

func validateConfig(cfg Config) error {
	// Verify scripts directory exists
	if _, err := os.Stat(cfg.ScriptsPath); os.IsNotExist(err) {
		return fmt.Errorf("scripts directory does not exist: %s", cfg.ScriptsPath)
	}

	// Verify required scripts exist
	requiredScripts := []string{"metadata.py", "download.py", "transcribe.py"}
	for _, script := range requiredScripts {
		scriptPath := filepath.Join(cfg.ScriptsPath, script)
		if _, err := os.Stat(scriptPath); os.IsNotExist(err) {
			return fmt.Errorf("required script not found: %s", scriptPath)
		}
	}
	return nil
}

func (r *ScriptRunner) RunScript(
	ctx context.Context,
	scriptName string,
	args map[string]string,
	flags []string,
) ([]byte, error) {
	const op = "ScriptRunner.RunScript"
	scriptPath := filepath.Join(r.config.ScriptsPath, scriptName)

	r.logger.WithFields(logrus.Fields{
		"script": scriptName,
		"args":   args,
		"flags":  flags,
	}).Debug("Executing script")

	cmdArgs := buildCommandArgs(scriptPath, args, flags)
	cmd := exec.CommandContext(ctx, r.config.PythonPath, cmdArgs...)
	cmd.Dir = r.config.ScriptsPath
	cmd.Env = buildEnvironment(r.config.Environment)

	output, err := r.executeCommand(cmd)
	if err != nil {
		return nil, newScriptError(op, err, "script execution failed")
	}

	return output, nil
}

func buildCommandArgs(scriptPath string, args map[string]string, flags []string) []string {
	cmdArgs := []string{scriptPath}
	for k, v := range args {
		if v != "" {
			cmdArgs = append(cmdArgs, fmt.Sprintf("--%s", k), v)
		}
	}
	for _, flag := range flags {
		cmdArgs = append(cmdArgs, fmt.Sprintf("--%s", flag))
	}
	return cmdArgs
}

func buildEnvironment(additionalEnv []string) []string {
	env := os.Environ()
	if len(additionalEnv) > 0 {
		env = append(env, additionalEnv...)
	}
	return env
}

func (r *ScriptRunner) executeCommand(cmd *exec.Cmd) ([]byte, error) {
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		stderrOutput := stderr.String()
		r.logger.WithError(err).WithField("stderr", stderrOutput).Error("Script execution failed")
		return nil, fmt.Errorf("%v (stderr: %s)", err, stderrOutput)
	}

	output := stdout.Bytes()
	if err := validateJSONOutput(output); err != nil {
		r.logger.WithError(err).WithField("output", string(output)).Error("Invalid JSON output")
		return nil, err
	}

	return output, nil
}

func validateJSONOutput(output []byte) error {
	if len(output) == 0 {
		return fmt.Errorf("empty script output")
	}
	if !json.Valid(output) {
		return fmt.Errorf("script output is not valid JSON")
	}
	return nil
}
