package main

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
)

// UserdelError is a userdel run that exited non-zero. Message carries the
// program's diagnostic output, or a fallback naming the program.
type UserdelError struct {
	Status  int
	Message string
}

func (e *UserdelError) Error() string { return e.Message }

type accountDeleter struct {
	runner     Runner
	logger     *zap.Logger
	unmountCmd string
	userdelCmd string
}

func newAccountDeleter(cfg Config, runner Runner, logger *zap.Logger) accountDeleter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return accountDeleter{
		runner:     runner,
		logger:     logger,
		unmountCmd: cfg.UnmountCommand,
		userdelCmd: cfg.UserdelCommand,
	}
}

type accountDeleteResult struct {
	Name       string
	UnmountErr error
	Err        error
}

// deleteAccount unmounts the account's SFTP path and then removes the
// account. The unmount outcome never stops the removal.
func (d accountDeleter) deleteAccount(ctx context.Context, name string, deleteFiles bool) accountDeleteResult {
	result := accountDeleteResult{Name: name}
	result.UnmountErr = d.unmountSFTPPath(ctx, name)
	result.Err = d.deleteUser(ctx, name, deleteFiles)
	if result.Err != nil {
		d.logger.Error("delete account failed",
			zap.String("account", name),
			zap.Bool("delete_files", deleteFiles),
			zap.Error(result.Err),
		)
		return result
	}
	d.logger.Info("account deleted",
		zap.String("account", name),
		zap.Bool("delete_files", deleteFiles),
	)
	return result
}

// TODO: decide with product owners whether an unmount failure should abort
// the deletion; for now it is only logged.
func (d accountDeleter) unmountSFTPPath(ctx context.Context, name string) error {
	argv := []string{d.unmountCmd, name}
	out, err := d.runner.Run(ctx, argv, RunOptions{Superuser: true, CaptureStderr: true})
	if err != nil {
		fields := []zap.Field{
			zap.String("account", name),
			zap.Strings("argv", argv),
			zap.Error(err),
		}
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			fields = append(fields, zap.String("stderr", strings.TrimSpace(exitErr.Stderr)))
		}
		d.logger.Warn("unmount sftp path failed, continuing", fields...)
		return err
	}
	d.logger.Debug("unmounted sftp path",
		zap.String("account", name),
		zap.String("output", strings.TrimSpace(out)),
	)
	return nil
}

func (d accountDeleter) deleteUser(ctx context.Context, name string, deleteFiles bool) error {
	argv := userdelArgs(d.userdelCmd, name, deleteFiles)
	_, err := d.runner.Run(ctx, argv, RunOptions{Superuser: true, CaptureStderr: true})
	if err == nil {
		return nil
	}

	var exitErr *ExitError
	if !errors.As(err, &exitErr) || exitErr.Status == 0 {
		return err
	}
	message := strings.TrimSpace(exitErr.Stderr)
	if message == "" {
		message = "Failed to run " + d.userdelCmd
	}
	return &UserdelError{Status: exitErr.Status, Message: message}
}

func userdelArgs(program, name string, deleteFiles bool) []string {
	argv := []string{program}
	if deleteFiles {
		argv = append(argv, "-r")
	}
	return append(argv, name)
}
