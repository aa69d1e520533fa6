// Package cloudformation contains the stack lifecycle tasks: create-or-update
// and delete, both optionally waiting for the stack to settle.
package cloudformation

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/cloudformation"

	"github.com/flowstack-io/plugin-aws/internal/connection"
	"github.com/flowstack-io/plugin-aws/internal/poller"
	"github.com/flowstack-io/plugin-aws/internal/runner"
)

// Rollback states settle into *_ROLLBACK_COMPLETE, which means the change
// this task submitted did not apply, so they classify as failures.
var stackStates = poller.NewClassifier(map[string]poller.Status{
	"CREATE_IN_PROGRESS":                           poller.StatusPending,
	"REVIEW_IN_PROGRESS":                           poller.StatusPending,
	"UPDATE_IN_PROGRESS":                           poller.StatusRunning,
	"UPDATE_COMPLETE_CLEANUP_IN_PROGRESS":          poller.StatusRunning,
	"DELETE_IN_PROGRESS":                           poller.StatusRunning,
	"ROLLBACK_IN_PROGRESS":                         poller.StatusRunning,
	"UPDATE_ROLLBACK_IN_PROGRESS":                  poller.StatusRunning,
	"UPDATE_ROLLBACK_COMPLETE_CLEANUP_IN_PROGRESS": poller.StatusRunning,
	"CREATE_COMPLETE":                              poller.StatusSucceeded,
	"UPDATE_COMPLETE":                              poller.StatusSucceeded,
	"DELETE_COMPLETE":                              poller.StatusSucceeded,
	"CREATE_FAILED":                                poller.StatusFailed,
	"UPDATE_FAILED":                                poller.StatusFailed,
	"DELETE_FAILED":                                poller.StatusFailed,
	"ROLLBACK_COMPLETE":                            poller.StatusFailed,
	"ROLLBACK_FAILED":                              poller.StatusFailed,
	"UPDATE_ROLLBACK_COMPLETE":                     poller.StatusFailed,
	"UPDATE_ROLLBACK_FAILED":                       poller.StatusFailed,
})

func newClient(ctx context.Context, rc *runner.RunContext, conn connection.Connection) (*cloudformation.Client, error) {
	cfg, err := conn.Resolve(rc)
	if err != nil {
		return nil, err
	}
	awsCfg, err := connection.Load(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return cloudformation.NewFromConfig(awsCfg), nil
}
