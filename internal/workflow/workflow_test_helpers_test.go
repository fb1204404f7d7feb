package workflow

import (
	"github.com/stretchr/testify/mock"
	"go.temporal.io/sdk/testsuite"

	"github.com/superpanel/superpanel/internal/activity"
)

// registerActivities registers activity structs with the test workflow
// environment so that parameter and return types can be deserialized correctly
// by the Temporal test framework. In unit tests, all activities are mocked via
// OnActivity, but the framework still needs the type information for proper
// serialization/deserialization of activity parameters and return values.
func registerActivities(env *testsuite.TestWorkflowEnvironment) {
	env.RegisterActivity(&activity.Store{})
	env.RegisterActivity(&activity.Executor{})
}

// matchFailParams returns a mock.MatchedBy matcher for FailBackupJobParams
// that checks the job ID and that a message is present. The exact message
// includes Temporal activity error wrapping that is not predictable in tests.
func matchFailParams(id string) interface{} {
	return mock.MatchedBy(func(params activity.FailBackupJobParams) bool {
		return params.ID == id && params.Message != ""
	})
}
