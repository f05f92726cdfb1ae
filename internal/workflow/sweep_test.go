package workflow

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"go.temporal.io/sdk/testsuite"

	"github.com/lutrii/payments/internal/activity"
)

type SweepDuePaymentsWorkflowTestSuite struct {
	suite.Suite
	testsuite.WorkflowTestSuite
	env *testsuite.TestWorkflowEnvironment
}

func (s *SweepDuePaymentsWorkflowTestSuite) SetupTest() {
	s.env = s.NewTestWorkflowEnvironment()
	// Registration gives the test framework the parameter and result types;
	// the activity itself is mocked below.
	s.env.RegisterActivity(&activity.Payments{})
}

func (s *SweepDuePaymentsWorkflowTestSuite) AfterTest(suiteName, testName string) {
	s.env.AssertExpectations(s.T())
}

func (s *SweepDuePaymentsWorkflowTestSuite) TestSuccess() {
	params := activity.SweepParams{BatchSize: 100, Concurrency: 8}

	s.env.OnActivity("ExecuteDuePayments", mock.Anything, params).
		Return(activity.SweepResult{Due: 5, Executed: 3, Skipped: 1, Failed: 1}, nil)

	s.env.ExecuteWorkflow(SweepDuePaymentsWorkflow, params)

	s.True(s.env.IsWorkflowCompleted())
	s.NoError(s.env.GetWorkflowError())
}

func (s *SweepDuePaymentsWorkflowTestSuite) TestActivityFailure() {
	params := activity.SweepParams{BatchSize: 100, Concurrency: 8}

	s.env.OnActivity("ExecuteDuePayments", mock.Anything, params).
		Return(activity.SweepResult{}, errors.New("db down"))

	s.env.ExecuteWorkflow(SweepDuePaymentsWorkflow, params)

	s.True(s.env.IsWorkflowCompleted())
	s.Error(s.env.GetWorkflowError())
}

func TestSweepDuePaymentsWorkflowTestSuite(t *testing.T) {
	suite.Run(t, new(SweepDuePaymentsWorkflowTestSuite))
}
