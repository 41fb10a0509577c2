package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/pesio-ai/erp-client/internal/client"
	"github.com/pesio-ai/erp-client/internal/errors"
	"github.com/pesio-ai/erp-client/internal/logger"
)

// ApprovalService acts on approval tasks and evaluates their SLA
type ApprovalService struct {
	workflow client.WorkflowClientInterface
	log      *logger.Logger
	now      func() time.Time
}

// NewApprovalService creates a new approval service
func NewApprovalService(workflow client.WorkflowClientInterface, log *logger.Logger) *ApprovalService {
	if log == nil {
		log = logger.Nop()
	}
	return &ApprovalService{
		workflow: workflow,
		log:      log,
		now:      time.Now,
	}
}

// PendingTask is an approval task annotated with its SLA position
type PendingTask struct {
	client.ApprovalTask
	Overdue     bool          `json:"overdue"`
	OverdueBy   time.Duration `json:"-"`
	OverdueText string        `json:"overdueBy,omitempty"`
}

// IsOverdue reports whether a pending task has passed its due time
func IsOverdue(task *client.ApprovalTask, now time.Time) bool {
	if task.Status != client.TaskPending || task.DueAt == nil {
		return false
	}
	return now.After(*task.DueAt)
}

// Pending lists the current user's pending tasks, overdue first, then by due time
func (s *ApprovalService) Pending(ctx context.Context, params client.ListParams) ([]PendingTask, error) {
	tasks, err := s.workflow.PendingApprovals(ctx, params)
	if err != nil {
		return nil, err
	}

	now := s.now()
	out := make([]PendingTask, 0, len(tasks))
	overdue := 0
	for _, t := range tasks {
		pt := PendingTask{ApprovalTask: t}
		if IsOverdue(&t, now) {
			pt.Overdue = true
			pt.OverdueBy = now.Sub(*t.DueAt).Truncate(time.Minute)
			pt.OverdueText = pt.OverdueBy.String()
			overdue++
		}
		out = append(out, pt)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Overdue != out[j].Overdue {
			return out[i].Overdue
		}
		return dueBefore(out[i].DueAt, out[j].DueAt)
	})

	if overdue > 0 {
		s.log.Warn().Int("overdue", overdue).Int("pending", len(out)).Msg("Approval tasks past SLA")
	}
	return out, nil
}

// dueBefore orders tasks without a due time last
func dueBefore(a, b *time.Time) bool {
	switch {
	case a == nil:
		return false
	case b == nil:
		return true
	default:
		return a.Before(*b)
	}
}

// Approve approves a task
func (s *ApprovalService) Approve(ctx context.Context, taskID, remarks string) (*client.ApprovalTask, error) {
	if strings.TrimSpace(taskID) == "" {
		return nil, errors.InvalidInput("taskId", "task is required")
	}

	task, err := s.workflow.Approve(ctx, taskID, strings.TrimSpace(remarks))
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("task_id", taskID).
		Str("document_type", task.DocumentType).
		Str("document_id", task.DocumentID).
		Msg("Approval task approved")
	return task, nil
}

// Reject rejects a task. A reason is mandatory.
func (s *ApprovalService) Reject(ctx context.Context, taskID, reason string) (*client.ApprovalTask, error) {
	if strings.TrimSpace(taskID) == "" {
		return nil, errors.InvalidInput("taskId", "task is required")
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, errors.InvalidInput("reason", "a rejection reason is required")
	}

	task, err := s.workflow.Reject(ctx, taskID, &client.RejectRequest{Reason: reason})
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("task_id", taskID).
		Str("document_type", task.DocumentType).
		Str("document_id", task.DocumentID).
		Msg("Approval task rejected")
	return task, nil
}

// Delegate hands a task from actorID to delegateTo
func (s *ApprovalService) Delegate(ctx context.Context, taskID, actorID, delegateTo, remarks string) (*client.ApprovalTask, error) {
	if strings.TrimSpace(taskID) == "" {
		return nil, errors.InvalidInput("taskId", "task is required")
	}
	delegateTo = strings.TrimSpace(delegateTo)
	if delegateTo == "" {
		return nil, errors.InvalidInput("delegateTo", "a delegate is required")
	}
	if delegateTo == strings.TrimSpace(actorID) {
		return nil, errors.InvalidInput("delegateTo", "cannot delegate a task to yourself")
	}

	task, err := s.workflow.Delegate(ctx, taskID, &client.DelegateRequest{
		DelegateTo: delegateTo,
		Remarks:    strings.TrimSpace(remarks),
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("task_id", taskID).
		Str("from", actorID).
		Str("to", delegateTo).
		Msg("Approval task delegated")
	return task, nil
}

// History returns the approval trail of a document in step order
func (s *ApprovalService) History(ctx context.Context, documentType, documentID string) ([]client.ApprovalTask, error) {
	if documentType == "" || documentID == "" {
		return nil, errors.InvalidInput("document", "document type and id are required")
	}
	tasks, err := s.workflow.ApprovalHistory(ctx, documentType, documentID)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(tasks, func(i, j int) bool {
		if tasks[i].StepNumber != tasks[j].StepNumber {
			return tasks[i].StepNumber < tasks[j].StepNumber
		}
		return tasks[i].CreatedAt.Before(tasks[j].CreatedAt)
	})
	return tasks, nil
}
