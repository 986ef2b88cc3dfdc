package main

import (
	"errors"
	"time"
)

// taskService enforces the task status state machine and the
// role/ownership permission matrix. Every method takes the caller's
// identity explicitly; nothing here reads request state.
//
// Transitions: pending -> approved | rejected (approver),
// approved -> done (approver or any submitter). rejected and done are
// terminal. Every transition persists as a single conditional write, so
// a precondition that held at read time but not at write time fails
// with a conflict instead of overwriting the other writer.
type taskService struct {
	storage *storage
}

func newTaskService(s *storage) *taskService {
	return &taskService{storage: s}
}

const msgInvalidStatus = "invalid status for this action"

func (ts *taskService) createTask(title, description string, caller identity) (*task, error) {
	if caller.Role != roleSubmitter {
		return nil, authorizationError("only submitters can create tasks")
	}
	v := newValidator()
	v.checkCond(title != "", "title", "must be provided")
	v.checkCond(len(title) <= 255, "title", "must be atmost 255 characters")
	v.checkCond(description != "", "description", "must be provided")
	if v.hasErrors() {
		return nil, validationError(v.toError().Error())
	}

	t := &task{
		CreatedAt:   time.Now().UTC(),
		Title:       title,
		Description: description,
		Status:      statusPending,
		CreatedBy:   caller.UserID,
	}
	if err := ts.storage.insertTask(t); err != nil {
		return nil, err
	}
	return ts.storage.getTaskWithCreator(t.ID)
}

// listTasks scopes results by role: approvers see every task, submitters
// only their own. statusFilter narrows further when non-empty.
func (ts *taskService) listTasks(caller identity, statusFilter string) ([]task, error) {
	var status taskStatus
	if statusFilter != "" {
		s, ok := parseStatus(statusFilter)
		if !ok {
			return nil, validationError("invalid status provided")
		}
		status = s
	}
	createdBy := 0
	if caller.Role != roleApprover {
		createdBy = caller.UserID
	}
	return ts.storage.getTasks(createdBy, status)
}

// listAllTasks is the unauthenticated dashboard read: every task with
// its creator's display name.
func (ts *taskService) listAllTasks() ([]task, error) {
	return ts.storage.getTasksWithCreators()
}

func (ts *taskService) updateStatus(taskID int, target string, caller identity) (*task, error) {
	t, err := ts.storage.getTaskByID(taskID)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, notFoundError("task not found")
	}
	if caller.Role != roleApprover {
		return nil, authorizationError("only approvers can update task status")
	}
	to, ok := parseStatus(target)
	if !ok || (to != statusApproved && to != statusRejected) {
		return nil, validationError("invalid status provided")
	}
	if t.Status != statusPending {
		return nil, conflictError(msgInvalidStatus)
	}
	err = ts.storage.updateTaskStatus(t, to)
	if errors.Is(err, errStaleRecord) {
		return nil, conflictError(msgInvalidStatus)
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

// markDone moves an approved task to done. Ownership is irrelevant: any
// submitter, not only the task's creator, may finish an approved task.
func (ts *taskService) markDone(taskID int, caller identity) (*task, error) {
	t, err := ts.storage.getTaskByID(taskID)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, notFoundError("task not found")
	}
	if caller.Role != roleApprover && caller.Role != roleSubmitter {
		return nil, authorizationError("you are not authorized to mark this task as done")
	}
	if t.Status != statusApproved {
		return nil, conflictError(msgInvalidStatus)
	}
	err = ts.storage.updateTaskStatus(t, statusDone)
	if errors.Is(err, errStaleRecord) {
		return nil, conflictError(msgInvalidStatus)
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

// editTask updates title/description of the caller's own pending task.
// Empty fields keep their prior values.
func (ts *taskService) editTask(taskID int, newTitle, newDescription string, caller identity) (*task, error) {
	t, err := ts.storage.getTaskByID(taskID)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, notFoundError("task not found")
	}
	if t.CreatedBy != caller.UserID || t.Status != statusPending {
		return nil, authorizationError("you can only edit your own pending tasks")
	}
	if newTitle != "" {
		t.Title = newTitle
	}
	if newDescription != "" {
		t.Description = newDescription
	}
	err = ts.storage.updateTaskDetails(t)
	if errors.Is(err, errStaleRecord) {
		return nil, conflictError("task was modified by another request, fetch it again")
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (ts *taskService) deleteTask(taskID int, caller identity) error {
	t, err := ts.storage.getTaskByID(taskID)
	if err != nil {
		return err
	}
	if t == nil {
		return notFoundError("task not found")
	}
	if caller.Role == roleSubmitter && t.CreatedBy != caller.UserID {
		return authorizationError("you can only delete your own tasks")
	}
	deleted, err := ts.storage.deleteTask(taskID)
	if err != nil {
		return err
	}
	if !deleted {
		return notFoundError("task not found")
	}
	return nil
}
