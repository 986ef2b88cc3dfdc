package main

import "time"

type role string

const (
	roleSubmitter role = "submitter"
	roleApprover  role = "approver"
)

func parseRole(s string) (role, bool) {
	switch role(s) {
	case roleSubmitter, roleApprover:
		return role(s), true
	}
	return "", false
}

type taskStatus string

const (
	statusPending  taskStatus = "pending"
	statusApproved taskStatus = "approved"
	statusRejected taskStatus = "rejected"
	statusDone     taskStatus = "done"
)

func parseStatus(s string) (taskStatus, bool) {
	switch taskStatus(s) {
	case statusPending, statusApproved, statusRejected, statusDone:
		return taskStatus(s), true
	}
	return "", false
}

type user struct {
	ID           int       `json:"id"`
	CreatedAt    time.Time `json:"created_at"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Role         role      `json:"role"`
	PasswordHash []byte    `json:"-"`
	Version      int       `json:"-"`
}

type task struct {
	ID          int        `json:"id"`
	CreatedAt   time.Time  `json:"created_at"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      taskStatus `json:"status"`
	CreatedBy   int        `json:"created_by"`
	CreatorName string     `json:"creator_name,omitempty"`
	Version     int        `json:"-"`
}

// identity is the resolved caller passed explicitly into every task
// operation, so permission checks are testable without an HTTP layer.
type identity struct {
	UserID int
	Role   role
}
