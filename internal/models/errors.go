package models

import "errors"

// ErrGeneral is raised when a database error occurs that we cannot
// handle more specifically.
var ErrGeneral = errors.New("an error occurred on the database server, please try again later")

// ErrResourceNotFound is raised when a resource does not exist.
var ErrResourceNotFound = errors.New("there is no resource for the ID you specified")

// ErrNoActivePeriod is raised when an operation needs an active
// budgeting period and none exists.
var ErrNoActivePeriod = errors.New("no active budgeting period exists")

// ErrNoParameters is raised when no budgeting parameters have been
// configured yet.
var ErrNoParameters = errors.New("no budgeting parameters have been configured")

// ErrInvalidAmount is raised when an amount is zero or negative.
var ErrInvalidAmount = errors.New("the amount must be positive")

// ErrCommentRequired is raised when an expense on an unexpected
// category is recorded without a justification comment.
var ErrCommentRequired = errors.New("a comment is required for expenses on unexpected categories")

// ErrOverBudget is raised when an expense would exceed the remaining
// budget of its category. It is always wrapped with the available
// amount.
var ErrOverBudget = errors.New("the expense exceeds the remaining budget")

// ErrSharesDoNotSum100 is raised when the category shares of a
// parameter set do not sum to exactly 100 percent.
var ErrSharesDoNotSum100 = errors.New("the category shares must sum to exactly 100 percent")

// ErrPeriodNotEnded is raised when a rollover is requested for a
// period that has not reached its end date.
var ErrPeriodNotEnded = errors.New("the active period has not ended yet")
