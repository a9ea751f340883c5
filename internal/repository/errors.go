package repository

import "errors"

// ErrDuplicateInstance is returned by CreateInstance when another writer
// already materialized the same (user, template, day) occurrence. The
// planner treats it as "instance already exists" and moves on.
var ErrDuplicateInstance = errors.New("task instance already exists")

// ErrVersionConflict is returned when an optimistic-concurrency save loses
// the race against a concurrent writer.
var ErrVersionConflict = errors.New("row version conflict")
